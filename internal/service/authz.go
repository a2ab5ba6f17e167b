package service

import "confrarias/internal/model"

// Caller is the authenticated subject of a request. Role and status come from
// the profile store, never from the token.
type Caller struct {
	ID     string
	Role   model.Role
	Status model.UserStatus
}

func (c Caller) Authenticated() bool { return c.ID != "" }
func (c Caller) IsAdmin() bool       { return c.Role == model.RoleAdmin && c.Status == model.UserAtivo }

type Action int

const (
	ActionModerate Action = iota + 1
	ActionManageUsers
	ActionEditProfile
	ActionManageEvent
	ActionManagePost
	ActionSeal
	ActionSubmitDiscovery
	ActionUpload
)

func (a Action) String() string {
	switch a {
	case ActionModerate:
		return "moderate"
	case ActionManageUsers:
		return "manage_users"
	case ActionEditProfile:
		return "edit_profile"
	case ActionManageEvent:
		return "manage_event"
	case ActionManagePost:
		return "manage_post"
	case ActionSeal:
		return "seal"
	case ActionSubmitDiscovery:
		return "submit_discovery"
	case ActionUpload:
		return "upload"
	}
	return "unknown"
}

// Decision is either Allowed or Denied with a reason.
type Decision struct {
	Allowed bool
	Reason  string

	anonymous bool
}

func Allow() Decision             { return Decision{Allowed: true} }
func Deny(reason string) Decision { return Decision{Reason: reason} }

// Err turns a denial into a PermissionDenied error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.anonymous {
		return &Error{Kind: ErrUnauthenticated, Msg: d.Reason}
	}
	return denied(d.Reason)
}

// Authorize is the only place role checks live. ownerID is the profile that
// owns the target (the profile itself, an event's or a post's confraria); it
// is ignored by actions that have no owner.
func Authorize(c Caller, a Action, ownerID string) Decision {
	if !c.Authenticated() {
		return Decision{Reason: "É necessário iniciar sessão.", anonymous: true}
	}
	if c.Status != model.UserAtivo {
		return Deny("A sua conta está inativa.")
	}
	admin := c.Role == model.RoleAdmin

	switch a {
	case ActionModerate, ActionManageUsers:
		if admin {
			return Allow()
		}
		return Deny("Apenas administradores podem realizar esta ação.")
	case ActionEditProfile:
		if admin || c.ID == ownerID {
			return Allow()
		}
		return Deny("Só pode alterar o seu próprio perfil.")
	case ActionManageEvent, ActionManagePost:
		if admin || (c.Role == model.RoleConfraria && c.ID == ownerID) {
			return Allow()
		}
		return Deny("Só a própria confraria pode gerir este conteúdo.")
	case ActionSeal, ActionSubmitDiscovery, ActionUpload:
		return Allow()
	}
	return Deny("Ação desconhecida.")
}
