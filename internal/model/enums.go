package model

import "fmt"

// Role is the account kind stored on the profile record.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleConfrade  Role = "Confrade"
	RoleConfraria Role = "Confraria"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleConfrade, RoleConfraria:
		return true
	}
	return false
}

// ParseRole rejects anything outside the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// UserStatus marks whether an account may act on the site.
type UserStatus string

const (
	UserAtivo   UserStatus = "Ativo"
	UserInativo UserStatus = "Inativo"
)

func (s UserStatus) Valid() bool {
	return s == UserAtivo || s == UserInativo
}

func ParseUserStatus(s string) (UserStatus, error) {
	st := UserStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown user status %q", s)
	}
	return st, nil
}

// ModerationStatus is shared by discoveries and confraria submissions.
// Every state is reachable from every other one.
type ModerationStatus string

const (
	StatusPendente  ModerationStatus = "Pendente"
	StatusAprovado  ModerationStatus = "Aprovado"
	StatusRejeitado ModerationStatus = "Rejeitado"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case StatusPendente, StatusAprovado, StatusRejeitado:
		return true
	}
	return false
}

func ParseModerationStatus(s string) (ModerationStatus, error) {
	st := ModerationStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown moderation status %q", s)
	}
	return st, nil
}

// ModerationTarget names the kind of document a moderation action applies to.
type ModerationTarget string

const (
	TargetDiscovery  ModerationTarget = "discovery"
	TargetSubmission ModerationTarget = "submission"
)

func (t ModerationTarget) Valid() bool {
	return t == TargetDiscovery || t == TargetSubmission
}
