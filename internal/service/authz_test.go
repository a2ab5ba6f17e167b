package service

import (
	"errors"
	"testing"

	"confrarias/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	admin := Caller{ID: "a1", Role: model.RoleAdmin, Status: model.UserAtivo}
	confrade := Caller{ID: "u1", Role: model.RoleConfrade, Status: model.UserAtivo}
	confraria := Caller{ID: "c1", Role: model.RoleConfraria, Status: model.UserAtivo}
	inactiveAdmin := Caller{ID: "a2", Role: model.RoleAdmin, Status: model.UserInativo}

	cases := []struct {
		name    string
		caller  Caller
		action  Action
		owner   string
		allowed bool
	}{
		{"admin moderates", admin, ActionModerate, "", true},
		{"confrade cannot moderate", confrade, ActionModerate, "", false},
		{"confraria cannot moderate", confraria, ActionModerate, "", false},
		{"inactive admin cannot moderate", inactiveAdmin, ActionModerate, "", false},
		{"anonymous cannot seal", Caller{}, ActionSeal, "", false},
		{"confrade seals", confrade, ActionSeal, "", true},
		{"owner edits profile", confrade, ActionEditProfile, "u1", true},
		{"other profile denied", confrade, ActionEditProfile, "c1", false},
		{"admin edits any profile", admin, ActionEditProfile, "c1", true},
		{"confraria manages own event", confraria, ActionManageEvent, "c1", true},
		{"confraria cannot manage other event", confraria, ActionManageEvent, "c2", false},
		{"confrade cannot post for itself", confrade, ActionManagePost, "u1", false},
		{"admin manages any post", admin, ActionManagePost, "c1", true},
		{"admin manages users", admin, ActionManageUsers, "", true},
		{"unknown action", admin, Action(99), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.caller, tc.action, tc.owner)
			assert.Equal(t, tc.allowed, d.Allowed)
			if !tc.allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, Allow().Err())

	err := Authorize(Caller{}, ActionSeal, "").Err()
	assert.True(t, errors.Is(err, ErrUnauthenticated))

	err = Authorize(Caller{ID: "u1", Role: model.RoleConfrade, Status: model.UserAtivo}, ActionModerate, "").Err()
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, "Apenas administradores podem realizar esta ação.", err.Error())
}
