// Package authz decides whether an identity may perform an action.
//
// Role precedence is admin > provider > client. Appointments carry no
// ownership rule here: any authenticated identity may read or modify any
// appointment.
package authz

import (
	"booking-api/internal/apperr"
	"booking-api/internal/models"
)

type Action string

const (
	ActionListUsers  Action = "users:list"
	ActionReadUser   Action = "users:read"
	ActionCreateUser Action = "users:create"
	ActionUpdateUser Action = "users:update"
	ActionDeleteUser Action = "users:delete"

	ActionReadCatalog  Action = "catalog:read"
	ActionWriteCatalog Action = "catalog:write"

	ActionReadAppointment  Action = "appointments:read"
	ActionWriteAppointment Action = "appointments:write"
)

// Identity is a verified caller.
type Identity struct {
	UserID string
	Role   string
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// Authorize returns nil when the action is allowed, an Unauthorized error
// when the action needs an identity and none was given, and Forbidden
// otherwise. targetID is the user id addressed by self-service actions.
func Authorize(identity *Identity, action Action, targetID string) error {
	if action == ActionReadCatalog {
		return nil
	}
	if identity == nil {
		return apperr.Unauthorized("Authentication required")
	}

	switch action {
	case ActionListUsers, ActionCreateUser, ActionDeleteUser, ActionWriteCatalog:
		if identity.IsAdmin() {
			return nil
		}
	case ActionReadUser, ActionUpdateUser:
		if identity.IsAdmin() || (targetID != "" && identity.UserID == targetID) {
			return nil
		}
	case ActionReadAppointment, ActionWriteAppointment:
		return nil
	}
	return apperr.Forbidden("Forbidden: insufficient privileges")
}

const (
	UserFieldAuthProvider = "authProvider"
	UserFieldAuthID       = "authId"
	UserFieldEmail        = "email"
	UserFieldPassword     = "password"
	UserFieldName         = "name"
	UserFieldPhone        = "phone"
	UserFieldRole         = "role"
	UserFieldAvatarURL    = "avatarUrl"
)

var selfServiceUserFields = map[string]bool{
	UserFieldEmail:     true,
	UserFieldPassword:  true,
	UserFieldName:      true,
	UserFieldPhone:     true,
	UserFieldAvatarURL: true,
}

var editableUserFields = map[string]map[string]bool{
	models.RoleAdmin: {
		UserFieldAuthProvider: true,
		UserFieldAuthID:       true,
		UserFieldEmail:        true,
		UserFieldPassword:     true,
		UserFieldName:         true,
		UserFieldPhone:        true,
		UserFieldRole:         true,
		UserFieldAvatarURL:    true,
	},
	models.RoleProvider: selfServiceUserFields,
	models.RoleClient:   selfServiceUserFields,
}

// CanEditUserField reports whether the identity's role may write the
// given user field. Fields outside the table are never editable.
func CanEditUserField(identity *Identity, field string) bool {
	if identity == nil {
		return false
	}
	return editableUserFields[identity.Role][field]
}

// AuthorizeRoleAssignment allows anyone to take the client role. Any other
// role can only be granted by an admin.
func AuthorizeRoleAssignment(identity *Identity, role string) error {
	if role == "" || role == models.RoleClient || identity.IsAdmin() {
		return nil
	}
	return apperr.Forbidden("Only admins can assign the %s role", role)
}
