package users

import (
	"booking-api/internal/authz"
	"booking-api/internal/models"
	"booking-api/internal/optional"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email_shape"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Role     string `json:"role" validate:"omitempty,oneof=admin provider client"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// AuthResponse is returned by every sign-in flow.
type AuthResponse struct {
	Token string          `json:"token"`
	User  models.UserInfo `json:"user"`
}

type CreateRequest struct {
	AuthProvider string `json:"authProvider" validate:"omitempty,oneof=google credentials"`
	AuthID       string `json:"authId"`
	Email        string `json:"email" validate:"required,email_shape"`
	Password     string `json:"password"`
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"omitempty,phone"`
	Role         string `json:"role" validate:"omitempty,oneof=admin provider client"`
	AvatarURL    string `json:"avatarUrl"`
}

type UpdateRequest struct {
	AuthProvider optional.Field[string] `json:"authProvider"`
	AuthID       optional.Field[string] `json:"authId"`
	Email        optional.Field[string] `json:"email"`
	Password     optional.Field[string] `json:"password"`
	Name         optional.Field[string] `json:"name"`
	Phone        optional.Field[string] `json:"phone"`
	Role         optional.Field[string] `json:"role"`
	AvatarURL    optional.Field[string] `json:"avatarUrl"`
}

// Restrict drops every present field the identity may not edit and
// returns the names of the dropped fields.
func (r *UpdateRequest) Restrict(identity *authz.Identity) []string {
	fields := []struct {
		name  string
		field *optional.Field[string]
	}{
		{authz.UserFieldAuthProvider, &r.AuthProvider},
		{authz.UserFieldAuthID, &r.AuthID},
		{authz.UserFieldEmail, &r.Email},
		{authz.UserFieldPassword, &r.Password},
		{authz.UserFieldName, &r.Name},
		{authz.UserFieldPhone, &r.Phone},
		{authz.UserFieldRole, &r.Role},
		{authz.UserFieldAvatarURL, &r.AvatarURL},
	}

	var dropped []string
	for _, f := range fields {
		if f.field.Present() && !authz.CanEditUserField(identity, f.name) {
			f.field.Clear()
			dropped = append(dropped, f.name)
		}
	}
	return dropped
}
