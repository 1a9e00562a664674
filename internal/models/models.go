package models

import "time"

const (
	AuthProviderGoogle      = "google"
	AuthProviderCredentials = "credentials"

	RoleAdmin    = "admin"
	RoleProvider = "provider"
	RoleClient   = "client"

	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

var (
	AuthProviders       = []string{AuthProviderGoogle, AuthProviderCredentials}
	Roles               = []string{RoleAdmin, RoleProvider, RoleClient}
	AppointmentStatuses = []string{
		AppointmentStatusScheduled,
		AppointmentStatusConfirmed,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
	}
)

func IsValidRole(role string) bool {
	return contains(Roles, role)
}

func IsValidAuthProvider(provider string) bool {
	return contains(AuthProviders, provider)
}

func IsValidAppointmentStatus(status string) bool {
	return contains(AppointmentStatuses, status)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	AuthProvider string    `bson:"authProvider" json:"authProvider"`
	AuthID       string    `bson:"authId,omitempty" json:"authId,omitempty"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	Name         string    `bson:"name" json:"name"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         string    `bson:"role" json:"role"`
	AvatarURL    string    `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserInfo is the non-sensitive subset returned alongside a session token.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

type Provider struct {
	ID           string      `bson:"_id,omitempty" json:"id"`
	Name         string      `bson:"name" json:"name"`
	Email        string      `bson:"email" json:"email"`
	Phone        string      `bson:"phone,omitempty" json:"phone,omitempty"`
	Specialties  []string    `bson:"specialties" json:"specialties"`
	Availability interface{} `bson:"availability" json:"availability"`
	IsActive     bool        `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time   `bson:"updatedAt" json:"updatedAt"`
}

type Service struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	DurationMin int       `bson:"durationMin" json:"durationMin"`
	Price       float64   `bson:"price" json:"price"`
	Description *string   `bson:"description" json:"description"`
	Category    *string   `bson:"category" json:"category"`
	IsActive    bool      `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Appointment references its client, provider and service by id only;
// deleting any of them leaves the reference dangling.
type Appointment struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	ClientID   string    `bson:"clientId" json:"clientId"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	ServiceID  string    `bson:"serviceId" json:"serviceId"`
	StartAt    time.Time `bson:"startAt" json:"startAt"`
	EndAt      time.Time `bson:"endAt" json:"endAt"`
	Status     string    `bson:"status" json:"status"`
	Notes      *string   `bson:"notes" json:"notes"`
	CreatedBy  *string   `bson:"createdBy" json:"createdBy"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
