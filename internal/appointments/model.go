package appointments

import "booking-api/internal/optional"

type CreateRequest struct {
	ClientID   string  `json:"clientId" validate:"required,objectid"`
	ProviderID string  `json:"providerId" validate:"required,objectid"`
	ServiceID  string  `json:"serviceId" validate:"required,objectid"`
	StartAt    string  `json:"startAt" validate:"required,instant"`
	EndAt      string  `json:"endAt" validate:"omitempty,instant"`
	Status     string  `json:"status" validate:"omitempty,oneof=scheduled confirmed completed cancelled"`
	Notes      *string `json:"notes"`
	CreatedBy  *string `json:"createdBy" validate:"omitempty,objectid"`
}

// UpdateRequest is a partial update. Absent fields are left untouched;
// explicit nulls clear notes and createdBy and are rejected elsewhere.
type UpdateRequest struct {
	ClientID   optional.Field[string] `json:"clientId"`
	ProviderID optional.Field[string] `json:"providerId"`
	ServiceID  optional.Field[string] `json:"serviceId"`
	StartAt    optional.Field[string] `json:"startAt"`
	EndAt      optional.Field[string] `json:"endAt"`
	Status     optional.Field[string] `json:"status"`
	Notes      optional.Field[string] `json:"notes"`
	CreatedBy  optional.Field[string] `json:"createdBy"`
}
