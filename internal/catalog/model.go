package catalog

import "booking-api/internal/optional"

type ProviderCreateRequest struct {
	Name         string      `json:"name" validate:"required"`
	Email        string      `json:"email" validate:"required,email_shape"`
	Phone        string      `json:"phone"`
	Specialties  []string    `json:"specialties" validate:"omitempty,dive,required"`
	Availability interface{} `json:"availability"`
	IsActive     *bool       `json:"isActive"`
}

type ProviderUpdateRequest struct {
	Name         optional.Field[string]      `json:"name"`
	Email        optional.Field[string]      `json:"email"`
	Phone        optional.Field[string]      `json:"phone"`
	Specialties  optional.Field[[]string]    `json:"specialties"`
	Availability optional.Field[interface{}] `json:"availability"`
	IsActive     optional.Field[bool]        `json:"isActive"`
}

type ServiceCreateRequest struct {
	Name        string   `json:"name" validate:"required"`
	DurationMin *int     `json:"durationMin" validate:"required,gte=1"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	IsActive    *bool    `json:"isActive"`
}

type ServiceUpdateRequest struct {
	Name        optional.Field[string]  `json:"name"`
	DurationMin optional.Field[int]     `json:"durationMin"`
	Price       optional.Field[float64] `json:"price"`
	Description optional.Field[string]  `json:"description"`
	Category    optional.Field[string]  `json:"category"`
	IsActive    optional.Field[bool]    `json:"isActive"`
}
