package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"booking-api/internal/apperr"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidInstant = errors.New("invalid instant")

var (
	emailShape = regexp.MustCompile(`.+@.+\..+`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-]{7,20}$`)
)

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return IsObjectID(value)
	})

	v.RegisterValidation("instant", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := ParseInstant(value)
		return err == nil
	})

	v.RegisterValidation("email_shape", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return IsEmailShape(value)
	})

	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return phoneRegex.MatchString(value)
	})

	return &Validator{v: v}
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// Check runs struct validation and converts failures into a typed
// validation error carrying per-field details.
func (v *Validator) Check(s interface{}) error {
	if err := v.v.Struct(s); err != nil {
		if errs := v.ValidationErrors(err); errs != nil {
			return apperr.ValidationDetails("validation error", Details(errs))
		}
		return apperr.Validation("validation error")
	}
	return nil
}

// Details flattens validator errors into field -> failing tag.
func Details(errs validator.ValidationErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[err.Field()] = err.Tag()
	}
	return details
}

func IsObjectID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func IsEmailShape(email string) bool {
	return emailShape.MatchString(email)
}

func IsPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// ParseInstant accepts RFC 3339 timestamps and zone-less date/time forms
// (read as UTC). The result is UTC, truncated to the millisecond precision
// that MongoDB stores.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidInstant
	}
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, ErrInvalidInstant
}
