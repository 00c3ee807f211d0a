package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/uniconsult/internal/app/models"
)

// Custom tags understood by request DTOs
const (
	TagAvailability       = "availability"
	TagConsultationStatus = "consultation_status"
	TagNotBlank           = "notblank"
)

// Name validation max length
const NameMaxLength = 255

func validAvailability(fl validator.FieldLevel) bool {
	return models.AvailabilityStatus(fl.Field().String()).Valid()
}

func validConsultationStatus(fl validator.FieldLevel) bool {
	return models.ConsultationStatus(fl.Field().String()).Valid()
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Register installs the custom rules on v
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagAvailability:       validAvailability,
		TagConsultationStatus: validConsultationStatus,
		TagNotBlank:           notBlank,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// Message renders a single field error the way API clients display it
func Message(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required", TagNotBlank:
		return field + " is required"
	case "required_without":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param() + " characters"
	case "max":
		return field + " must be at most " + e.Param() + " characters"
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + strings.Join(strings.Fields(e.Param()), ", ")
	case TagAvailability:
		return fmt.Sprintf("%s must be one of: %s, %s, %s", field, models.StatusAvailable, models.StatusInClass, models.StatusOffline)
	case TagConsultationStatus:
		return fmt.Sprintf("%s must be one of: %s, %s, %s", field, models.ConsultationScheduled, models.ConsultationCancelled, models.ConsultationCompleted)
	default:
		return field + " failed validation: " + e.Tag()
	}
}
