package inventory

import (
	"reflect"
	"strings"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator builds the request validator with JSON field names and the enum tags
// item_type, quality_status and transaction_type.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("item_type", func(fl validator.FieldLevel) bool {
		return inventory.ItemType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("quality_status", func(fl validator.FieldLevel) bool {
		return inventory.QualityStatus(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("transaction_type", func(fl validator.FieldLevel) bool {
		return inventory.TransactionType(fl.Field().String()).IsValid()
	})

	return v
}

// validateRequest checks the struct tags of a command
func validateRequest(req any) error {
	return validate.Struct(req)
}

func validationFailure(errs validator.ValidationErrors) *AppError {
	details := make([]ValidationError, 0, len(errs))
	for _, e := range errs {
		details = append(details, ValidationError{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	message := "Request validation failed"
	if len(details) > 0 {
		message = details[0].Field + ": " + details[0].Message
	}
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    "INVALID_INPUT",
		Message: message,
		Details: details,
	}
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must not exceed " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gtfield":
		return "Must be greater than " + e.Param()
	case "gtefield":
		return "Must be greater than or equal to " + e.Param()
	case "ltefield":
		return "Must be less than or equal to " + e.Param()
	case "item_type":
		return "Invalid item type"
	case "quality_status":
		return "Invalid quality status"
	case "transaction_type":
		return "Invalid transaction type"
	default:
		return "Invalid value"
	}
}
