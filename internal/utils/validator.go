// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var tagIDPattern = regexp.MustCompile(`^[A-Z]{2,5}/[A-Z0-9]{2,10}/[0-9]{1,6}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("asset_tag", validateAssetTag)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidateEmailAddress reports whether addr is a well-formed email address.
// Used by the provisioning flow before any external call is made.
func ValidateEmailAddress(addr string) bool {
	return validate.Var(addr, "required,email") == nil
}

// Asset tags follow the MOTAC register format, e.g. MOTAC/LPT/00123.
func validateAssetTag(fl validator.FieldLevel) bool {
	return tagIDPattern.MatchString(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "asset_tag":
		return "Asset tag must follow the register format, e.g. MOTAC/LPT/00123"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
