package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	alphaSpaceRegex = regexp.MustCompile(`^[\p{L}\s-]+$`)
	// Danish CPR number: DDMMYY-XXXX, dash optional.
	tinRegex = regexp.MustCompile(`^\d{6}-?\d{4}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("alpha_space", validateAlphaSpace)
	validate.RegisterValidation("valid_tin", validateTIN)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateStruct returns a field -> message map, or nil when data is valid.
func ValidateStruct(data interface{}) url.Values {
	err := validate.Struct(data)
	if err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) url.Values {
	errorsMap := url.Values{}
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrs {
			errorsMap.Add(fieldErr.Field(), getErrorMessage(fieldErr))
		}
	} else {
		errorsMap.Add("general", "Validation failed: "+err.Error())
	}
	return errorsMap
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required", "required_if":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Value must be at least %s.", err.Param())
	case "max":
		return fmt.Sprintf("Value must be at most %s.", err.Param())
	case "oneof":
		return fmt.Sprintf("Choose one of: %s.", err.Param())
	case "valid_tin":
		return "Enter a valid CPR number (DDMMYY-XXXX)."
	case "alpha_space":
		return "Only letters, spaces and hyphens are allowed."
	default:
		return fmt.Sprintf("Invalid value for field %s (rule: %s).", err.Field(), err.Tag())
	}
}

func validateAlphaSpace(fl validator.FieldLevel) bool {
	return alphaSpaceRegex.MatchString(fl.Field().String())
}

func validateTIN(fl validator.FieldLevel) bool {
	return tinRegex.MatchString(fl.Field().String())
}
