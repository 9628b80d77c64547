package booking

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"maidbook/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// NormalizeAddress trims surrounding whitespace from every field.
func NormalizeAddress(a models.Address) models.Address {
	return models.Address{
		FullName:    strings.TrimSpace(a.FullName),
		Phone:       strings.TrimSpace(a.Phone),
		HouseNumber: strings.TrimSpace(a.HouseNumber),
		Street:      strings.TrimSpace(a.Street),
		City:        strings.TrimSpace(a.City),
		State:       strings.TrimSpace(a.State),
		PostalCode:  strings.TrimSpace(a.PostalCode),
		Landmark:    strings.TrimSpace(a.Landmark),
	}
}

// ValidateAddress reports the first invalid field of a. Phone must be exactly
// 10 digits and postal code exactly 6 digits.
func ValidateAddress(a models.Address) error {
	err := validate.Struct(NormalizeAddress(a))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError("address", err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return NewValidationError(fe.Field(), fe.Field()+" is required")
	case "number", "len":
		switch fe.Field() {
		case "phone":
			return NewValidationError(fe.Field(), "phone must be exactly 10 digits")
		case "postalCode":
			return NewValidationError(fe.Field(), "postal code must be exactly 6 digits")
		}
	}
	return NewValidationError(fe.Field(), fe.Field()+" is invalid")
}
