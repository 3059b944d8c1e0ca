package util

import (
	"reflect"
	"strings"

	"auction-house/internal/utils/crypto"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the password rule registered and
// field errors reported under their JSON names (e.g. "maxRegistrations").
func NewValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := crypto.RegisterPasswordValidator(v); err != nil {
		return nil, err
	}
	return v, nil
}
