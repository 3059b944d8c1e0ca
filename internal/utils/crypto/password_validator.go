package crypto

import (
	"github.com/go-playground/validator/v10"
)

// PasswordTag is the struct tag checked by the strength rule.
const PasswordTag = "password"

// cryptoPasswordRule validates password strength for the validator package
func cryptoPasswordRule(fl validator.FieldLevel) bool {
	return IsStrong(fl.Field().String())
}

// RegisterPasswordValidator registers the "password" validation tag with the validator
// Safely handles duplicate registration by checking if already registered
func RegisterPasswordValidator(v *validator.Validate) error {
	err := v.RegisterValidation(PasswordTag, cryptoPasswordRule)
	if err != nil && err.Error() == "validator: tag '"+PasswordTag+"' already exists" {
		return nil
	}
	return err
}
