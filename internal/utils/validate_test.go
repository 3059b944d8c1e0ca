package util

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator_ReportsJSONFieldNames(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	type req struct {
		MaxRegistrations int    `json:"maxRegistrations" validate:"required,gte=1"`
		Password         string `json:"password" validate:"required,password"`
	}

	err = v.Struct(req{Password: "weak"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"maxRegistrations", "password"}, fields)
}

func TestNewValidator_AcceptsStrongPassword(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	type req struct {
		Password string `json:"password" validate:"required,password"`
	}
	assert.NoError(t, v.Struct(req{Password: "Password123"}))
}
