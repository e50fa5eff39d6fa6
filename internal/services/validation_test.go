package services

import (
	"testing"

	"github.com/profactive/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name          string
		req           any
		errorContains string
	}{
		{
			name: "valid order",
			req:  &models.CreateOrderRequest{FirstName: "Aigul", LastName: "Nurlanova", Email: "a@b.kz", Phone: "+77010000000"},
		},
		{
			name:          "missing email",
			req:           &models.CreateOrderRequest{FirstName: "Aigul", LastName: "Nurlanova", Phone: "1"},
			errorContains: "email is required",
		},
		{
			name:          "malformed email",
			req:           &models.CreateOrderRequest{FirstName: "Aigul", LastName: "Nurlanova", Email: "nope", Phone: "1"},
			errorContains: "email must be a valid email address",
		},
		{
			name:          "password confirmation mismatch",
			req:           &models.RegisterRequest{Email: "a@b.kz", Password: "password1", ConfirmPassword: "password2", FirstName: "Al", LastName: "Bo"},
			errorContains: "confirm_password does not match",
		},
		{
			name:          "short password",
			req:           &models.RegisterRequest{Email: "a@b.kz", Password: "short", ConfirmPassword: "short", FirstName: "Al", LastName: "Bo"},
			errorContains: "password must be at least 8 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStruct(tt.req)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
