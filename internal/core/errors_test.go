// AngelaMos | 2026
// errors_test.go

package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestFieldErrors_IsInvalidInput(t *testing.T) {
	err := fmt.Errorf("update financials: %w", FieldErrors{"contract_sum": "must not be negative"})

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestValidationFields(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
		Tier  string `validate:"oneof=basic premium"`
	}

	err := validator.New().Struct(req{Email: "nope", Tier: "gold"})
	fields := ValidationFields(err)

	assert.Equal(t, "email must be a valid email", fields["email"])
	assert.Equal(t, "tier must be one of [basic premium]", fields["tier"])
}
