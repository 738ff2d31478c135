package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email    string `json:"client_email" validate:"required,email"`
	Name     string `json:"order_name,omitempty" validate:"required,max=5"`
	Currency string `validate:"required"`
}

func TestFromBindError(t *testing.T) {
	v := validator.New()
	err := v.Struct(&sample{Email: "nope", Name: "too long"})

	got := FromBindError(err, &sample{})
	assert.Equal(t, FieldErrors{
		"client_email": "Must be a valid email address.",
		"order_name":   "Must be at most 5 characters.",
		"currency":     "This field is required.",
	}, got)
}

func TestFromBindError_NotValidation(t *testing.T) {
	got := FromBindError(errors.New("unexpected EOF"), &sample{})
	assert.Equal(t, FieldErrors{"_": "Request body is invalid."}, got)
}
