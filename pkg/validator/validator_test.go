package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type signIn struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=50"`
}

type card struct {
	Method string `json:"method" validate:"required,oneof=card wallet"`
	Number string `json:"card_number" validate:"required_if=Method card,omitempty,numeric,min=12,max=19"`
	Expiry string `json:"expiry" validate:"required_if=Method card,omitempty,card_expiry"`
	CVC    string `json:"cvc" validate:"required_if=Method card,omitempty,numeric,len=3"`
}

func TestValidate_Success(t *testing.T) {
	q := 2
	assert.NoError(t, Validate(quantityRequest{Quantity: &q}))
	assert.NoError(t, Validate(signIn{Email: "ada@example.com", Name: "Ada"}))
	assert.NoError(t, Validate(card{Method: "wallet"}))
	assert.NoError(t, Validate(card{Method: "card", Number: "4242424242424242", Expiry: "12/29", CVC: "123"}))
}

func TestValidate_FieldsUseJSONNames(t *testing.T) {
	err := Validate(signIn{Email: "not-an-email"})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	fields := valErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "is required", fields["name"])
}

func TestValidate_CardExpiry(t *testing.T) {
	err := Validate(card{Method: "card", Number: "4242424242424242", Expiry: "13/29", CVC: "123"})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "must be in MM/YY format", valErr.Fields()["expiry"])
}

func TestValidate_CardRequiredForCardMethod(t *testing.T) {
	err := Validate(card{Method: "card"})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	fields := valErr.Fields()
	assert.Contains(t, fields, "card_number")
	assert.Contains(t, fields, "expiry")
	assert.Contains(t, fields, "cvc")
}

func TestValidate_OneOf(t *testing.T) {
	err := Validate(card{Method: "cash"})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "must be one of: card wallet", valErr.Fields()["method"])
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(quantityRequest{})
	require.Error(t, err)
	assert.Equal(t, "field 'quantity' is required", err.Error())
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"quantity":3}`))
		var dst quantityRequest
		require.NoError(t, DecodeAndValidate(r, &dst))
		assert.Equal(t, 3, *dst.Quantity)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"quantity":"three"}`))
		var dst quantityRequest
		err := DecodeAndValidate(r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode request body")
	})

	t.Run("missing field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`))
		var dst quantityRequest
		var valErr *ValidationError
		assert.True(t, errors.As(DecodeAndValidate(r, &dst), &valErr))
	})
}
