package modal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peeyushtyagi09/newShopingAI/pkg/validator"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
)

func TestAuth_Submit(t *testing.T) {
	var got *domain.User
	closed := false
	a := NewAuth(func(u domain.User) { got = &u }, func() { closed = true })

	require.NoError(t, a.Submit(AuthForm{Email: " jane@example.com ", Name: "Jane"}))
	require.NotNil(t, got)
	assert.Equal(t, domain.User{Email: "jane@example.com", Name: "Jane"}, *got)
	assert.False(t, closed)

	a.Close()
	assert.True(t, closed)
}

func TestAuth_SubmitInvalid(t *testing.T) {
	called := false
	a := NewAuth(func(domain.User) { called = true }, func() {})

	err := a.Submit(AuthForm{Email: "not-an-email", Name: "  "})

	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := verr.Fields()
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "is required", fields["name"])
	assert.False(t, called)
}

func TestPayment_Submit(t *testing.T) {
	tests := []struct {
		name    string
		form    PaymentForm
		wantErr map[string]string
	}{
		{
			name: "card",
			form: PaymentForm{Method: MethodCard, CardNumber: "1234 5678 9012 3456", Expiry: "09/28", CVC: "123"},
		},
		{
			name: "wallet",
			form: PaymentForm{Method: MethodWallet, Wallet: WalletGooglePay},
		},
		{
			name:    "card fields required",
			form:    PaymentForm{Method: MethodCard},
			wantErr: map[string]string{"card_number": "is required", "expiry": "is required", "cvc": "is required"},
		},
		{
			name:    "bad expiry and cvc",
			form:    PaymentForm{Method: MethodCard, CardNumber: "4111111111111111", Expiry: "13/28", CVC: "12a"},
			wantErr: map[string]string{"expiry": "must be in MM/YY format", "cvc": "must contain only digits"},
		},
		{
			name:    "wallet required",
			form:    PaymentForm{Method: MethodWallet},
			wantErr: map[string]string{"wallet": "is required"},
		},
		{
			name:    "unknown method",
			form:    PaymentForm{Method: "cash"},
			wantErr: map[string]string{"method": "must be one of: card wallet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paid := false
			p := NewPayment(func() { paid = true }, func() {})

			err := p.Submit(tt.form)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.True(t, paid)
				return
			}
			var verr *validator.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Fields())
			assert.False(t, paid)
		})
	}
}

func TestPayment_Close(t *testing.T) {
	closed := false
	NewPayment(func() {}, func() { closed = true }).Close()
	assert.True(t, closed)
}
