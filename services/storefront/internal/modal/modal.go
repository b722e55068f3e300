// Package modal implements the sign-in and payment dialogs of the checkout
// flow. Both are stand-ins: submitting a valid form reports success and
// nothing else happens.
package modal

import (
	"strings"

	"github.com/peeyushtyagi09/newShopingAI/pkg/validator"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
)

// Payment methods offered by the payment dialog.
const (
	MethodCard   = "card"
	MethodWallet = "wallet"
)

// Digital wallets offered for MethodWallet.
const (
	WalletPayPal    = "paypal"
	WalletGooglePay = "google_pay"
)

// AuthForm is the sign-in dialog input.
type AuthForm struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name" validate:"required,max=100"`
}

// PaymentForm is the payment dialog input. Card fields are required only
// when paying by card.
type PaymentForm struct {
	Method     string `json:"method" validate:"required,oneof=card wallet"`
	CardNumber string `json:"card_number" validate:"required_if=Method card,omitempty,min=12,max=23"`
	Expiry     string `json:"expiry" validate:"required_if=Method card,omitempty,card_expiry"`
	CVC        string `json:"cvc" validate:"required_if=Method card,omitempty,numeric,min=3,max=4"`
	Wallet     string `json:"wallet" validate:"required_if=Method wallet,omitempty,oneof=paypal google_pay"`
}

// Auth is the sign-in dialog.
type Auth struct {
	onSuccess func(domain.User)
	onClose   func()
}

// NewAuth creates a sign-in dialog reporting to the given callbacks.
func NewAuth(onSuccess func(domain.User), onClose func()) *Auth {
	return &Auth{onSuccess: onSuccess, onClose: onClose}
}

// Submit validates form and reports the signed-in user.
func (a *Auth) Submit(form AuthForm) error {
	form.Email = strings.TrimSpace(form.Email)
	form.Name = strings.TrimSpace(form.Name)
	if err := validator.Validate(form); err != nil {
		return err
	}
	a.onSuccess(domain.User{Email: form.Email, Name: form.Name})
	return nil
}

// Close dismisses the dialog.
func (a *Auth) Close() { a.onClose() }

// Payment is the payment dialog.
type Payment struct {
	onSuccess func()
	onClose   func()
}

// NewPayment creates a payment dialog reporting to the given callbacks.
func NewPayment(onSuccess, onClose func()) *Payment {
	return &Payment{onSuccess: onSuccess, onClose: onClose}
}

// Submit validates form and reports a successful payment. No money moves.
func (p *Payment) Submit(form PaymentForm) error {
	form.CardNumber = strings.TrimSpace(form.CardNumber)
	if err := validator.Validate(form); err != nil {
		return err
	}
	p.onSuccess()
	return nil
}

// Close dismisses the dialog.
func (p *Payment) Close() { p.onClose() }
