package domain

// User is the identity captured by the mock sign-in form.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthState records whether the visitor signed in during this session.
type AuthState struct {
	IsAuthenticated bool  `json:"is_authenticated"`
	User            *User `json:"user,omitempty"`
}

// CheckoutStage is the modal currently presented by the checkout flow.
type CheckoutStage string

const (
	CheckoutNone    CheckoutStage = "none"
	CheckoutAuth    CheckoutStage = "auth"
	CheckoutPayment CheckoutStage = "payment"
)

// PaymentSuccessNotice is shown after the mock payment completes.
const PaymentSuccessNotice = "Payment successful!"
