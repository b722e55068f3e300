package session

import (
	"github.com/shopspring/decimal"

	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
)

// Snapshot is a read-only copy of one visitor's session state. Views and
// API responses are built from snapshots, never from the engine itself.
type Snapshot struct {
	VisitorID        string
	Catalog          []domain.Product
	Categories       []string
	Cart             []domain.CartItem
	Wishlist         []domain.Product
	SelectedCategory domain.Category
	CartOpen         bool
	WishlistOpen     bool
	Loading          bool
	Error            string
	Auth             domain.AuthState
	Checkout         domain.CheckoutStage
	PaymentNotice    string
}

// FilteredProducts returns the catalog restricted to the selected category.
func (s Snapshot) FilteredProducts() []domain.Product {
	return domain.FilterProducts(s.Catalog, s.SelectedCategory)
}

// CartTotal is the two-decimal cart total.
func (s Snapshot) CartTotal() decimal.Decimal {
	return domain.CartTotal(s.Cart)
}

// CartItemsCount is the header cart badge value.
func (s Snapshot) CartItemsCount() int {
	return domain.CartItemsCount(s.Cart)
}

// WishlistCount is the header wishlist badge value.
func (s Snapshot) WishlistCount() int {
	return len(s.Wishlist)
}

// IsInWishlist reports wishlist membership of product id.
func (s Snapshot) IsInWishlist(id int64) bool {
	return domain.IsInWishlist(s.Wishlist, id)
}
