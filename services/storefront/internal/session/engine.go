package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	apperrors "github.com/peeyushtyagi09/newShopingAI/pkg/errors"
	"github.com/peeyushtyagi09/newShopingAI/pkg/logger"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/catalog"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository"
)

// CatalogSource exposes the shared catalog outcome.
type CatalogSource interface {
	State() catalog.State
}

// Engine owns one visitor's session state. Every operation runs to
// completion under the engine lock, including the persistence write of a
// changed collection, so mutations of one visitor are applied in arrival
// order and the stored JSON always equals the in-memory value after a
// successful write.
//
// No operation fails for domain reasons: invalid input is a no-op.
type Engine struct {
	visitorID string
	store     repository.KeyValueStore
	catalog   CatalogSource
	logger    *slog.Logger

	mu            sync.Mutex
	cart          []domain.CartItem
	wishlist      []domain.Product
	selected      domain.Category
	cartOpen      bool
	wishlistOpen  bool
	auth          domain.AuthState
	checkout      domain.CheckoutStage
	paymentNotice string
}

// NewEngine creates an engine for visitorID and restores its cart and
// wishlist from store. Missing or malformed collections start empty; a
// failed read is returned so that an unreachable store is never taken for
// an empty one and overwritten by the next mutation.
func NewEngine(ctx context.Context, visitorID string, store repository.KeyValueStore, source CatalogSource, log *slog.Logger) (*Engine, error) {
	cart, err := repository.ReadJSON(ctx, store, repository.KeyCartItems, []domain.CartItem{})
	if err != nil {
		return nil, fmt.Errorf("restore cart of %s: %w", visitorID, err)
	}
	wishlist, err := repository.ReadJSON(ctx, store, repository.KeyWishlist, []domain.Product{})
	if err != nil {
		return nil, fmt.Errorf("restore wishlist of %s: %w", visitorID, err)
	}
	// A stored JSON null decodes to a nil slice.
	if cart == nil {
		cart = []domain.CartItem{}
	}
	if wishlist == nil {
		wishlist = []domain.Product{}
	}

	return &Engine{
		visitorID: visitorID,
		store:     store,
		catalog:   source,
		logger:    log.With(slog.String("visitor_id", visitorID)),
		cart:      cart,
		wishlist:  wishlist,
		selected:  domain.AllCategories(),
		checkout:  domain.CheckoutNone,
	}, nil
}

// VisitorID returns the id of the visitor owning this engine.
func (e *Engine) VisitorID() string { return e.visitorID }

// ---------------------------------------------------------------------------
// Cart and wishlist
// ---------------------------------------------------------------------------

// AddToCart increments p in the cart or appends it with quantity 1.
func (e *Engine) AddToCart(ctx context.Context, p domain.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cart = domain.AddToCart(e.cart, p)
	cartMutations.WithLabelValues("add_to_cart").Inc()
	e.persist(ctx, repository.KeyCartItems, e.cart)
}

// UpdateQuantity sets the quantity of item id. Quantities below 1 and
// unknown ids are ignored.
func (e *Engine) UpdateQuantity(ctx context.Context, id int64, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, changed := domain.UpdateQuantity(e.cart, id, quantity)
	if !changed {
		return
	}
	e.cart = cart
	cartMutations.WithLabelValues("update_quantity").Inc()
	e.persist(ctx, repository.KeyCartItems, e.cart)
}

// RemoveItem removes item id from the cart.
func (e *Engine) RemoveItem(ctx context.Context, id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, changed := domain.RemoveItem(e.cart, id)
	if !changed {
		return
	}
	e.cart = cart
	cartMutations.WithLabelValues("remove_item").Inc()
	e.persist(ctx, repository.KeyCartItems, e.cart)
}

// ToggleWishlist adds p to the wishlist or removes it.
func (e *Engine) ToggleWishlist(ctx context.Context, p domain.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.wishlist = domain.ToggleWishlist(e.wishlist, p)
	cartMutations.WithLabelValues("toggle_wishlist").Inc()
	e.persist(ctx, repository.KeyWishlist, e.wishlist)
}

// persist writes a collection. Failures are logged and counted; the
// in-memory value stays authoritative and the next write resynchronizes.
// Callers hold e.mu.
func (e *Engine) persist(ctx context.Context, key string, v any) {
	if err := repository.WriteJSON(ctx, e.store, key, v); err != nil {
		persistenceWriteErrors.WithLabelValues(key).Inc()
		logger.WithContext(ctx, e.logger).Warn("persist collection failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// ---------------------------------------------------------------------------
// Filters and panels
// ---------------------------------------------------------------------------

// SetSelectedCategory assigns the filter. Unknown categories simply match
// nothing.
func (e *Engine) SetSelectedCategory(c domain.Category) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = c
}

func (e *Engine) OpenCart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cartOpen = true
}

// CloseCart hides the cart drawer and dismisses any checkout modal shown
// on top of it.
func (e *Engine) CloseCart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cartOpen = false
	e.checkout = domain.CheckoutNone
}

func (e *Engine) OpenWishlist() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wishlistOpen = true
}

func (e *Engine) CloseWishlist() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wishlistOpen = false
}

// ---------------------------------------------------------------------------
// Checkout
// ---------------------------------------------------------------------------

// Checkout presents the auth modal to anonymous visitors and the payment
// modal to signed-in ones. An empty cart makes it a no-op.
func (e *Engine) Checkout() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.cart) == 0 {
		return
	}
	e.cartOpen = true
	e.paymentNotice = ""
	if e.auth.IsAuthenticated {
		e.checkout = domain.CheckoutPayment
		return
	}
	e.checkout = domain.CheckoutAuth
}

// AuthSucceeded signs the visitor in and moves from the auth modal
// straight to payment.
func (e *Engine) AuthSucceeded(user domain.User) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.auth = domain.AuthState{IsAuthenticated: true, User: &user}
	if e.checkout == domain.CheckoutAuth {
		e.checkout = domain.CheckoutPayment
	}
}

func (e *Engine) CloseAuth() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.checkout == domain.CheckoutAuth {
		e.checkout = domain.CheckoutNone
	}
}

// PaymentSucceeded closes the payment modal with a success notice. The
// payment is a mock and the cart is left untouched.
func (e *Engine) PaymentSucceeded() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.checkout != domain.CheckoutPayment {
		return
	}
	e.checkout = domain.CheckoutNone
	e.paymentNotice = domain.PaymentSuccessNotice
}

func (e *Engine) ClosePayment() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.checkout == domain.CheckoutPayment {
		e.checkout = domain.CheckoutNone
	}
}

// DismissPaymentNotice clears the success notice.
func (e *Engine) DismissPaymentNotice() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paymentNotice = ""
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// Snapshot copies the current state together with the shared catalog.
func (e *Engine) Snapshot() Snapshot {
	cs := e.catalog.State()

	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		VisitorID:        e.visitorID,
		Cart:             slices.Clone(e.cart),
		Wishlist:         slices.Clone(e.wishlist),
		SelectedCategory: e.selected,
		CartOpen:         e.cartOpen,
		WishlistOpen:     e.wishlistOpen,
		Loading:          cs.Loading,
		Auth:             e.auth,
		Checkout:         e.checkout,
		PaymentNotice:    e.paymentNotice,
		Catalog:          []domain.Product{},
		Categories:       []string{domain.AllCategoryName},
	}
	if cs.Err != nil {
		s.Error = catalog.FailureMessage
	}
	if cs.Catalog != nil {
		s.Catalog = cs.Catalog.Products
		s.Categories = cs.Catalog.Categories
	}
	return s
}

// Products returns the loaded catalog, or nil while none is available.
func (e *Engine) Products() []domain.Product {
	cs := e.catalog.State()
	if cs.Catalog == nil {
		return nil
	}
	return cs.Catalog.Products
}

// LookupProduct resolves a catalog product by id. Cart and wishlist entries
// must come from the catalog, so API requests go through here.
func (e *Engine) LookupProduct(id int64) (domain.Product, error) {
	cs := e.catalog.State()
	if cs.Catalog == nil {
		return domain.Product{}, apperrors.Unavailable("CATALOG_UNAVAILABLE", "the product catalog is not available yet")
	}
	p, ok := domain.FindProduct(cs.Catalog.Products, id)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}
	return p, nil
}
