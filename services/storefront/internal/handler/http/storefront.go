package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/peeyushtyagi09/newShopingAI/pkg/httputil"
	"github.com/peeyushtyagi09/newShopingAI/pkg/middleware"
	"github.com/peeyushtyagi09/newShopingAI/pkg/validator"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/modal"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/session"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/voice"
)

// maxBodyBytes bounds JSON and form request bodies.
const maxBodyBytes = 64 << 10

// Sessions hands out the engine of a visitor.
type Sessions interface {
	Get(ctx context.Context, visitorID string) (*session.Engine, error)
}

// Voices hands out the voice dispatcher of a visitor.
type Voices interface {
	Get(visitorID string) *voice.Dispatcher
}

// CatalogRefresher reloads the catalog in the background.
type CatalogRefresher interface {
	Refresh() bool
}

// StorefrontHandler serves the JSON storefront API.
type StorefrontHandler struct {
	sessions Sessions
	voices   Voices
	catalog  CatalogRefresher
	logger   *slog.Logger
}

// NewStorefrontHandler creates a new storefront API handler.
func NewStorefrontHandler(sessions Sessions, voices Voices, catalog CatalogRefresher, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		sessions: sessions,
		voices:   voices,
		catalog:  catalog,
		logger:   logger,
	}
}

// --- Request DTOs ---

// ProductRequest addresses a catalog product.
type ProductRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// QuantityRequest sets a cart line quantity. Values below 1 are accepted
// and ignored by the cart.
type QuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CategoryRequest selects a category filter.
type CategoryRequest struct {
	Category string `json:"category" validate:"required,max=200"`
}

// --- Response DTOs ---

// StorefrontResponse is a visitor's full state plus derived values.
type StorefrontResponse struct {
	VisitorID        string               `json:"visitor_id"`
	Loading          bool                 `json:"loading"`
	Error            string               `json:"error,omitempty"`
	Categories       []string             `json:"categories"`
	SelectedCategory domain.Category      `json:"selected_category"`
	Products         []domain.Product     `json:"products"`
	Cart             []domain.CartItem    `json:"cart"`
	Wishlist         []domain.Product     `json:"wishlist"`
	CartOpen         bool                 `json:"cart_open"`
	WishlistOpen     bool                 `json:"wishlist_open"`
	CartItemsCount   int                  `json:"cart_items_count"`
	WishlistCount    int                  `json:"wishlist_count"`
	CartTotal        string               `json:"cart_total"`
	Auth             domain.AuthState     `json:"auth"`
	Checkout         domain.CheckoutStage `json:"checkout"`
	PaymentNotice    string               `json:"payment_notice,omitempty"`
	Voice            voice.State          `json:"voice"`
}

func newStorefrontResponse(s session.Snapshot, vs voice.State) StorefrontResponse {
	categories := s.Categories
	if categories == nil {
		categories = []string{}
	}
	return StorefrontResponse{
		VisitorID:        s.VisitorID,
		Loading:          s.Loading,
		Error:            s.Error,
		Categories:       categories,
		SelectedCategory: s.SelectedCategory,
		Products:         s.FilteredProducts(),
		Cart:             s.Cart,
		Wishlist:         s.Wishlist,
		CartOpen:         s.CartOpen,
		WishlistOpen:     s.WishlistOpen,
		CartItemsCount:   s.CartItemsCount(),
		WishlistCount:    s.WishlistCount(),
		CartTotal:        domain.FormatPrice(s.CartTotal()),
		Auth:             s.Auth,
		Checkout:         s.Checkout,
		PaymentNotice:    s.PaymentNotice,
		Voice:            vs,
	}
}

// --- Helpers ---

// loadEngine returns the visitor's engine, or a service-unavailable error
// when it cannot be restored from storage.
func (h *StorefrontHandler) loadEngine(r *http.Request) (*session.Engine, error) {
	e, err := h.sessions.Get(r.Context(), middleware.VisitorIDFromContext(r.Context()))
	if err != nil {
		return nil, storageUnavailable()
	}
	return e, nil
}

// loadDispatcher returns the visitor's voice dispatcher. The engine is
// touched first: dispatchers are dropped only when their engine is evicted,
// so one must never exist without the other.
func (h *StorefrontHandler) loadDispatcher(r *http.Request) (*voice.Dispatcher, error) {
	if _, err := h.loadEngine(r); err != nil {
		return nil, err
	}
	return h.voices.Get(middleware.VisitorIDFromContext(r.Context())), nil
}

func (h *StorefrontHandler) engine(w http.ResponseWriter, r *http.Request) (*session.Engine, bool) {
	e, err := h.loadEngine(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	return e, true
}

func (h *StorefrontHandler) dispatcher(w http.ResponseWriter, r *http.Request) (*voice.Dispatcher, bool) {
	d, err := h.loadDispatcher(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	return d, true
}

func (h *StorefrontHandler) writeState(w http.ResponseWriter, r *http.Request, e *session.Engine) {
	vs := h.voices.Get(e.VisitorID()).State()
	httputil.WriteData(w, http.StatusOK, newStorefrontResponse(e.Snapshot(), vs))
}

// decode reads a JSON body into dst and validates it. Malformed bodies are
// reported as validation failures.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := validator.DecodeAndValidate(r, dst)
	if err == nil {
		return true
	}
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		httputil.WriteValidationError(w, err)
		return false
	}
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("invalid request body: %v", err)},
	})
	return false
}

// --- Handlers ---

// GetStorefront handles GET /api/v1/storefront
func (h *StorefrontHandler) GetStorefront(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	h.writeState(w, r, e)
}

// ListProducts handles GET /api/v1/products?category=
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	products := e.Products()
	if products == nil {
		httputil.WriteError(w, r, catalogNotReady(), h.logger)
		return
	}
	c := e.Snapshot().SelectedCategory
	if q := r.URL.Query().Get("category"); q != "" {
		c = domain.ParseCategory(q)
	}
	httputil.WriteData(w, http.StatusOK, domain.FilterProducts(products, c))
}

// AddCartItem handles POST /api/v1/cart/items
func (h *StorefrontHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decode(w, r, &req) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	p, err := e.LookupProduct(req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	e.AddToCart(r.Context(), p)
	h.writeState(w, r, e)
}

// UpdateCartItem handles PUT /api/v1/cart/items/{id}
func (h *StorefrontHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req QuantityRequest
	if !decode(w, r, &req) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.UpdateQuantity(r.Context(), id, *req.Quantity)
	h.writeState(w, r, e)
}

// RemoveCartItem handles DELETE /api/v1/cart/items/{id}
func (h *StorefrontHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.RemoveItem(r.Context(), id)
	h.writeState(w, r, e)
}

// ToggleWishlist handles POST /api/v1/wishlist/toggle
func (h *StorefrontHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decode(w, r, &req) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	p, err := wishlistProduct(e, req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	e.ToggleWishlist(r.Context(), p)
	h.writeState(w, r, e)
}

// wishlistProduct resolves a product for a wishlist toggle. A product that
// is already wishlisted can be removed even when it left the catalog.
func wishlistProduct(e *session.Engine, id int64) (domain.Product, error) {
	for _, p := range e.Snapshot().Wishlist {
		if p.ID == id {
			return p, nil
		}
	}
	return e.LookupProduct(id)
}

// SetCategory handles PUT /api/v1/category
func (h *StorefrontHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decode(w, r, &req) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.SetSelectedCategory(domain.ParseCategory(req.Category))
	h.writeState(w, r, e)
}

// Panel handles POST /api/v1/panels/{panel}/{action}
func (h *StorefrontHandler) Panel(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	if !applyPanel(e, chi.URLParam(r, "panel"), chi.URLParam(r, "action")) {
		httputil.WriteError(w, r, unknownPanel(), h.logger)
		return
	}
	h.writeState(w, r, e)
}

// Checkout handles POST /api/v1/checkout
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.Checkout()
	h.writeState(w, r, e)
}

// SubmitAuth handles POST /api/v1/checkout/auth
func (h *StorefrontHandler) SubmitAuth(w http.ResponseWriter, r *http.Request) {
	var form modal.AuthForm
	if !decode(w, r, &form) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	if err := modal.NewAuth(e.AuthSucceeded, e.CloseAuth).Submit(form); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	h.writeState(w, r, e)
}

// CloseAuth handles POST /api/v1/checkout/auth/close
func (h *StorefrontHandler) CloseAuth(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	modal.NewAuth(e.AuthSucceeded, e.CloseAuth).Close()
	h.writeState(w, r, e)
}

// SubmitPayment handles POST /api/v1/checkout/payment
func (h *StorefrontHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var form modal.PaymentForm
	if !decode(w, r, &form) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	if err := modal.NewPayment(e.PaymentSucceeded, e.ClosePayment).Submit(form); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	h.writeState(w, r, e)
}

// ClosePayment handles POST /api/v1/checkout/payment/close
func (h *StorefrontHandler) ClosePayment(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	modal.NewPayment(e.PaymentSucceeded, e.ClosePayment).Close()
	h.writeState(w, r, e)
}

// DismissNotice handles POST /api/v1/checkout/notice/dismiss
func (h *StorefrontHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.DismissPaymentNotice()
	h.writeState(w, r, e)
}

// ReloadCatalog handles POST /api/v1/catalog/reload
func (h *StorefrontHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if h.catalog.Refresh() {
		logFromRequest(r, h.logger).Info("catalog reload requested")
	}
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"status": "reloading"}})
}

// applyPanel opens or closes a drawer. It reports false for unknown
// panels or actions.
func applyPanel(e *session.Engine, panel, action string) bool {
	switch panel + "/" + action {
	case "cart/open":
		e.OpenCart()
	case "cart/close":
		e.CloseCart()
	case "wishlist/open":
		e.OpenWishlist()
	case "wishlist/close":
		e.CloseWishlist()
	default:
		return false
	}
	return true
}
