package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/peeyushtyagi09/newShopingAI/pkg/errors"
	"github.com/peeyushtyagi09/newShopingAI/pkg/validator"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/modal"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/session"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/view"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/voice"
)

// UIHandler serves the server-rendered storefront. Every form action
// applies one engine operation and redirects back to the page.
type UIHandler struct {
	api      *StorefrontHandler
	renderer *view.HTMLRenderer
	logger   *slog.Logger
}

// NewUIHandler creates the HTML handler on top of the API handler's
// collaborators.
func NewUIHandler(api *StorefrontHandler, renderer *view.HTMLRenderer, logger *slog.Logger) *UIHandler {
	return &UIHandler{api: api, renderer: renderer, logger: logger}
}

// Page handles GET /
func (h *UIHandler) Page(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	page := view.Render(e.Snapshot(), h.api.voices.Get(e.VisitorID()).State())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, page); err != nil {
		logFromRequest(r, h.logger).Error("render page", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// SlideCategory handles GET /category/{name}, the promotional slide links.
func (h *UIHandler) SlideCategory(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.SetSelectedCategory(domain.ParseCategory(chi.URLParam(r, "name")))
	back(w, r)
}

func (h *UIHandler) engine(w http.ResponseWriter, r *http.Request) (*session.Engine, bool) {
	e, err := h.api.loadEngine(r)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return e, true
}

func (h *UIHandler) dispatcher(w http.ResponseWriter, r *http.Request) (*voice.Dispatcher, bool) {
	d, err := h.api.loadDispatcher(r)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return d, true
}

// back redirects to the storefront page after a form action.
func back(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// fail answers a rejected form action with a plain-text error.
func (h *UIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	msg := http.StatusText(status)

	var appErr *apperrors.AppError
	var verr *validator.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		msg = verr.Error()
	case errors.As(err, &appErr):
		msg = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logFromRequest(r, h.logger).Error("form action failed", slog.String("error", err.Error()))
	}
	http.Error(w, msg, status)
}

func (h *UIHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, apperrors.InvalidInput("malformed form"))
		return false
	}
	return true
}

func (h *UIHandler) formProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if !h.parseForm(w, r) {
		return 0, false
	}
	id, err := strconv.ParseInt(r.PostFormValue("product_id"), 10, 64)
	if err != nil || id <= 0 {
		h.fail(w, r, apperrors.InvalidInput("product_id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// AddToCart handles POST /ui/cart/add
func (h *UIHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formProductID(w, r)
	if !ok {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	p, err := e.LookupProduct(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e.AddToCart(r.Context(), p)
	back(w, r)
}

// UpdateQuantity handles POST /ui/cart/quantity
func (h *UIHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formProductID(w, r)
	if !ok {
		return
	}
	q, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		h.fail(w, r, apperrors.InvalidInput("quantity must be an integer"))
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.UpdateQuantity(r.Context(), id, q)
	back(w, r)
}

// RemoveItem handles POST /ui/cart/remove
func (h *UIHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formProductID(w, r)
	if !ok {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.RemoveItem(r.Context(), id)
	back(w, r)
}

// ToggleWishlist handles POST /ui/wishlist/toggle
func (h *UIHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formProductID(w, r)
	if !ok {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	p, err := wishlistProduct(e, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e.ToggleWishlist(r.Context(), p)
	back(w, r)
}

// SelectCategory handles POST /ui/category
func (h *UIHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	c := strings.TrimSpace(r.PostFormValue("category"))
	if c == "" {
		h.fail(w, r, apperrors.InvalidInput("category is required"))
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.SetSelectedCategory(domain.ParseCategory(c))
	back(w, r)
}

// Panel returns the handler of POST /ui/{panel}/{action} for the cart and
// wishlist drawers.
func (h *UIHandler) Panel(panel, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := h.engine(w, r)
		if !ok {
			return
		}
		if !applyPanel(e, panel, action) {
			h.fail(w, r, unknownPanel())
			return
		}
		back(w, r)
	}
}

// Checkout handles POST /ui/checkout
func (h *UIHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.Checkout()
	back(w, r)
}

// SubmitAuth handles POST /ui/checkout/auth
func (h *UIHandler) SubmitAuth(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	form := modal.AuthForm{Email: r.PostFormValue("email"), Name: r.PostFormValue("name")}
	if err := modal.NewAuth(e.AuthSucceeded, e.CloseAuth).Submit(form); err != nil {
		h.fail(w, r, err)
		return
	}
	back(w, r)
}

// CloseAuth handles POST /ui/checkout/auth/close
func (h *UIHandler) CloseAuth(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.CloseAuth()
	back(w, r)
}

// SubmitPayment handles POST /ui/checkout/payment
func (h *UIHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	form := modal.PaymentForm{
		Method:     r.PostFormValue("method"),
		CardNumber: r.PostFormValue("card_number"),
		Expiry:     r.PostFormValue("expiry"),
		CVC:        r.PostFormValue("cvc"),
		Wallet:     r.PostFormValue("wallet"),
	}
	if err := modal.NewPayment(e.PaymentSucceeded, e.ClosePayment).Submit(form); err != nil {
		h.fail(w, r, err)
		return
	}
	back(w, r)
}

// ClosePayment handles POST /ui/checkout/payment/close
func (h *UIHandler) ClosePayment(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.ClosePayment()
	back(w, r)
}

// DismissNotice handles POST /ui/notice/dismiss
func (h *UIHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	e, ok := h.engine(w, r)
	if !ok {
		return
	}
	e.DismissPaymentNotice()
	back(w, r)
}

// ToggleVoice handles POST /ui/voice/toggle
func (h *UIHandler) ToggleVoice(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	d.ToggleListening(r.Context())
	back(w, r)
}

// SubmitUtterance handles POST /ui/voice/utterance
func (h *UIHandler) SubmitUtterance(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	if t := strings.TrimSpace(r.PostFormValue("transcript")); t != "" {
		d, ok := h.dispatcher(w, r)
		if !ok {
			return
		}
		d.HandleUtterance(r.Context(), t)
	}
	back(w, r)
}

// ToggleVoiceHelp handles POST /ui/voice/help/toggle
func (h *UIHandler) ToggleVoiceHelp(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	d.ToggleHelp()
	back(w, r)
}

// ClearVoiceFeedback handles POST /ui/voice/feedback/clear
func (h *UIHandler) ClearVoiceFeedback(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	d.ClearFeedback()
	back(w, r)
}

// ReloadCatalog handles POST /ui/catalog/reload, the error page's Retry.
func (h *UIHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	h.api.catalog.Refresh()
	back(w, r)
}
