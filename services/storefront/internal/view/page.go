// Package view renders a visitor's session snapshot. Render builds a plain
// page model; the HTML renderer in this package only formats that model.
package view

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/peeyushtyagi09/newShopingAI/pkg/slug"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/session"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/voice"
)

// Empty-state texts.
const (
	CartEmptyText     = "Your cart is empty"
	WishlistEmptyText = "Your wishlist is empty"
)

// Page is everything one render of the storefront shows. When Loading is
// set or Error is non-nil, no other section is populated.
type Page struct {
	Loading bool       `json:"loading"`
	Error   *ErrorView `json:"error,omitempty"`

	Header        Header         `json:"header"`
	Slider        Slider         `json:"slider"`
	Showcase      []ShowcaseItem `json:"showcase"`
	Chips         []Chip         `json:"chips"`
	Grid          Grid           `json:"grid"`
	Cart          CartDrawer     `json:"cart"`
	Wishlist      WishlistDrawer `json:"wishlist"`
	Voice         VoiceWidget    `json:"voice"`
	AuthModal     *AuthModal     `json:"auth_modal,omitempty"`
	PaymentModal  *PaymentModal  `json:"payment_modal,omitempty"`
	PaymentNotice string         `json:"payment_notice,omitempty"`
}

// ErrorView replaces the page while the catalog failed to load.
type ErrorView struct {
	Message     string `json:"message"`
	RetryAction string `json:"retry_action"`
}

// Header carries the badge counts. A badge is hidden when its count is 0.
type Header struct {
	CartItemsCount    int  `json:"cart_items_count"`
	WishlistCount     int  `json:"wishlist_count"`
	ShowCartBadge     bool `json:"show_cart_badge"`
	ShowWishlistBadge bool `json:"show_wishlist_badge"`
}

// Slide is one promotional banner. Link is a "/category/<name>" pseudo-path.
type Slide struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Link        string `json:"link"`
}

// Category returns the category a click on the slide selects. The names
// are promotional and need not exist in the catalog.
func (s Slide) Category() string {
	return strings.TrimPrefix(s.Link, "/category/")
}

// Slider is the promotional carousel.
type Slider struct {
	Slides []Slide `json:"slides"`
}

// Slides are the fixed promotional banners.
var Slides = []Slide{
	{
		Title:       "Summer Collection",
		Description: "Discover our latest summer styles",
		Image:       "https://images.unsplash.com/photo-1441986300917-64674bd600d8?auto=format&fit=crop&q=80&w=1200&h=600",
		Link:        "/category/summer",
	},
	{
		Title:       "Fashion Week Special",
		Description: "Exclusive designs from top brands",
		Image:       "https://images.unsplash.com/photo-1483985988355-763728e1935b?auto=format&fit=crop&q=80&w=1200&h=600",
		Link:        "/category/fashion",
	},
	{
		Title:       "New Arrivals",
		Description: "Be the first to shop new trends",
		Image:       "https://images.unsplash.com/photo-1490114538077-0a7f8cb49891?auto=format&fit=crop&q=80&w=1200&h=600",
		Link:        "/category/new",
	},
}

// ShowcaseItem is a category tile.
type ShowcaseItem struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Icon     string `json:"icon"`
}

// Chip is a category filter button.
type Chip struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Slug     string `json:"slug"`
	Selected bool   `json:"selected"`
}

// Card is one product of the grid.
type Card struct {
	Product    domain.Product `json:"product"`
	PriceLabel string         `json:"price_label"`
	InWishlist bool           `json:"in_wishlist"`
}

// Grid is the filtered product list.
type Grid struct {
	Cards []Card `json:"cards"`
}

// CartLine is one cart row.
type CartLine struct {
	Item              domain.CartItem `json:"item"`
	PriceLabel        string          `json:"price_label"`
	DecrementDisabled bool            `json:"decrement_disabled"`
}

// CartDrawer is the cart side panel.
type CartDrawer struct {
	Visible bool       `json:"visible"`
	Empty   bool       `json:"empty"`
	Lines   []CartLine `json:"lines"`
	Total   string     `json:"total"`
}

// WishlistLine is one wishlist row.
type WishlistLine struct {
	Product    domain.Product `json:"product"`
	PriceLabel string         `json:"price_label"`
}

// WishlistDrawer is the wishlist side panel.
type WishlistDrawer struct {
	Visible bool           `json:"visible"`
	Empty   bool           `json:"empty"`
	Lines   []WishlistLine `json:"lines"`
}

// VoiceWidget is the floating voice assistant. Transcript is only shown
// while listening. An unsupported widget shows Notice and nothing else.
type VoiceWidget struct {
	Supported  bool     `json:"supported"`
	Notice     string   `json:"notice,omitempty"`
	Listening  bool     `json:"listening"`
	Transcript string   `json:"transcript,omitempty"`
	Feedback   string   `json:"feedback,omitempty"`
	ShowHelp   bool     `json:"show_help"`
	HelpLines  []string `json:"help_lines,omitempty"`
}

// AuthModal is the sign-in dialog shown during checkout.
type AuthModal struct{}

// PaymentModal is the payment dialog shown during checkout.
type PaymentModal struct {
	Total string `json:"total"`
}

// Render builds the page for a snapshot and the visitor's voice state.
func Render(s session.Snapshot, vs voice.State) Page {
	if s.Loading {
		return Page{Loading: true}
	}
	if s.Error != "" {
		return Page{Error: &ErrorView{Message: s.Error, RetryAction: "/ui/catalog/reload"}}
	}

	p := Page{
		Header:        RenderHeader(s),
		Slider:        Slider{Slides: Slides},
		Showcase:      RenderShowcase(s.Categories),
		Chips:         RenderChips(s.Categories, s.SelectedCategory),
		Grid:          RenderGrid(s),
		Cart:          RenderCart(s),
		Wishlist:      RenderWishlist(s),
		Voice:         RenderVoice(vs),
		PaymentNotice: s.PaymentNotice,
	}
	switch s.Checkout {
	case domain.CheckoutAuth:
		p.AuthModal = &AuthModal{}
	case domain.CheckoutPayment:
		p.PaymentModal = &PaymentModal{Total: domain.FormatPrice(s.CartTotal())}
	}
	return p
}

// RenderHeader computes the badges.
func RenderHeader(s session.Snapshot) Header {
	cart, wish := s.CartItemsCount(), s.WishlistCount()
	return Header{
		CartItemsCount:    cart,
		WishlistCount:     wish,
		ShowCartBadge:     cart > 0,
		ShowWishlistBadge: wish > 0,
	}
}

// RenderShowcase lists every category except "all".
func RenderShowcase(categories []string) []ShowcaseItem {
	out := make([]ShowcaseItem, 0, len(categories))
	for _, c := range categories {
		if c == domain.AllCategoryName {
			continue
		}
		out = append(out, ShowcaseItem{Category: c, Label: Capitalize(c), Icon: CategoryIcon(c)})
	}
	return out
}

// RenderChips lists every category, marking the selected one.
func RenderChips(categories []string, selected domain.Category) []Chip {
	out := make([]Chip, 0, len(categories))
	for _, c := range categories {
		out = append(out, Chip{
			Category: c,
			Label:    Capitalize(c),
			Slug:     slug.Generate(c),
			Selected: c == selected.String(),
		})
	}
	return out
}

// RenderGrid lists the filtered products.
func RenderGrid(s session.Snapshot) Grid {
	products := s.FilteredProducts()
	cards := make([]Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, Card{Product: p, PriceLabel: PriceLabel(p.Price), InWishlist: s.IsInWishlist(p.ID)})
	}
	return Grid{Cards: cards}
}

// RenderCart builds the cart drawer.
func RenderCart(s session.Snapshot) CartDrawer {
	lines := make([]CartLine, 0, len(s.Cart))
	for _, it := range s.Cart {
		lines = append(lines, CartLine{
			Item:              it,
			PriceLabel:        PriceLabel(it.Price),
			DecrementDisabled: it.Quantity == 1,
		})
	}
	return CartDrawer{
		Visible: s.CartOpen,
		Empty:   len(lines) == 0,
		Lines:   lines,
		Total:   domain.FormatPrice(s.CartTotal()),
	}
}

// RenderWishlist builds the wishlist drawer.
func RenderWishlist(s session.Snapshot) WishlistDrawer {
	lines := make([]WishlistLine, 0, len(s.Wishlist))
	for _, p := range s.Wishlist {
		lines = append(lines, WishlistLine{Product: p, PriceLabel: PriceLabel(p.Price)})
	}
	return WishlistDrawer{Visible: s.WishlistOpen, Empty: len(lines) == 0, Lines: lines}
}

// RenderVoice builds the voice widget.
func RenderVoice(vs voice.State) VoiceWidget {
	if !vs.Supported {
		return VoiceWidget{Notice: voice.UnsupportedText}
	}
	w := VoiceWidget{
		Supported: true,
		Listening: vs.IsListening,
		Feedback:  vs.Feedback,
		ShowHelp:  vs.ShowHelp,
	}
	if vs.IsListening {
		w.Transcript = vs.Transcript
	}
	if vs.ShowHelp {
		w.HelpLines = voice.HelpLines
	}
	return w
}

// CategoryIcon names the showcase icon of a category.
func CategoryIcon(category string) string {
	switch strings.ToLower(category) {
	case "electronics":
		return "package"
	case "men's clothing":
		return "shirt"
	case "women's clothing":
		return "shopping-bag"
	case "jewelery":
		return "diamond"
	default:
		return "watch"
	}
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// PriceLabel formats a unit price with a dollar sign and two decimals.
func PriceLabel(price float64) string {
	return "$" + domain.FormatProductPrice(price)
}
