package domain

import "github.com/shopspring/decimal"

// CartItem is a product with a quantity of at least one. It serializes
// flat, as the product fields plus "quantity".
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// The reducers below never modify their input slices. The returned bool
// reports whether anything changed.

// AddToCart increments the quantity of p if it is already in the cart and
// appends it with quantity 1 otherwise.
func AddToCart(cart []CartItem, p Product) []CartItem {
	out := make([]CartItem, len(cart), len(cart)+1)
	copy(out, cart)
	if i := cartIndex(out, p.ID); i >= 0 {
		out[i].Quantity++
		return out
	}
	return append(out, CartItem{Product: p, Quantity: 1})
}

// UpdateQuantity sets the quantity of item id. Quantities below 1 and
// unknown ids leave the cart unchanged.
func UpdateQuantity(cart []CartItem, id int64, quantity int) ([]CartItem, bool) {
	if quantity < 1 {
		return cart, false
	}
	i := cartIndex(cart, id)
	if i < 0 || cart[i].Quantity == quantity {
		return cart, false
	}
	out := make([]CartItem, len(cart))
	copy(out, cart)
	out[i].Quantity = quantity
	return out, true
}

// RemoveItem drops item id from the cart.
func RemoveItem(cart []CartItem, id int64) ([]CartItem, bool) {
	i := cartIndex(cart, id)
	if i < 0 {
		return cart, false
	}
	out := make([]CartItem, 0, len(cart)-1)
	out = append(out, cart[:i]...)
	return append(out, cart[i+1:]...), true
}

// CartItemsCount is the sum of all quantities.
func CartItemsCount(cart []CartItem) int {
	n := 0
	for _, item := range cart {
		n += item.Quantity
	}
	return n
}

// CartTotal is the sum of price times quantity, rounded half away from zero
// to two decimal places.
func CartTotal(cart []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range cart {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2)
}

// FormatPrice renders an amount with exactly two decimals.
func FormatPrice(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatProductPrice renders a catalog price with exactly two decimals.
func FormatProductPrice(price float64) string {
	return FormatPrice(decimal.NewFromFloat(price))
}

func cartIndex(cart []CartItem, id int64) int {
	for i := range cart {
		if cart[i].ID == id {
			return i
		}
	}
	return -1
}

// ToggleWishlist removes p if present and appends it otherwise. Applying it
// twice with the same product restores the original wishlist.
func ToggleWishlist(wishlist []Product, p Product) []Product {
	out := make([]Product, 0, len(wishlist)+1)
	found := false
	for _, w := range wishlist {
		if w.ID == p.ID {
			found = true
			continue
		}
		out = append(out, w)
	}
	if !found {
		out = append(out, p)
	}
	return out
}

// IsInWishlist reports whether product id is in the wishlist.
func IsInWishlist(wishlist []Product, id int64) bool {
	for _, p := range wishlist {
		if p.ID == id {
			return true
		}
	}
	return false
}
