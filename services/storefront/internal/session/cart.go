package session

import (
	"context"

	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
)

// VisitorCart binds a visitor id to the manager so that callers living
// outside a request, such as the voice dispatcher, always reach the live
// engine even after it was evicted and reloaded.
type VisitorCart struct {
	m  *Manager
	id string
}

// Cart returns the cart handle of visitorID.
func (m *Manager) Cart(visitorID string) VisitorCart {
	return VisitorCart{m: m, id: visitorID}
}

// AddToCart adds p to the visitor's cart. When the engine cannot be
// restored the add is dropped; Get has already logged the failure.
func (c VisitorCart) AddToCart(ctx context.Context, p domain.Product) {
	e, err := c.m.Get(ctx, c.id)
	if err != nil {
		return
	}
	e.AddToCart(ctx, p)
}

// Products returns the loaded catalog without touching the visitor's
// engine.
func (c VisitorCart) Products() []domain.Product {
	cs := c.m.catalog.State()
	if cs.Catalog == nil {
		return nil
	}
	return cs.Catalog.Products
}
