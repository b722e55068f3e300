package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/peeyushtyagi09/newShopingAI/pkg/errors"
)

// Fixed keys of the two persisted collections.
const (
	KeyCartItems = "cartItems"
	KeyWishlist  = "wishlist"
)

// KeyValueStore is one visitor's string-to-string namespace.
type KeyValueStore interface {
	// Get returns the stored value, or an error wrapping
	// apperrors.ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend hands out per-visitor namespaces over shared storage.
type Backend interface {
	// Scope returns the namespace owned by visitorID.
	Scope(visitorID string) KeyValueStore

	// Ping reports whether the underlying storage is reachable.
	Ping(ctx context.Context) error
}

// ReadJSON decodes the value under key into a T. A missing key or
// malformed JSON yield def; any other read failure is returned so that an
// unreachable store is never mistaken for an empty one.
func ReadJSON[T any](ctx context.Context, store KeyValueStore, key string, def T) (T, error) {
	raw, err := store.Get(ctx, key)
	if IsNotFound(err) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("read %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def, nil
	}
	return v, nil
}

// WriteJSON stores the compact JSON encoding of v under key.
func WriteJSON(ctx context.Context, store KeyValueStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// IsNotFound reports whether err means the key is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
