package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository"
)

func TestStore_VisitorsAreIsolated(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()

	require.NoError(t, b.Scope("alice").Set(ctx, "cartItems", "[1]"))

	_, err := b.Scope("bob").Get(ctx, "cartItems")
	assert.True(t, repository.IsNotFound(err))

	v, err := b.Scope("alice").Get(ctx, "cartItems")
	require.NoError(t, err)
	assert.Equal(t, "[1]", v)
	assert.Equal(t, 1, b.Keys("alice"))
	assert.Equal(t, 0, b.Keys("bob"))
}

func TestStore_SetOverwritesAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewBackend().Scope("v")

	require.NoError(t, s.Set(ctx, "k", "a"))
	require.NoError(t, s.Set(ctx, "k", "b"))
	v, _ := s.Get(ctx, "k")
	assert.Equal(t, "b", v)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err := s.Get(ctx, "k")
	assert.True(t, repository.IsNotFound(err))
}

func TestBackend_Ping(t *testing.T) {
	assert.NoError(t, NewBackend().Ping(context.Background()))
}
