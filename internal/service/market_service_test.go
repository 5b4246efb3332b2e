package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	store := newFakeMarketStore()
	svc := NewMarketService(store, nil, zerolog.Nop())
	ctx := context.Background()

	t.Run("valid product", func(t *testing.T) {
		product, err := svc.CreateProduct(ctx, ProductInput{Name: "Urea 45kg", PriceInINR: 450})
		require.NoError(t, err)
		assert.NotEmpty(t, product.ID)
	})

	t.Run("zero price rejected", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: "Free bag", PriceInINR: 0})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCartTotals(t *testing.T) {
	store := newFakeMarketStore()
	svc := NewMarketService(store, nil, zerolog.Nop())
	ctx := context.Background()

	urea, err := svc.CreateProduct(ctx, ProductInput{Name: "Urea 45kg", PriceInINR: 450})
	require.NoError(t, err)
	seeds, err := svc.CreateProduct(ctx, ProductInput{Name: "Tomato seeds", PriceInINR: 120})
	require.NoError(t, err)

	_, err = svc.UpsertCartItem(ctx, "user-1", urea.ID, 2)
	require.NoError(t, err)
	_, err = svc.UpsertCartItem(ctx, "user-1", seeds.ID, 3)
	require.NoError(t, err)

	view, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
	assert.Equal(t, int64(2*450+3*120), view.Total)

	t.Run("upsert replaces quantity", func(t *testing.T) {
		_, err := svc.UpsertCartItem(ctx, "user-1", urea.ID, 1)
		require.NoError(t, err)

		view, err := svc.GetCart(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(450+3*120), view.Total)
	})

	t.Run("carts are per user", func(t *testing.T) {
		view, err := svc.GetCart(ctx, "user-2")
		require.NoError(t, err)
		assert.Empty(t, view.Lines)
		assert.Zero(t, view.Total)
	})
}

func TestUpsertCartItemValidation(t *testing.T) {
	svc := NewMarketService(newFakeMarketStore(), nil, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.UpsertCartItem(ctx, "user-1", "", 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpsertCartItem(ctx, "user-1", "prod-1", 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpsertCartItem(ctx, "user-1", "prod-1", 1000)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveCartItem(t *testing.T) {
	store := newFakeMarketStore()
	svc := NewMarketService(store, nil, zerolog.Nop())
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, ProductInput{Name: "Urea 45kg", PriceInINR: 450})
	require.NoError(t, err)
	item, err := svc.UpsertCartItem(ctx, "user-1", product.ID, 1)
	require.NoError(t, err)

	t.Run("cannot remove from someone else's cart", func(t *testing.T) {
		err := svc.RemoveCartItem(ctx, "user-2", item.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("owner removes item", func(t *testing.T) {
		require.NoError(t, svc.RemoveCartItem(ctx, "user-1", item.ID))

		view, err := svc.GetCart(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, view.Lines)
	})

	t.Run("missing item", func(t *testing.T) {
		err := svc.RemoveCartItem(ctx, "user-1", "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
