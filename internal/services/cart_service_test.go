package services_test

import (
	"context"
	"testing"

	"chemstore/internal/repositories"
	"chemstore/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem_RepeatAddsIncrementAndKeepFirstPrice(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewGORMStore(newTestDB(t))
	service := services.NewCartService(store)
	user := createUser(t, store, "buyer@example.com", "user")
	product := createProduct(t, store, "Sodium Chloride", "7647-14-5", 850)
	slug := services.Slug(product.Name, product.CASNumber)

	require.NoError(t, service.AddItem(ctx, user.ID, slug))

	product.Price = 990
	require.NoError(t, store.Products().Update(ctx, product))
	require.NoError(t, service.AddItem(ctx, user.ID, slug))
	require.NoError(t, service.AddItem(ctx, user.ID, slug))

	lines, err := service.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, int64(850), lines[0].Price)
	assert.Equal(t, int64(990), lines[0].Product.Price)

	cart, err := store.Carts().GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	items, err := store.Carts().ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartService_AddItem_OutOfStock(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewGORMStore(newTestDB(t))
	service := services.NewCartService(store)
	user := createUser(t, store, "buyer@example.com", "user")

	unavailable := createProduct(t, store, "Acetone", "67-64-1", 300)
	unavailable.InStock = false
	require.NoError(t, store.Products().Update(ctx, unavailable))

	empty := createProduct(t, store, "Ethanol", "64-17-5", 200)
	empty.StockLevel = 0
	require.NoError(t, store.Products().Update(ctx, empty))

	for _, p := range []string{
		services.Slug(unavailable.Name, unavailable.CASNumber),
		services.Slug(empty.Name, empty.CASNumber),
	} {
		err := service.AddItem(ctx, user.ID, p)
		assert.Equal(t, services.KindInvalidState, services.KindOf(err), p)
	}

	lines, err := service.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartService_AddItem_Errors(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewGORMStore(newTestDB(t))
	service := services.NewCartService(store)
	user := createUser(t, store, "buyer@example.com", "user")

	err := service.AddItem(ctx, "", "sodium-chloride-7647-14-5")
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))

	err = service.AddItem(ctx, "not-a-uuid", "sodium-chloride-7647-14-5")
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))

	err = service.AddItem(ctx, user.ID, "sodium-chloride")
	assert.Equal(t, services.KindInvalidInput, services.KindOf(err))

	err = service.AddItem(ctx, user.ID, "sodium-chloride-7647-14-5")
	assert.Equal(t, services.KindNotFound, services.KindOf(err))
}

func TestCartService_GetCart_NoCart(t *testing.T) {
	store := repositories.NewGORMStore(newTestDB(t))
	service := services.NewCartService(store)

	lines, err := service.GetCart(context.Background(), uuid.New().String())
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestCartService_GetCart_SkipsDeletedProducts(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewGORMStore(newTestDB(t))
	service := services.NewCartService(store)
	user := createUser(t, store, "buyer@example.com", "user")
	kept := createProduct(t, store, "Sodium Chloride", "7647-14-5", 850)
	gone := createProduct(t, store, "Acetone", "67-64-1", 540)

	require.NoError(t, service.AddItem(ctx, user.ID, services.Slug(kept.Name, kept.CASNumber)))
	require.NoError(t, service.AddItem(ctx, user.ID, services.Slug(gone.Name, gone.CASNumber)))
	require.NoError(t, store.Products().Delete(ctx, gone.ID))

	lines, err := service.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, kept.ID, lines[0].Product.ID)
}

func TestCartService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewGORMStore(newTestDB(t))
	service := services.NewCartService(store)
	user := createUser(t, store, "buyer@example.com", "user")
	a := createProduct(t, store, "Sodium Chloride", "7647-14-5", 850)
	b := createProduct(t, store, "Acetone", "67-64-1", 540)
	slugA := services.Slug(a.Name, a.CASNumber)
	slugB := services.Slug(b.Name, b.CASNumber)

	// No cart yet.
	err := service.RemoveItem(ctx, user.ID, slugA)
	assert.Equal(t, services.KindNotFound, services.KindOf(err))

	require.NoError(t, service.AddItem(ctx, user.ID, slugA))
	require.NoError(t, service.AddItem(ctx, user.ID, slugA))

	// Product exists but is not in the cart.
	err = service.RemoveItem(ctx, user.ID, slugB)
	assert.Equal(t, services.KindNotFound, services.KindOf(err))

	err = service.RemoveItem(ctx, user.ID, "acetone")
	assert.Equal(t, services.KindInvalidInput, services.KindOf(err))

	require.NoError(t, service.RemoveItem(ctx, user.ID, slugA))
	lines, err := service.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// The cart is kept and reused.
	require.NoError(t, service.AddItem(ctx, user.ID, slugB))
	lines, err = service.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}
