package usecase_test

import (
	"testing"

	"farmmarket/internal/domain/model"
	"farmmarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlist_AddIsIdempotent(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")
	p := env.approvedProduct(t, farmer, "Rice", "100", 50)

	res, err := env.wishlist.AddToWishlist(env.ctx, buyer, p.ID)
	require.NoError(t, err)
	assert.True(t, res.Added)

	res, err = env.wishlist.AddToWishlist(env.ctx, buyer, p.ID)
	require.NoError(t, err)
	assert.False(t, res.Added)

	items, err := env.wishlist.GetWishlist(env.ctx, buyer)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rice", items[0].Name)
	assert.Equal(t, "Taro Farm", items[0].FarmerName)
	assert.True(t, items[0].Available)
}

func TestWishlist_AddRequiresApprovedProduct(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")

	_, err := env.wishlist.AddToWishlist(env.ctx, buyer, "missing")
	assertKind(t, err, usecase.ErrNotFound)

	pending, err := env.catalog.CreateProduct(env.ctx, farmer, productInput("Honey", "5", 1))
	require.NoError(t, err)
	_, err = env.wishlist.AddToWishlist(env.ctx, buyer, pending.ID)
	assertKind(t, err, usecase.ErrNotAvailable)

	_, err = env.wishlist.AddToWishlist(env.ctx, farmer, pending.ID)
	assertKind(t, err, usecase.ErrForbidden)
}

func TestWishlist_RemoveAndMoveToCart(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")
	rice := env.approvedProduct(t, farmer, "Rice", "100", 50)
	tea := env.approvedProduct(t, farmer, "Tea", "20", 50)

	_, err := env.wishlist.AddToWishlist(env.ctx, buyer, rice.ID)
	require.NoError(t, err)
	_, err = env.wishlist.AddToWishlist(env.ctx, buyer, tea.ID)
	require.NoError(t, err)

	require.NoError(t, env.wishlist.MoveToCart(env.ctx, buyer, rice.ID))

	cart, err := env.cart.GetCart(env.ctx, buyer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, rice.ID, cart.Items[0].ProductID)
	assert.Equal(t, int64(1), cart.Items[0].Quantity)

	items, err := env.wishlist.GetWishlist(env.ctx, buyer)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, tea.ID, items[0].ProductID)

	err = env.wishlist.MoveToCart(env.ctx, buyer, rice.ID)
	assertKind(t, err, usecase.ErrNotFound)

	require.NoError(t, env.wishlist.RemoveFromWishlist(env.ctx, buyer, tea.ID))
	require.NoError(t, env.wishlist.RemoveFromWishlist(env.ctx, buyer, tea.ID))

	items, err = env.wishlist.GetWishlist(env.ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWishlist_DuplicateAddOfUnavailableProduct(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")
	p := env.approvedProduct(t, farmer, "Rice", "100", 50)

	res, err := env.wishlist.AddToWishlist(env.ctx, buyer, p.ID)
	require.NoError(t, err)
	require.True(t, res.Added)

	require.NoError(t, env.catalog.DeleteProduct(env.ctx, farmer, p.ID))

	// 登録済みなので「追加済み」を返す
	res, err = env.wishlist.AddToWishlist(env.ctx, buyer, p.ID)
	require.NoError(t, err)
	assert.False(t, res.Added)

	items, err := env.wishlist.GetWishlist(env.ctx, buyer)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Available)
}

func TestWishlist_MoveToCartRespectsStock(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")
	p := env.approvedProduct(t, farmer, "Rice", "100", 1)

	_, err := env.cart.AddToCart(env.ctx, buyer, p.ID, 1)
	require.NoError(t, err)
	_, err = env.wishlist.AddToWishlist(env.ctx, buyer, p.ID)
	require.NoError(t, err)

	err = env.wishlist.MoveToCart(env.ctx, buyer, p.ID)
	assertKind(t, err, usecase.ErrNotAvailable)

	// 何も変わらない
	cart, err := env.cart.GetCart(env.ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cart.Items[0].Quantity)
	items, err := env.wishlist.GetWishlist(env.ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
