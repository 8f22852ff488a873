package usecase_test

import (
	"math"
	"testing"

	"farmmarket/internal/domain/model"
	"farmmarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddSameProductTwiceMergesLine(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")
	p := env.approvedProduct(t, farmer, "Rice", "100", 50)

	_, err := env.cart.AddToCart(env.ctx, buyer, p.ID, 2)
	require.NoError(t, err)
	view, err := env.cart.AddToCart(env.ctx, buyer, p.ID, 2)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(4), view.Items[0].Quantity)
	assert.Equal(t, "400", view.Total.String())

	total, err := env.cart.CartTotal(env.ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, "400", total.String())
}

func TestCart_AddQuantityRules(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")
	p := env.approvedProduct(t, farmer, "Rice", "100", 50)

	view, err := env.cart.AddToCart(env.ctx, buyer, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Items[0].Quantity)

	_, err = env.cart.AddToCart(env.ctx, buyer, p.ID, -3)
	assertKind(t, err, usecase.ErrValidation)

	_, err = env.cart.AddToCart(env.ctx, buyer, "missing", 1)
	assertKind(t, err, usecase.ErrNotFound)

	pending, err := env.catalog.CreateProduct(env.ctx, farmer, productInput("Honey", "5", 1))
	require.NoError(t, err)
	_, err = env.cart.AddToCart(env.ctx, buyer, pending.ID, 1)
	assertKind(t, err, usecase.ErrNotAvailable)

	_, err = env.cart.AddToCart(env.ctx, farmer, p.ID, 1)
	assertKind(t, err, usecase.ErrForbidden)
}

func TestCart_UpdateQuantity(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")
	p := env.approvedProduct(t, farmer, "Rice", "100", 50)

	_, err := env.cart.AddToCart(env.ctx, buyer, p.ID, 1)
	require.NoError(t, err)

	view, err := env.cart.UpdateQuantity(env.ctx, buyer, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), view.Items[0].Quantity)

	_, err = env.cart.UpdateQuantity(env.ctx, buyer, p.ID, -3)
	assertKind(t, err, usecase.ErrValidation)

	view, err = env.cart.GetCart(env.ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(3), view.Items[0].Quantity)

	_, err = env.cart.UpdateQuantity(env.ctx, buyer, "missing", 1)
	assertKind(t, err, usecase.ErrNotFound)
}

func TestCart_RemoveAndClear(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")
	rice := env.approvedProduct(t, farmer, "Rice", "100", 50)
	tea := env.approvedProduct(t, farmer, "Tea", "20", 50)

	_, err := env.cart.AddToCart(env.ctx, buyer, rice.ID, 1)
	require.NoError(t, err)
	_, err = env.cart.AddToCart(env.ctx, buyer, tea.ID, 1)
	require.NoError(t, err)

	view, err := env.cart.RemoveFromCart(env.ctx, buyer, rice.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, tea.ID, view.Items[0].ProductID)

	// 無い明細の削除はエラーにしない
	_, err = env.cart.RemoveFromCart(env.ctx, buyer, rice.ID)
	require.NoError(t, err)

	require.NoError(t, env.cart.ClearCart(env.ctx, buyer))
	view, err = env.cart.GetCart(env.ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

func TestCart_UsesLivePriceAndFlagsUnavailable(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")
	rice := env.approvedProduct(t, farmer, "Rice", "100", 50)
	tea := env.approvedProduct(t, farmer, "Tea", "20", 50)

	_, err := env.cart.AddToCart(env.ctx, buyer, rice.ID, 2)
	require.NoError(t, err)
	_, err = env.cart.AddToCart(env.ctx, buyer, tea.ID, 1)
	require.NoError(t, err)

	_, err = env.catalog.UpdateProduct(env.ctx, farmer, rice.ID, productInput("Rice", "110", 50))
	require.NoError(t, err)
	require.NoError(t, env.catalog.DeleteProduct(env.ctx, farmer, tea.ID))

	view, err := env.cart.GetCart(env.ctx, buyer)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "220", view.Items[0].LineTotal.String())
	assert.True(t, view.Items[0].Available)
	assert.False(t, view.Items[1].Available)
	assert.True(t, view.HasUnavailable)
	assert.Equal(t, "220", view.Total.String())
}

func TestCart_IsPerBuyer(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	a := env.user(t, model.RoleBuyer, "Buyer A")
	b := env.user(t, model.RoleBuyer, "Buyer B")
	p := env.approvedProduct(t, farmer, "Rice", "100", 50)

	_, err := env.cart.AddToCart(env.ctx, a, p.ID, 1)
	require.NoError(t, err)

	view, err := env.cart.GetCart(env.ctx, b)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCart_QuantityCappedByStock(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	buyer := env.user(t, model.RoleBuyer, "Hanako")
	p := env.approvedProduct(t, farmer, "Rice", "100", 5)

	_, err := env.cart.AddToCart(env.ctx, buyer, p.ID, math.MaxInt64)
	assertKind(t, err, usecase.ErrNotAvailable)

	_, err = env.cart.AddToCart(env.ctx, buyer, p.ID, 4)
	require.NoError(t, err)
	_, err = env.cart.AddToCart(env.ctx, buyer, p.ID, math.MaxInt64)
	assertKind(t, err, usecase.ErrNotAvailable)
	_, err = env.cart.AddToCart(env.ctx, buyer, p.ID, 2)
	assertKind(t, err, usecase.ErrNotAvailable)

	_, err = env.cart.UpdateQuantity(env.ctx, buyer, p.ID, math.MaxInt64)
	assertKind(t, err, usecase.ErrNotAvailable)
	_, err = env.cart.UpdateQuantity(env.ctx, buyer, p.ID, math.MinInt64)
	assertKind(t, err, usecase.ErrValidation)

	view, err := env.cart.UpdateQuantity(env.ctx, buyer, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), view.Items[0].Quantity)

	// 在庫が減っても数量を減らすことはできる
	_, err = env.catalog.UpdateProduct(env.ctx, farmer, p.ID, productInput("Rice", "100", 2))
	require.NoError(t, err)
	view, err = env.cart.UpdateQuantity(env.ctx, buyer, p.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), view.Items[0].Quantity)

	_, err = env.orders.PlaceOrder(env.ctx, buyer)
	assertKind(t, err, usecase.ErrNotAvailable)
	assert.Equal(t, int64(2), env.product(t, p.ID).Stock)
}
