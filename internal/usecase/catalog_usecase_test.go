package usecase_test

import (
	"testing"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"
	"farmmarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_CreateProduct_PendingWithDefaults(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")

	p, err := env.catalog.CreateProduct(env.ctx, farmer, usecase.ProductInput{
		Name:     "  Apple Jam ",
		Category: model.CategoryProcessedFoods,
		Price:    dec("12.50"),
		Stock:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, "Apple Jam", p.Name)
	assert.Equal(t, model.ProductStatusPending, p.Status)
	assert.Equal(t, farmer.UserID, p.FarmerID)
	assert.Equal(t, "Taro Farm", p.FarmerName)
	assert.Equal(t, "kg", p.Unit)
	assert.Equal(t, "Nagano", p.Location)
	assert.True(t, p.Rating.IsZero())
	assert.Zero(t, p.Reviews)
}

func TestCatalog_CreateProduct_FarmerOnly(t *testing.T) {
	env := newEnv(t)
	buyer := env.user(t, model.RoleBuyer, "Hanako")

	_, err := env.catalog.CreateProduct(env.ctx, buyer, productInput("Honey", "10", 1))
	assertKind(t, err, usecase.ErrForbidden)

	_, err = env.catalog.CreateProduct(env.ctx, env.admin, productInput("Honey", "10", 1))
	assertKind(t, err, usecase.ErrForbidden)
}

func TestCatalog_CreateProduct_InvalidInputLeavesRegistryUnchanged(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")

	cases := map[string]usecase.ProductInput{
		"negative price": productInput("Honey", "-5", 1),
		"zero price":     productInput("Honey", "0", 1),
		"empty name":     productInput("  ", "5", 1),
		"negative stock": productInput("Honey", "5", -1),
		"unknown category": {
			Name: "Honey", Category: "Electronics", Price: dec("5"), Stock: 1,
		},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.catalog.CreateProduct(env.ctx, farmer, in)
			assertKind(t, err, usecase.ErrValidation)
		})
	}

	all, err := env.catalog.ListAll(env.ctx, env.admin)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCatalog_SetApproval_UnknownProductIsNotFound(t *testing.T) {
	env := newEnv(t)

	pending, err := env.catalog.ListPending(env.ctx, env.admin)
	require.NoError(t, err)
	require.Empty(t, pending)

	_, err = env.catalog.SetApproval(env.ctx, env.admin, "missing", model.ProductStatusApproved)
	assertKind(t, err, usecase.ErrNotFound)
}

func TestCatalog_SetApproval_OnlyFromPending(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")

	p, err := env.catalog.CreateProduct(env.ctx, farmer, productInput("Rice", "30", 5))
	require.NoError(t, err)

	approved, err := env.catalog.SetApproval(env.ctx, env.admin, p.ID, model.ProductStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusApproved, approved.Status)

	// 同じ判断は成功（何も変わらない）
	again, err := env.catalog.SetApproval(env.ctx, env.admin, p.ID, model.ProductStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusApproved, again.Status)

	_, err = env.catalog.SetApproval(env.ctx, env.admin, p.ID, model.ProductStatusRejected)
	assertKind(t, err, usecase.ErrInvalidTransition)

	_, err = env.catalog.SetApproval(env.ctx, env.admin, p.ID, model.ProductStatusPending)
	assertKind(t, err, usecase.ErrValidation)

	_, err = env.catalog.SetApproval(env.ctx, farmer, p.ID, model.ProductStatusApproved)
	assertKind(t, err, usecase.ErrForbidden)

	pending, err := env.catalog.ListPending(env.ctx, env.admin)
	require.NoError(t, err)
	assert.Empty(t, pending)

	logs, err := env.audit.List(env.ctx, env.admin, repo.AuditLogFilter{ResourceID: p.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionApproveProduct, logs[0].Action)
	assert.JSONEq(t, `{"status":"pending"}`, logs[0].BeforeJSON)
	assert.JSONEq(t, `{"status":"approved"}`, logs[0].AfterJSON)
}

func TestCatalog_RejectedProductIsHiddenFromBuyers(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")

	p, err := env.catalog.CreateProduct(env.ctx, farmer, productInput("Rice", "30", 5))
	require.NoError(t, err)
	_, err = env.catalog.SetApproval(env.ctx, env.admin, p.ID, model.ProductStatusRejected)
	require.NoError(t, err)

	_, err = env.catalog.GetApproved(env.ctx, p.ID)
	assertKind(t, err, usecase.ErrNotFound)

	out, err := env.catalog.Browse(env.ctx, usecase.BrowseInput{})
	require.NoError(t, err)
	assert.Zero(t, out.Total)

	own, err := env.catalog.ListOwn(env.ctx, farmer)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, model.ProductStatusRejected, own[0].Status)
}

func TestCatalog_UpdateProduct_OwnershipAndExistence(t *testing.T) {
	env := newEnv(t)
	owner := env.user(t, model.RoleFarmer, "Owner Farm")
	other := env.user(t, model.RoleFarmer, "Other Farm")
	p := env.approvedProduct(t, owner, "Rice", "30", 5)

	_, err := env.catalog.UpdateProduct(env.ctx, other, p.ID, productInput("Rice", "31", 5))
	assertKind(t, err, usecase.ErrForbidden)

	_, err = env.catalog.UpdateProduct(env.ctx, other, "missing", productInput("Rice", "31", 5))
	assertKind(t, err, usecase.ErrNotFound)

	err = env.catalog.DeleteProduct(env.ctx, other, p.ID)
	assertKind(t, err, usecase.ErrForbidden)

	updated, err := env.catalog.UpdateProduct(env.ctx, owner, p.ID, productInput("Brown Rice", "31", 7))
	require.NoError(t, err)
	assert.Equal(t, "Brown Rice", updated.Name)
	assert.Equal(t, "31", updated.Price.String())
	assert.Equal(t, int64(7), updated.Stock)
	// 既定では承認済みのまま
	assert.Equal(t, model.ProductStatusApproved, updated.Status)

	_, err = env.catalog.UpdateProduct(env.ctx, owner, p.ID, productInput("Brown Rice", "-1", 7))
	assertKind(t, err, usecase.ErrValidation)
	assert.Equal(t, "31", env.product(t, p.ID).Price.String())
}

func TestCatalog_UpdateProduct_RequeueOnEdit(t *testing.T) {
	env := newEnvWithPolicy(t, usecase.CatalogPolicy{RequeueOnEdit: true, Categories: model.DefaultCategories})
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	p := env.approvedProduct(t, farmer, "Rice", "30", 5)

	updated, err := env.catalog.UpdateProduct(env.ctx, farmer, p.ID, productInput("Rice", "35", 5))
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusPending, updated.Status)

	pending, err := env.catalog.ListPending(env.ctx, env.admin)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestCatalog_DeleteProduct(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")
	p := env.approvedProduct(t, farmer, "Rice", "30", 5)

	require.NoError(t, env.catalog.DeleteProduct(env.ctx, farmer, p.ID))

	_, err := env.catalog.GetApproved(env.ctx, p.ID)
	assertKind(t, err, usecase.ErrNotFound)

	err = env.catalog.DeleteProduct(env.ctx, farmer, p.ID)
	assertKind(t, err, usecase.ErrNotFound)
}

func TestCatalog_Browse(t *testing.T) {
	env := newEnv(t)
	farmer := env.user(t, model.RoleFarmer, "Taro Farm")

	env.approvedProduct(t, farmer, "Green Tea", "20", 5)
	env.clock.Advance(1)
	env.approvedProduct(t, farmer, "Apple Jam", "8.5", 5)
	env.clock.Advance(1)
	env.approvedProduct(t, farmer, "Wool Scarf", "45", 5)
	_, err := env.catalog.CreateProduct(env.ctx, farmer, productInput("Pending Honey", "1", 1))
	require.NoError(t, err)

	all, err := env.catalog.Browse(env.ctx, usecase.BrowseInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 1, all.Page)

	byPrice, err := env.catalog.Browse(env.ctx, usecase.BrowseInput{Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, byPrice.Items, 3)
	assert.Equal(t, "Apple Jam", byPrice.Items[0].Name)
	assert.Equal(t, "Wool Scarf", byPrice.Items[2].Name)

	newest, err := env.catalog.Browse(env.ctx, usecase.BrowseInput{Sort: "newest"})
	require.NoError(t, err)
	assert.Equal(t, "Wool Scarf", newest.Items[0].Name)

	found, err := env.catalog.Browse(env.ctx, usecase.BrowseInput{Q: "JAM"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Apple Jam", found.Items[0].Name)

	page2, err := env.catalog.Browse(env.ctx, usecase.BrowseInput{Sort: "price_asc", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page2.Total)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, "Wool Scarf", page2.Items[0].Name)

	beyond, err := env.catalog.Browse(env.ctx, usecase.BrowseInput{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)

	_, err = env.catalog.Browse(env.ctx, usecase.BrowseInput{Sort: "cheapest"})
	assertKind(t, err, usecase.ErrValidation)

	_, err = env.catalog.Browse(env.ctx, usecase.BrowseInput{Category: "Electronics"})
	assertKind(t, err, usecase.ErrValidation)

	organic, err := env.catalog.Browse(env.ctx, usecase.BrowseInput{Category: model.CategoryOrganicGoods})
	require.NoError(t, err)
	assert.Equal(t, 3, organic.Total)
}

func TestCatalog_ListingsAreRoleScoped(t *testing.T) {
	env := newEnv(t)
	buyer := env.user(t, model.RoleBuyer, "Hanako")

	_, err := env.catalog.ListPending(env.ctx, buyer)
	assertKind(t, err, usecase.ErrForbidden)

	_, err = env.catalog.ListAll(env.ctx, buyer)
	assertKind(t, err, usecase.ErrForbidden)

	_, err = env.catalog.ListOwn(env.ctx, buyer)
	assertKind(t, err, usecase.ErrForbidden)

	assert.Equal(t, model.DefaultCategories, env.catalog.Categories())
}
