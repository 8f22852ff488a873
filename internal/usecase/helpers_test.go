package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"farmmarket/internal/domain/model"
	"farmmarket/internal/infra/kv"
	infraRepo "farmmarket/internal/infra/repository"
	repo "farmmarket/internal/repository"
	"farmmarket/internal/usecase"
	"farmmarket/internal/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// SetBatchを失敗させられるストア
type flakyStore struct {
	*kv.MemoryStore
	mu   sync.Mutex
	fail bool
}

func (s *flakyStore) SetBatch(ctx context.Context, values map[string][]byte) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.SetBatch(ctx, values)
}

func (s *flakyStore) FailWrites(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = v
}

type testEnv struct {
	ctx   context.Context
	store *flakyStore
	tx    *infraRepo.TxManagerKV
	clock *testClock
	ids   *seqIDs

	catalog     *usecase.CatalogUsecase
	cart        *usecase.CartUsecase
	wishlist    *usecase.WishlistUsecase
	orders      *usecase.OrderUsecase
	fulfillment *usecase.FulfillmentUsecase
	audit       *usecase.AuditLogUsecase
	stats       *usecase.StatsUsecase

	admin model.Actor
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	return newEnvWithPolicy(t, usecase.CatalogPolicy{Categories: model.DefaultCategories})
}

func newEnvWithPolicy(t *testing.T, policy usecase.CatalogPolicy) *testEnv {
	t.Helper()

	ctx := context.Background()
	store := &flakyStore{MemoryStore: kv.NewMemoryStore()}
	txm, err := infraRepo.NewTxManagerKV(ctx, store, nil)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	ids := &seqIDs{}

	e := &testEnv{
		ctx:         ctx,
		store:       store,
		tx:          txm,
		clock:       clock,
		ids:         ids,
		catalog:     usecase.NewCatalogUsecase(txm, validator.NewProductValidator(policy.Categories), ids, clock, policy, nil),
		cart:        usecase.NewCartUsecase(txm, clock, nil),
		wishlist:    usecase.NewWishlistUsecase(txm, clock, nil),
		orders:      usecase.NewOrderUsecase(txm, clock, nil),
		fulfillment: usecase.NewFulfillmentUsecase(txm, clock, nil),
		audit:       usecase.NewAuditLogUsecase(txm, nil),
		stats:       usecase.NewStatsUsecase(txm, nil),
	}
	e.admin = e.user(t, model.RoleAdmin, "Admin")
	return e
}

// ユーザーを直接登録してActorを返す
func (e *testEnv) user(t *testing.T, role model.Role, name string) model.Actor {
	t.Helper()

	u := model.User{
		ID:         e.ids.NewID(),
		Name:       name,
		Email:      strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Role:       role,
		Avatar:     model.AvatarURL(name),
		Location:   "Nagano",
		JoinedDate: e.clock.Now(),
	}
	err := e.tx.WithinTx(e.ctx, func(r repo.TxRepos) error {
		return r.Users().Create(e.ctx, u)
	})
	require.NoError(t, err)

	return model.Actor{UserID: u.ID, SessionID: "s-" + u.ID, Name: u.Name, Email: u.Email, Role: role, Location: u.Location}
}

func productInput(name, price string, stock int64) usecase.ProductInput {
	return usecase.ProductInput{
		Name:     name,
		Category: model.CategoryOrganicGoods,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}
}

// 出品して承認まで済ませる
func (e *testEnv) approvedProduct(t *testing.T, farmer model.Actor, name, price string, stock int64) model.Product {
	t.Helper()

	p, err := e.catalog.CreateProduct(e.ctx, farmer, productInput(name, price, stock))
	require.NoError(t, err)
	p, err = e.catalog.SetApproval(e.ctx, e.admin, p.ID, model.ProductStatusApproved)
	require.NoError(t, err)
	return p
}

func (e *testEnv) product(t *testing.T, id string) model.Product {
	t.Helper()

	var p model.Product
	err := e.tx.View(e.ctx, func(r repo.TxRepos) error {
		var err error
		p, err = r.Products().FindByID(e.ctx, id)
		return err
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) allOrders(t *testing.T) []model.Order {
	t.Helper()

	var out []model.Order
	err := e.tx.View(e.ctx, func(r repo.TxRepos) error {
		var err error
		out, err = r.Orders().List(e.ctx, repo.OrderListFilter{})
		return err
	})
	require.NoError(t, err)
	return out
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()

	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
