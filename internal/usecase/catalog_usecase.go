package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 商品の作成・更新の入力
type ProductInput struct {
	Name        string
	Category    model.Category
	Price       decimal.Decimal
	Unit        string
	Stock       int64
	Description string
	Image       string
	Location    string
}

// usecaseがValidatorに依存する約束
type ProductValidator interface {
	ValidateProduct(in ProductInput) error
}

// 承認まわりの方針
type CatalogPolicy struct {
	//承認済み・却下済みの商品を編集したらpendingに戻す
	RequeueOnEdit bool
	Categories    []model.Category
}

type CatalogUsecase struct {
	tx        repo.TransactionManager
	validator ProductValidator
	ids       IDGenerator
	clock     Clock
	policy    CatalogPolicy
	log       *zap.Logger
}

// DI
func NewCatalogUsecase(
	tx repo.TransactionManager,
	validator ProductValidator,
	ids IDGenerator,
	clock Clock,
	policy CatalogPolicy,
	log *zap.Logger,
) *CatalogUsecase {
	if len(policy.Categories) == 0 {
		policy.Categories = model.DefaultCategories
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogUsecase{
		tx:        tx,
		validator: validator,
		ids:       ids,
		clock:     clock,
		policy:    policy,
		log:       log.Named("catalog"),
	}
}

func (u *CatalogUsecase) Categories() []model.Category {
	return append([]model.Category(nil), u.policy.Categories...)
}

// 農家が商品を出品する（pendingで作る）
func (u *CatalogUsecase) CreateProduct(ctx context.Context, actor model.Actor, in ProductInput) (model.Product, error) {
	if !actor.HasRole(model.RoleFarmer) {
		return model.Product{}, NewHTTPError(ErrForbidden, "farmer only")
	}
	in = normalizeProductInput(in)
	if err := u.validator.ValidateProduct(in); err != nil {
		return model.Product{}, err
	}

	now := u.clock.Now()
	p := model.Product{
		ID:          u.ids.NewID(),
		FarmerID:    actor.UserID,
		FarmerName:  actor.Name,
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Unit:        in.Unit,
		Stock:       in.Stock,
		Status:      model.ProductStatusPending,
		Description: in.Description,
		Image:       in.Image,
		Rating:      decimal.Zero,
		Location:    in.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Location == "" {
		p.Location = actor.Location
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Products().Create(ctx, p)
	})
	if err := finishTx(u.log, "create product", err); err != nil {
		return model.Product{}, err
	}

	u.log.Info("product created", zap.String("product_id", p.ID), zap.String("farmer_id", p.FarmerID))
	return p, nil
}

// 自分の商品だけ更新できる。ステータスは方針次第。
func (u *CatalogUsecase) UpdateProduct(ctx context.Context, actor model.Actor, productID string, in ProductInput) (model.Product, error) {
	if !actor.HasRole(model.RoleFarmer) {
		return model.Product{}, NewHTTPError(ErrForbidden, "farmer only")
	}
	in = normalizeProductInput(in)

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := u.findOwned(ctx, r, actor, productID)
		if err != nil {
			return err
		}
		if err := u.validator.ValidateProduct(in); err != nil {
			return err
		}

		p.Name = in.Name
		p.Category = in.Category
		p.Price = in.Price
		p.Unit = in.Unit
		p.Stock = in.Stock
		p.Description = in.Description
		p.Image = in.Image
		if in.Location != "" {
			p.Location = in.Location
		}
		if u.policy.RequeueOnEdit && p.Status != model.ProductStatusPending {
			p.Status = model.ProductStatusPending
		}
		p.UpdatedAt = u.clock.Now()

		if err := r.Products().Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err := finishTx(u.log, "update product", err); err != nil {
		return model.Product{}, err
	}
	return out, nil
}

// 商品削除。過去の注文明細はスナップショットなので残る。
func (u *CatalogUsecase) DeleteProduct(ctx context.Context, actor model.Actor, productID string) error {
	if !actor.HasRole(model.RoleFarmer) {
		return NewHTTPError(ErrForbidden, "farmer only")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := u.findOwned(ctx, r, actor, productID); err != nil {
			return err
		}
		return r.Products().Delete(ctx, productID)
	})
	if err := finishTx(u.log, "delete product", err); err != nil {
		return err
	}

	u.log.Info("product deleted", zap.String("product_id", productID), zap.String("farmer_id", actor.UserID))
	return nil
}

// 管理者の承認・却下。
// pendingからだけ決められる。同じ判断の繰り返しは成功、逆の判断はInvalidTransition。
func (u *CatalogUsecase) SetApproval(ctx context.Context, actor model.Actor, productID string, decision model.ProductStatus) (model.Product, error) {
	if !actor.HasRole(model.RoleAdmin) {
		return model.Product{}, NewHTTPError(ErrForbidden, "admin only")
	}
	if decision != model.ProductStatusApproved && decision != model.ProductStatusRejected {
		return model.Product{}, NewHTTPError(ErrValidation, "decision must be approved or rejected")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(ErrNotFound, "product not found")
		}
		if err != nil {
			return err
		}

		// すでに同じなら何もしない
		if p.Status == decision {
			out = p
			return nil
		}
		if p.Status != model.ProductStatusPending {
			return NewHTTPError(ErrInvalidTransition, "product already "+string(p.Status))
		}

		before := p.Status
		p.Status = decision
		p.UpdatedAt = u.clock.Now()
		if err := r.Products().Update(ctx, p); err != nil {
			return err
		}

		action := model.AuditActionApproveProduct
		if decision == model.ProductStatusRejected {
			action = model.AuditActionRejectProduct
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       action,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   p.ID,
			BeforeJSON:   statusJSON(string(before)),
			AfterJSON:    statusJSON(string(decision)),
			CreatedAt:    p.UpdatedAt,
		}); err != nil {
			return err
		}

		out = p
		return nil
	})
	if err := finishTx(u.log, "set approval", err); err != nil {
		return model.Product{}, err
	}

	u.log.Info("product reviewed", zap.String("product_id", productID), zap.String("status", string(out.Status)))
	return out, nil
}

// 一覧の入力DTO
type BrowseInput struct {
	Q        string
	Category model.Category
	Sort     string
	Page     int
	//0なら全件
	Limit int
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 購入者向け一覧。承認済みだけ。
func (u *CatalogUsecase) Browse(ctx context.Context, in BrowseInput) (ProductListOutput, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(ErrValidation, "invalid page")
	}
	if in.Limit < 0 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(ErrValidation, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(ErrValidation, "q too long")
	}
	switch in.Sort {
	case "", "newest", "price_asc", "price_desc", "rating":
	default:
		return ProductListOutput{}, NewHTTPError(ErrValidation, "invalid sort")
	}
	if in.Category != "" && !u.allowedCategory(in.Category) {
		return ProductListOutput{}, NewHTTPError(ErrValidation, "invalid category")
	}

	approved := model.ProductStatusApproved
	var items []model.Product
	err := u.tx.View(ctx, func(r repo.TxRepos) error {
		var err error
		items, err = r.Products().List(ctx, repo.ProductListQuery{
			Status:   &approved,
			Category: in.Category,
			Q:        strings.TrimSpace(in.Q),
			Sort:     in.Sort,
		})
		return err
	})
	if err := finishTx(u.log, "browse", err); err != nil {
		return ProductListOutput{}, err
	}

	total := len(items)
	if in.Limit > 0 {
		start := (in.Page - 1) * in.Limit
		if start > total {
			start = total
		}
		end := start + in.Limit
		if end > total {
			end = total
		}
		items = items[start:end]
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 商品詳細。承認済み以外は存在しない扱い。
func (u *CatalogUsecase) GetApproved(ctx context.Context, productID string) (model.Product, error) {
	var p model.Product
	err := u.tx.View(ctx, func(r repo.TxRepos) error {
		var err error
		p, err = r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(ErrNotFound, "product not found")
		}
		return err
	})
	if err := finishTx(u.log, "get product", err); err != nil {
		return model.Product{}, err
	}
	if !p.IsApproved() {
		return model.Product{}, NewHTTPError(ErrNotFound, "product not found")
	}
	return p, nil
}

// 農家の自分の商品（全ステータス）
func (u *CatalogUsecase) ListOwn(ctx context.Context, actor model.Actor) ([]model.Product, error) {
	if !actor.HasRole(model.RoleFarmer) {
		return nil, NewHTTPError(ErrForbidden, "farmer only")
	}
	return u.list(ctx, repo.ProductListQuery{FarmerID: actor.UserID})
}

// 承認待ち
func (u *CatalogUsecase) ListPending(ctx context.Context, actor model.Actor) ([]model.Product, error) {
	if !actor.HasRole(model.RoleAdmin) {
		return nil, NewHTTPError(ErrForbidden, "admin only")
	}
	pending := model.ProductStatusPending
	return u.list(ctx, repo.ProductListQuery{Status: &pending})
}

// 管理者用の全商品
func (u *CatalogUsecase) ListAll(ctx context.Context, actor model.Actor) ([]model.Product, error) {
	if !actor.HasRole(model.RoleAdmin) {
		return nil, NewHTTPError(ErrForbidden, "admin only")
	}
	return u.list(ctx, repo.ProductListQuery{})
}

func (u *CatalogUsecase) list(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	var items []model.Product
	err := u.tx.View(ctx, func(r repo.TxRepos) error {
		var err error
		items, err = r.Products().List(ctx, q)
		return err
	})
	if err := finishTx(u.log, "list products", err); err != nil {
		return nil, err
	}
	return items, nil
}

// 存在確認→所有チェックの順
func (u *CatalogUsecase) findOwned(ctx context.Context, r repo.TxRepos, actor model.Actor, productID string) (model.Product, error) {
	p, err := r.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(ErrNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, err
	}
	if p.FarmerID != actor.UserID {
		return model.Product{}, NewHTTPError(ErrForbidden, "forbidden")
	}
	return p, nil
}

func (u *CatalogUsecase) allowedCategory(c model.Category) bool {
	for _, allowed := range u.policy.Categories {
		if allowed == c {
			return true
		}
	}
	return false
}

func normalizeProductInput(in ProductInput) ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = model.Category(strings.TrimSpace(string(in.Category)))
	in.Unit = strings.TrimSpace(in.Unit)
	if in.Unit == "" {
		in.Unit = "kg"
	}
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	in.Location = strings.TrimSpace(in.Location)
	return in
}

func statusJSON(status string) string {
	b, _ := json.Marshal(map[string]string{"status": status})
	return string(b)
}
