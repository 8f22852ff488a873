package usecase

import (
	"context"
	"time"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type StatsUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewStatsUsecase(tx repo.TransactionManager, log *zap.Logger) *StatsUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsUsecase{tx: tx, log: log.Named("stats")}
}

// 管理画面のユーザー一覧。件数はその場で計算する。
// 農家はtotal_products/total_sales（売上金額）、購入者はtotal_ordersだけを出す。
type UserSummary struct {
	model.PublicProfile
	TotalProducts *int             `json:"total_products,omitempty"`
	TotalSales    *decimal.Decimal `json:"total_sales,omitempty"`
	TotalOrders   *int             `json:"total_orders,omitempty"`
}

type snapshot struct {
	users    []model.User
	products []model.Product
	orders   []model.Order
}

func (u *StatsUsecase) load(ctx context.Context) (snapshot, error) {
	var s snapshot
	err := u.tx.View(ctx, func(r repo.TxRepos) error {
		var err error
		if s.users, err = r.Users().List(ctx); err != nil {
			return err
		}
		if s.products, err = r.Products().List(ctx, repo.ProductListQuery{}); err != nil {
			return err
		}
		s.orders, err = r.Orders().List(ctx, repo.OrderListFilter{})
		return err
	})
	if err := finishTx(u.log, "load stats snapshot", err); err != nil {
		return snapshot{}, err
	}
	return s, nil
}

func bucketFor(period string) (func(time.Time) string, error) {
	switch period {
	case "", "month":
		return BucketByMonth, nil
	case "day":
		return BucketByDay, nil
	default:
		return nil, NewHTTPError(ErrValidation, "invalid period")
	}
}

func (u *StatsUsecase) AdminOverview(ctx context.Context, actor model.Actor) (Overview, error) {
	if !actor.HasRole(model.RoleAdmin) {
		return Overview{}, NewHTTPError(ErrForbidden, "admin only")
	}
	s, err := u.load(ctx)
	if err != nil {
		return Overview{}, err
	}
	return ComputeOverview(s.users, s.products, s.orders), nil
}

func (u *StatsUsecase) AdminSales(ctx context.Context, actor model.Actor, period string) ([]SalesPoint, error) {
	if !actor.HasRole(model.RoleAdmin) {
		return nil, NewHTTPError(ErrForbidden, "admin only")
	}
	bucket, err := bucketFor(period)
	if err != nil {
		return nil, err
	}
	s, err := u.load(ctx)
	if err != nil {
		return nil, err
	}
	return SalesSeries(s.orders, bucket, ""), nil
}

// roleが空なら全員（登録順）
func (u *StatsUsecase) AdminUsers(ctx context.Context, actor model.Actor, role model.Role) ([]UserSummary, error) {
	if !actor.HasRole(model.RoleAdmin) {
		return nil, NewHTTPError(ErrForbidden, "admin only")
	}
	if role != "" && !role.Valid() {
		return nil, NewHTTPError(ErrValidation, "invalid role")
	}
	s, err := u.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(s.users))
	for _, usr := range s.users {
		if role != "" && usr.Role != role {
			continue
		}
		sum := UserSummary{PublicProfile: usr.Profile()}
		switch usr.Role {
		case model.RoleFarmer:
			fs := ComputeFarmerStats(usr.ID, s.products, s.orders)
			sum.TotalProducts = &fs.TotalProducts
			sum.TotalSales = &fs.TotalSales
		case model.RoleBuyer:
			bs := ComputeBuyerStats(usr.ID, s.orders)
			sum.TotalOrders = &bs.TotalOrders
		}
		out = append(out, sum)
	}
	return out, nil
}

func (u *StatsUsecase) FarmerStats(ctx context.Context, actor model.Actor) (FarmerStats, error) {
	if !actor.HasRole(model.RoleFarmer) {
		return FarmerStats{}, NewHTTPError(ErrForbidden, "farmer only")
	}
	s, err := u.load(ctx)
	if err != nil {
		return FarmerStats{}, err
	}
	return ComputeFarmerStats(actor.UserID, s.products, s.orders), nil
}

func (u *StatsUsecase) FarmerSales(ctx context.Context, actor model.Actor, period string) ([]SalesPoint, error) {
	if !actor.HasRole(model.RoleFarmer) {
		return nil, NewHTTPError(ErrForbidden, "farmer only")
	}
	bucket, err := bucketFor(period)
	if err != nil {
		return nil, err
	}
	s, err := u.load(ctx)
	if err != nil {
		return nil, err
	}
	return SalesSeries(s.orders, bucket, actor.UserID), nil
}

func (u *StatsUsecase) BuyerStats(ctx context.Context, actor model.Actor) (BuyerStats, error) {
	if !actor.HasRole(model.RoleBuyer) {
		return BuyerStats{}, NewHTTPError(ErrForbidden, "buyer only")
	}
	s, err := u.load(ctx)
	if err != nil {
		return BuyerStats{}, err
	}
	return ComputeBuyerStats(actor.UserID, s.orders), nil
}
