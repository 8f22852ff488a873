package usecase

import (
	"context"
	"errors"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"

	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	log   *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, clock Clock, log *zap.Logger) *OrderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{tx: tx, clock: clock, log: log.Named("order")}
}

// カートから注文を作る。
// スナップショット作成・在庫減算・注文作成・カートクリアを1トランザクションで行う。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, actor model.Actor) (model.Order, error) {
	if !actor.HasRole(model.RoleBuyer) {
		return model.Order{}, NewHTTPError(ErrForbidden, "buyer only")
	}

	var out model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().Get(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return NewHTTPError(ErrEmptyCart, "cart empty")
		}

		lines := make([]model.OrderLine, 0, len(cart.Items))
		for _, it := range cart.Items {
			if it.Quantity < 1 {
				return NewHTTPError(ErrValidation, "invalid quantity in cart")
			}
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(ErrNotAvailable, "product no longer available")
			}
			if err != nil {
				return err
			}
			if !p.IsApproved() {
				return NewHTTPError(ErrNotAvailable, p.Name+" is not available")
			}

			//在庫を確定時にチェックして減らす
			if p.Stock < it.Quantity {
				return NewHTTPError(ErrNotAvailable, "insufficient stock for "+p.Name)
			}
			lines = append(lines, model.NewOrderLine(p, it.Quantity))

			p.Stock -= it.Quantity
			p.UpdatedAt = u.clock.Now()
			if err := r.Products().Update(ctx, p); err != nil {
				return err
			}
		}

		created, err := r.Orders().Create(ctx, model.Order{
			BuyerID:   actor.UserID,
			BuyerName: actor.Name,
			Lines:     lines,
			Total:     model.SumLines(lines),
			Status:    model.OrderStatusPending,
			OrderDate: u.clock.Now(),
		})
		if err != nil {
			return err
		}

		//再注文防止
		if err := r.Carts().Clear(ctx, actor.UserID); err != nil {
			return err
		}

		out = created
		return nil
	})
	if err := finishTx(u.log, "place order", err); err != nil {
		return model.Order{}, err
	}

	u.log.Info("order placed",
		zap.Int64("order_id", out.ID),
		zap.String("buyer_id", out.BuyerID),
		zap.String("total", out.Total.String()),
	)
	return out, nil
}

// 自分の注文（新しい順）
func (u *OrderUsecase) OrdersFor(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	if !actor.HasRole(model.RoleBuyer) {
		return nil, NewHTTPError(ErrForbidden, "buyer only")
	}
	return listOrders(ctx, u.tx, u.log, repo.OrderListFilter{BuyerID: actor.UserID})
}

// 注文詳細。
// 購入者は自分の注文だけ、農家は自分の商品を含む注文だけ。他人の注文は存在しない扱い。
func (u *OrderUsecase) GetOrder(ctx context.Context, actor model.Actor, orderID int64) (model.Order, error) {
	var o model.Order
	err := u.tx.View(ctx, func(r repo.TxRepos) error {
		var err error
		o, err = r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(ErrNotFound, "order not found")
		}
		return err
	})
	if err := finishTx(u.log, "get order", err); err != nil {
		return model.Order{}, err
	}

	switch actor.Role {
	case model.RoleAdmin:
		return o, nil
	case model.RoleBuyer:
		if o.BuyerID == actor.UserID {
			return o, nil
		}
	case model.RoleFarmer:
		if o.HasFarmer(actor.UserID) {
			return o, nil
		}
	}
	return model.Order{}, NewHTTPError(ErrNotFound, "order not found")
}

func listOrders(ctx context.Context, tx repo.TransactionManager, log *zap.Logger, f repo.OrderListFilter) ([]model.Order, error) {
	var orders []model.Order
	err := tx.View(ctx, func(r repo.TxRepos) error {
		var err error
		orders, err = r.Orders().List(ctx, f)
		return err
	})
	if err := finishTx(log, "list orders", err); err != nil {
		return nil, err
	}
	return orders, nil
}
