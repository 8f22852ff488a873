package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"

	"go.uber.org/zap"
)

// 注文の発送側（管理者・農家）の操作
type FulfillmentUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	log   *zap.Logger
}

func NewFulfillmentUsecase(tx repo.TransactionManager, clock Clock, log *zap.Logger) *FulfillmentUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &FulfillmentUsecase{tx: tx, clock: clock, log: log.Named("fulfillment")}
}

// ステータスを1段階だけ進める。
// 管理者は全注文、農家は自分の商品を含む注文だけ。
func (u *FulfillmentUsecase) AdvanceStatus(ctx context.Context, actor model.Actor, orderID int64, newStatus model.OrderStatus) (model.Order, error) {
	if !actor.HasRole(model.RoleAdmin, model.RoleFarmer) {
		return model.Order{}, NewHTTPError(ErrForbidden, "admin or farmer only")
	}
	newStatus = model.OrderStatus(strings.TrimSpace(string(newStatus)))
	if !newStatus.Valid() {
		return model.Order{}, NewHTTPError(ErrValidation, "invalid status")
	}

	var out model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.findManaged(ctx, r, actor, orderID)
		if err != nil {
			return err
		}

		next, ok := o.Status.Next()
		if !ok || next != newStatus {
			return NewHTTPError(ErrInvalidTransition, "cannot change "+string(o.Status)+" order to "+string(newStatus))
		}

		before := o.Status
		now := u.clock.Now()
		o.Status = newStatus
		if newStatus == model.OrderStatusDelivered {
			o.DeliveryDate = &now
		}
		if err := r.Orders().Update(ctx, o); err != nil {
			return err
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   strconv.FormatInt(o.ID, 10),
			BeforeJSON:   statusJSON(string(before)),
			AfterJSON:    statusJSON(string(newStatus)),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		out = o
		return nil
	})
	if err := finishTx(u.log, "advance order status", err); err != nil {
		return model.Order{}, err
	}

	u.log.Info("order status changed", zap.Int64("order_id", orderID), zap.String("status", string(out.Status)))
	return out, nil
}

// キャンセル（在庫戻し）。
// 購入者は自分のpending注文だけ、管理者はdelivered以外ならいつでも。
func (u *FulfillmentUsecase) CancelOrder(ctx context.Context, actor model.Actor, orderID int64) (model.Order, error) {
	if !actor.HasRole(model.RoleAdmin, model.RoleBuyer) {
		return model.Order{}, NewHTTPError(ErrForbidden, "admin or buyer only")
	}

	var out model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(ErrNotFound, "order not found")
		}
		if err != nil {
			return err
		}

		if actor.Role == model.RoleBuyer {
			if o.BuyerID != actor.UserID {
				return NewHTTPError(ErrNotFound, "order not found")
			}
			if o.Status != model.OrderStatusPending {
				return NewHTTPError(ErrInvalidTransition, "only pending orders can be cancelled")
			}
		}
		// 終端ガード
		if o.Status.Terminal() {
			return NewHTTPError(ErrInvalidTransition, "cannot cancel "+string(o.Status)+" order")
		}

		now := u.clock.Now()
		for _, l := range o.Lines {
			p, err := r.Products().FindByID(ctx, l.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			p.Stock += l.Quantity
			p.UpdatedAt = now
			if err := r.Products().Update(ctx, p); err != nil {
				return err
			}
		}

		before := o.Status
		o.Status = model.OrderStatusCancelled
		o.CancelledAt = &now
		if err := r.Orders().Update(ctx, o); err != nil {
			return err
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionCancelOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   strconv.FormatInt(o.ID, 10),
			BeforeJSON:   statusJSON(string(before)),
			AfterJSON:    statusJSON(string(o.Status)),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		out = o
		return nil
	})
	if err := finishTx(u.log, "cancel order", err); err != nil {
		return model.Order{}, err
	}

	u.log.Info("order cancelled", zap.Int64("order_id", orderID), zap.String("actor_id", actor.UserID))
	return out, nil
}

// 管理者用の全注文（新しい順）。statusが空なら全件。
func (u *FulfillmentUsecase) OrdersAll(ctx context.Context, actor model.Actor, status model.OrderStatus) ([]model.Order, error) {
	if !actor.HasRole(model.RoleAdmin) {
		return nil, NewHTTPError(ErrForbidden, "admin only")
	}
	if status != "" && !status.Valid() {
		return nil, NewHTTPError(ErrValidation, "invalid status")
	}
	return listOrders(ctx, u.tx, u.log, repo.OrderListFilter{Status: status})
}

// 農家の商品を含む注文
func (u *FulfillmentUsecase) OrdersForFarmer(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	if !actor.HasRole(model.RoleFarmer) {
		return nil, NewHTTPError(ErrForbidden, "farmer only")
	}
	return listOrders(ctx, u.tx, u.log, repo.OrderListFilter{FarmerID: actor.UserID})
}

func (u *FulfillmentUsecase) findManaged(ctx context.Context, r repo.TxRepos, actor model.Actor, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(ErrNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, err
	}
	if actor.Role == model.RoleFarmer && !o.HasFarmer(actor.UserID) {
		return model.Order{}, NewHTTPError(ErrForbidden, "forbidden")
	}
	return o, nil
}
