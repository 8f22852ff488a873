package repository

import (
	"context"

	"farmmarket/internal/domain/model"
)

type OrderListFilter struct {
	BuyerID  string
	FarmerID string
	Status   model.OrderStatus
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//新しい順
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	//IDを採番して返す
	Create(ctx context.Context, order model.Order) (model.Order, error)
	Update(ctx context.Context, order model.Order) error
}
