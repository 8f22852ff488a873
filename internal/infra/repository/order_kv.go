package repository

import (
	"context"
	"sort"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"
)

type orderKVRepository struct {
	t *txState
}

func (r *orderKVRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	i := r.index(orderID)
	if i < 0 {
		return model.Order{}, repo.ErrNotFound
	}
	return copyOrder(r.t.state.Orders[i]), nil
}

// 新しい順（同時刻はID降順）
func (r *orderKVRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	out := make([]model.Order, 0, len(r.t.state.Orders))
	for _, o := range r.t.state.Orders {
		if f.BuyerID != "" && o.BuyerID != f.BuyerID {
			continue
		}
		if f.FarmerID != "" && !o.HasFarmer(f.FarmerID) {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, copyOrder(o))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out, nil
}

// IDを採番して保存
func (r *orderKVRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.t.write(repo.KeyOrders); err != nil {
		return model.Order{}, err
	}
	if err := r.t.write(repo.KeySequences); err != nil {
		return model.Order{}, err
	}

	r.t.state.Seq.Order++
	order.ID = r.t.state.Seq.Order
	order = copyOrder(order)
	r.t.state.Orders = append(r.t.state.Orders, order)
	return copyOrder(order), nil
}

func (r *orderKVRepository) Update(ctx context.Context, order model.Order) error {
	i := r.index(order.ID)
	if i < 0 {
		return repo.ErrNotFound
	}
	if err := r.t.write(repo.KeyOrders); err != nil {
		return err
	}
	r.t.state.Orders[i] = copyOrder(order)
	return nil
}

func (r *orderKVRepository) index(id int64) int {
	for i, o := range r.t.state.Orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}
