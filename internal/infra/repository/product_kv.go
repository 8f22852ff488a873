package repository

import (
	"context"
	"sort"
	"strings"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"
)

type productKVRepository struct {
	t *txState
}

// 条件に合う商品を返す。Sortが空なら登録順。
func (r *productKVRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Q))

	out := make([]model.Product, 0, len(r.t.state.Products))
	for _, p := range r.t.state.Products {
		if q.Status != nil && p.Status != *q.Status {
			continue
		}
		if q.FarmerID != "" && p.FarmerID != q.FarmerID {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if needle != "" && !matchesText(p, needle) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case "price_asc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case "price_desc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case "newest":
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	case "rating":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating.GreaterThan(out[j].Rating) })
	}

	return out, nil
}

// 名前・説明・農家名の部分一致（大文字小文字は無視）
func matchesText(p model.Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.FarmerName), needle)
}

func (r *productKVRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	i := r.index(id)
	if i < 0 {
		return model.Product{}, repo.ErrNotFound
	}
	return r.t.state.Products[i], nil
}

func (r *productKVRepository) Create(ctx context.Context, p model.Product) error {
	if r.index(p.ID) >= 0 {
		return repo.ErrDuplicate
	}
	if err := r.t.write(repo.KeyProducts); err != nil {
		return err
	}
	r.t.state.Products = append(r.t.state.Products, p)
	return nil
}

func (r *productKVRepository) Update(ctx context.Context, p model.Product) error {
	i := r.index(p.ID)
	if i < 0 {
		return repo.ErrNotFound
	}
	if err := r.t.write(repo.KeyProducts); err != nil {
		return err
	}
	r.t.state.Products[i] = p
	return nil
}

func (r *productKVRepository) Delete(ctx context.Context, id string) error {
	i := r.index(id)
	if i < 0 {
		return repo.ErrNotFound
	}
	if err := r.t.write(repo.KeyProducts); err != nil {
		return err
	}
	products := r.t.state.Products
	r.t.state.Products = append(products[:i:i], products[i+1:]...)
	return nil
}

func (r *productKVRepository) index(id string) int {
	for i, p := range r.t.state.Products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
