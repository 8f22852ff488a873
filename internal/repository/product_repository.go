package repository

import (
	"context"

	"farmmarket/internal/domain/model"
)

// 一覧検索。空の項目は絞り込まない。
type ProductListQuery struct {
	Status   *model.ProductStatus
	FarmerID string
	Category model.Category
	Q        string
	Sort     string
}

// 商品の保存・取得だけを約束。
type ProductRepository interface {
	//登録順で返す（Sort指定がなければ）
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)

	Create(ctx context.Context, p model.Product) error
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id string) error
}
