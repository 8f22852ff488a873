package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusRejected ProductStatus = "rejected"
)

type Category string

const (
	CategoryProcessedFoods   Category = "Processed Foods"
	CategoryOrganicGoods     Category = "Organic Goods"
	CategoryHandmadeProducts Category = "Handmade Products"
)

// 設定で追加がなければこの3つ
var DefaultCategories = []Category{
	CategoryProcessedFoods,
	CategoryOrganicGoods,
	CategoryHandmadeProducts,
}

type Product struct {
	ID          string          `json:"id"`
	FarmerID    string          `json:"farmer_id"`
	FarmerName  string          `json:"farmer_name"`
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	Stock       int64           `json:"stock"`
	Status      ProductStatus   `json:"status"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Rating      decimal.Decimal `json:"rating"`
	Reviews     int64           `json:"reviews"`
	Location    string          `json:"location"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// 購入者に見せてよいか
func (p Product) IsApproved() bool {
	return p.Status == ProductStatusApproved
}
