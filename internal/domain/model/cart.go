package model

import "time"

// 購入者ごとに1つ
type Cart struct {
	BuyerID   string     `json:"buyer_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// 価格や名前は持たない（表示・注文時に商品から読む）
type CartItem struct {
	ProductID string    `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

func (c Cart) Find(productID string) (int, bool) {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
