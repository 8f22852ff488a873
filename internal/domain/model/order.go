package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// 通常の流れ（キャンセルは別扱い）
var orderFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// 次に進めるステータス。終端ならfalse。
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, st := range orderFlow {
		if st == s && i+1 < len(orderFlow) {
			return orderFlow[i+1], true
		}
	}
	return "", false
}

// delivered / cancelled は終端
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// 注文明細。価格は注文時点で固定。
type OrderLine struct {
	ProductID         string          `json:"product_id"`
	FarmerID          string          `json:"farmer_id"`
	Name              string          `json:"name"`
	Quantity          int64           `json:"quantity"`
	UnitPriceSnapshot decimal.Decimal `json:"unit_price_snapshot"`
	LineTotal         decimal.Decimal `json:"line_total"`
}

func NewOrderLine(p Product, qty int64) OrderLine {
	return OrderLine{
		ProductID:         p.ID,
		FarmerID:          p.FarmerID,
		Name:              p.Name,
		Quantity:          qty,
		UnitPriceSnapshot: p.Price,
		LineTotal:         p.Price.Mul(decimal.NewFromInt(qty)),
	}
}

type Order struct {
	ID           int64           `json:"id"`
	BuyerID      string          `json:"buyer_id"`
	BuyerName    string          `json:"buyer_name"`
	Lines        []OrderLine     `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	OrderDate    time.Time       `json:"order_date"`
	DeliveryDate *time.Time      `json:"delivery_date"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
}

// 明細合計
func SumLines(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

// 農家の商品が1つでも含まれているか
func (o Order) HasFarmer(farmerID string) bool {
	for _, l := range o.Lines {
		if l.FarmerID == farmerID {
			return true
		}
	}
	return false
}
