package usecase

import (
	"sort"
	"time"

	"farmmarket/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 集計はすべて読み取り専用。登録データのスナップショットから毎回計算する。

type Overview struct {
	TotalUsers       int             `json:"total_users"`
	Farmers          int             `json:"farmers"`
	Buyers           int             `json:"buyers"`
	Products         int             `json:"products"`
	PendingProducts  int             `json:"pending_products"`
	ApprovedProducts int             `json:"approved_products"`
	Orders           int             `json:"orders"`
	Revenue          decimal.Decimal `json:"revenue"`
}

type FarmerStats struct {
	FarmerID         string          `json:"farmer_id"`
	TotalProducts    int             `json:"total_products"`
	ApprovedProducts int             `json:"approved_products"`
	UnitsSold        int64           `json:"units_sold"`
	TotalSales       decimal.Decimal `json:"total_sales"`
}

type BuyerStats struct {
	BuyerID         string          `json:"buyer_id"`
	TotalOrders     int             `json:"total_orders"`
	DeliveredOrders int             `json:"delivered_orders"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
}

type SalesPoint struct {
	Key    string          `json:"key"`
	Orders int             `json:"orders"`
	Total  decimal.Decimal `json:"total"`
}

// 売上はキャンセル以外の注文で数える
func counted(o model.Order) bool {
	return o.Status != model.OrderStatusCancelled
}

func ComputeOverview(users []model.User, products []model.Product, orders []model.Order) Overview {
	ov := Overview{
		TotalUsers: len(users),
		Products:   len(products),
		Orders:     len(orders),
		Revenue:    decimal.Zero,
	}
	for _, u := range users {
		switch u.Role {
		case model.RoleFarmer:
			ov.Farmers++
		case model.RoleBuyer:
			ov.Buyers++
		}
	}
	for _, p := range products {
		switch p.Status {
		case model.ProductStatusPending:
			ov.PendingProducts++
		case model.ProductStatusApproved:
			ov.ApprovedProducts++
		}
	}
	for _, o := range orders {
		if counted(o) {
			ov.Revenue = ov.Revenue.Add(o.Total)
		}
	}
	return ov
}

func ComputeFarmerStats(farmerID string, products []model.Product, orders []model.Order) FarmerStats {
	st := FarmerStats{FarmerID: farmerID, TotalSales: decimal.Zero}
	for _, p := range products {
		if p.FarmerID != farmerID {
			continue
		}
		st.TotalProducts++
		if p.IsApproved() {
			st.ApprovedProducts++
		}
	}
	for _, o := range orders {
		if !counted(o) {
			continue
		}
		for _, l := range o.Lines {
			if l.FarmerID == farmerID {
				st.UnitsSold += l.Quantity
				st.TotalSales = st.TotalSales.Add(l.LineTotal)
			}
		}
	}
	return st
}

func ComputeBuyerStats(buyerID string, orders []model.Order) BuyerStats {
	st := BuyerStats{BuyerID: buyerID, TotalSpent: decimal.Zero}
	for _, o := range orders {
		if o.BuyerID != buyerID {
			continue
		}
		st.TotalOrders++
		if o.Status == model.OrderStatusDelivered {
			st.DeliveredOrders++
		}
		if counted(o) {
			st.TotalSpent = st.TotalSpent.Add(o.Total)
		}
	}
	return st
}

func BucketByDay(t time.Time) string   { return t.UTC().Format("2006-01-02") }
func BucketByMonth(t time.Time) string { return t.UTC().Format("2006-01") }

// 注文日でまとめた売上（キー昇順）。
// farmerIDを指定するとその農家の明細だけを合計する。
func SalesSeries(orders []model.Order, bucket func(time.Time) string, farmerID string) []SalesPoint {
	idx := map[string]int{}
	var out []SalesPoint
	for _, o := range orders {
		if !counted(o) {
			continue
		}

		total := o.Total
		if farmerID != "" {
			if !o.HasFarmer(farmerID) {
				continue
			}
			total = decimal.Zero
			for _, l := range o.Lines {
				if l.FarmerID == farmerID {
					total = total.Add(l.LineTotal)
				}
			}
		}

		key := bucket(o.OrderDate)
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, SalesPoint{Key: key, Total: decimal.Zero})
		}
		out[i].Orders++
		out[i].Total = out[i].Total.Add(total)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
