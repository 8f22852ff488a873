package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Next(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, "", false},
		{OrderStatusCancelled, "", false},
		{"unknown", "", false},
	}
	for _, tc := range cases {
		next, ok := tc.from.Next()
		assert.Equal(t, tc.ok, ok, tc.from)
		assert.Equal(t, tc.to, next, tc.from)
	}

	assert.True(t, OrderStatusDelivered.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
	assert.False(t, OrderStatus("lost").Valid())
}

func TestNewOrderLine_SnapshotsPrice(t *testing.T) {
	p := Product{ID: "p1", FarmerID: "f1", Name: "Rice", Price: decimal.RequireFromString("12.50")}

	line := NewOrderLine(p, 3)
	p.Price = decimal.RequireFromString("99")

	assert.Equal(t, "12.5", line.UnitPriceSnapshot.String())
	assert.Equal(t, "37.5", line.LineTotal.String())
	assert.Equal(t, "f1", line.FarmerID)

	other := NewOrderLine(Product{ID: "p2", FarmerID: "f2", Price: decimal.RequireFromString("0.10")}, 3)
	total := SumLines([]OrderLine{line, other})
	assert.True(t, total.Equal(decimal.RequireFromString("37.80")), total.String())

	o := Order{Lines: []OrderLine{line, other}}
	assert.True(t, o.HasFarmer("f2"))
	assert.False(t, o.HasFarmer("f3"))
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now.Add(time.Hour)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Hour)))
}

func TestUserProfile_HidesPassword(t *testing.T) {
	u := User{ID: "u1", Name: "Taro Yamada", Email: "taro@example.com", PasswordHash: "hash", Role: RoleFarmer, Avatar: AvatarURL("Taro Yamada")}

	p := u.Profile()
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=Taro+Yamada", p.Avatar)
	assert.True(t, Actor{Role: RoleFarmer}.HasRole(RoleAdmin, RoleFarmer))
	assert.False(t, Actor{Role: RoleBuyer}.HasRole())
}
