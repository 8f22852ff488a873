package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"
)

// 注文IDは1001から
const orderIDBase int64 = 1000

type sequences struct {
	Order    int64 `json:"order"`
	AuditLog int64 `json:"audit_log"`
}

// KVに保存している全レジストリをメモリに展開したもの
type registryState struct {
	Users     []model.User
	Products  []model.Product
	Orders    []model.Order
	Carts     map[string]model.Cart
	Wishlists map[string]model.Wishlist
	Sessions  map[string]model.Session
	AuditLogs []model.AuditLog
	Seq       sequences
}

func newRegistryState() *registryState {
	return &registryState{
		Users:     []model.User{},
		Products:  []model.Product{},
		Orders:    []model.Order{},
		Carts:     map[string]model.Cart{},
		Wishlists: map[string]model.Wishlist{},
		Sessions:  map[string]model.Session{},
		AuditLogs: []model.AuditLog{},
		Seq:       sequences{Order: orderIDBase},
	}
}

// キーごとの保存先
func (s *registryState) target(key string) (interface{}, error) {
	switch key {
	case repo.KeyUsers:
		return &s.Users, nil
	case repo.KeyProducts:
		return &s.Products, nil
	case repo.KeyOrders:
		return &s.Orders, nil
	case repo.KeyCarts:
		return &s.Carts, nil
	case repo.KeyWishlists:
		return &s.Wishlists, nil
	case repo.KeySessions:
		return &s.Sessions, nil
	case repo.KeyAuditLogs:
		return &s.AuditLogs, nil
	case repo.KeySequences:
		return &s.Seq, nil
	default:
		return nil, fmt.Errorf("unknown registry key %q", key)
	}
}

// KVから全キーを読み込む。無いキーは空のまま。
func loadRegistryState(ctx context.Context, kv repo.KVStore) (*registryState, error) {
	s := newRegistryState()
	for _, key := range repo.AllKeys {
		raw, err := kv.Get(ctx, key)
		if errors.Is(err, repo.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		dst, err := s.target(key)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
	}

	// nullで保存されていた場合
	if s.Carts == nil {
		s.Carts = map[string]model.Cart{}
	}
	if s.Wishlists == nil {
		s.Wishlists = map[string]model.Wishlist{}
	}
	if s.Sessions == nil {
		s.Sessions = map[string]model.Session{}
	}
	if s.Seq.Order < orderIDBase {
		s.Seq.Order = orderIDBase
	}
	return s, nil
}

func (s *registryState) encode(key string) ([]byte, error) {
	v, err := s.target(key)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// トランザクション用のディープコピー
func (s *registryState) clone() *registryState {
	out := &registryState{
		Users:     append([]model.User(nil), s.Users...),
		Products:  append([]model.Product(nil), s.Products...),
		Orders:    make([]model.Order, len(s.Orders)),
		Carts:     make(map[string]model.Cart, len(s.Carts)),
		Wishlists: make(map[string]model.Wishlist, len(s.Wishlists)),
		Sessions:  make(map[string]model.Session, len(s.Sessions)),
		AuditLogs: append([]model.AuditLog(nil), s.AuditLogs...),
		Seq:       s.Seq,
	}
	for i, o := range s.Orders {
		out.Orders[i] = copyOrder(o)
	}
	for k, c := range s.Carts {
		out.Carts[k] = copyCart(c)
	}
	for k, w := range s.Wishlists {
		out.Wishlists[k] = copyWishlist(w)
	}
	for k, v := range s.Sessions {
		out.Sessions[k] = v
	}
	return out
}

func copyOrder(o model.Order) model.Order {
	o.Lines = append([]model.OrderLine(nil), o.Lines...)
	if o.DeliveryDate != nil {
		t := *o.DeliveryDate
		o.DeliveryDate = &t
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		o.CancelledAt = &t
	}
	return o
}

func copyCart(c model.Cart) model.Cart {
	c.Items = append([]model.CartItem(nil), c.Items...)
	return c
}

func copyWishlist(w model.Wishlist) model.Wishlist {
	w.ProductIDs = append([]string(nil), w.ProductIDs...)
	return w
}

// 1トランザクション分の作業領域
type txState struct {
	state    *registryState
	dirty    map[string]struct{}
	readOnly bool
}

func (t *txState) write(key string) error {
	if t.readOnly {
		return repo.ErrReadOnly
	}
	t.dirty[key] = struct{}{}
	return nil
}
