package repository

import (
	"context"
	"errors"
)

// 永続化先のキー
const (
	KeyUsers     = "users"
	KeyProducts  = "products"
	KeyOrders    = "orders"
	KeyCarts     = "carts"
	KeyWishlists = "wishlists"
	KeySessions  = "sessions"
	KeyAuditLogs = "audit_logs"
	KeySequences = "sequences"
)

// 全キー（起動時の読み込み順）
var AllKeys = []string{
	KeyUsers,
	KeyProducts,
	KeyOrders,
	KeyCarts,
	KeyWishlists,
	KeySessions,
	KeyAuditLogs,
	KeySequences,
}

var ErrKeyNotFound = errors.New("kv: key not found")

// キーバリューストア。値は中身を気にしないバイト列。
// Getでキーが無いときはErrKeyNotFoundを返す。
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// 複数キーをまとめて書けるストア。全部書けるか、何も書かないか。
type BatchWriter interface {
	SetBatch(ctx context.Context, values map[string][]byte) error
}

// View の中で書き込もうとした
var ErrReadOnly = errors.New("read-only transaction")
