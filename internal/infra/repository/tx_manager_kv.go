package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	repo "farmmarket/internal/repository"

	"go.uber.org/zap"
)

type txReposKV struct {
	users     repo.UserRepository
	products  repo.ProductRepository
	orders    repo.OrderRepository
	carts     repo.CartRepository
	wishlists repo.WishlistRepository
	sessions  repo.SessionRepository
	auditLogs repo.AuditLogRepository
}

func (r *txReposKV) Users() repo.UserRepository         { return r.users }
func (r *txReposKV) Products() repo.ProductRepository   { return r.products }
func (r *txReposKV) Orders() repo.OrderRepository       { return r.orders }
func (r *txReposKV) Carts() repo.CartRepository         { return r.carts }
func (r *txReposKV) Wishlists() repo.WishlistRepository { return r.wishlists }
func (r *txReposKV) Sessions() repo.SessionRepository   { return r.sessions }
func (r *txReposKV) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

func newTxRepos(t *txState) *txReposKV {
	return &txReposKV{
		users:     &userKVRepository{t: t},
		products:  &productKVRepository{t: t},
		orders:    &orderKVRepository{t: t},
		carts:     &cartKVRepository{t: t},
		wishlists: &wishlistKVRepository{t: t},
		sessions:  &sessionKVRepository{t: t},
		auditLogs: &auditLogKVRepository{t: t},
	}
}

// 全レジストリをメモリに持ち、書き込みはKVへコミットする。
// WithinTxはコピーに対して実行し、KVへの保存が成功したときだけ差し替える。
type TxManagerKV struct {
	mu    sync.RWMutex
	kv    repo.KVStore
	state *registryState
	log   *zap.Logger
}

var _ repo.TransactionManager = (*TxManagerKV)(nil)

func NewTxManagerKV(ctx context.Context, kv repo.KVStore, log *zap.Logger) (*TxManagerKV, error) {
	if log == nil {
		log = zap.NewNop()
	}
	state, err := loadRegistryState(ctx, kv)
	if err != nil {
		return nil, err
	}
	log.Info("registries loaded",
		zap.Int("users", len(state.Users)),
		zap.Int("products", len(state.Products)),
		zap.Int("orders", len(state.Orders)),
	)
	return &TxManagerKV{kv: kv, state: state, log: log}, nil
}

func (tm *TxManagerKV) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	work := &txState{state: tm.state.clone(), dirty: map[string]struct{}{}}
	if err := fn(newTxRepos(work)); err != nil {
		return err
	}
	if len(work.dirty) == 0 {
		return nil
	}

	if err := tm.commit(ctx, work); err != nil {
		tm.log.Error("commit failed, rolled back", zap.Error(err))
		return fmt.Errorf("commit: %w", err)
	}
	tm.state = work.state
	return nil
}

func (tm *TxManagerKV) View(ctx context.Context, fn func(r repo.TxRepos) error) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	return fn(newTxRepos(&txState{state: tm.state, readOnly: true}))
}

func (tm *TxManagerKV) commit(ctx context.Context, work *txState) error {
	keys := make([]string, 0, len(work.dirty))
	for k := range work.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make(map[string][]byte, len(keys))
	for _, k := range keys {
		raw, err := work.state.encode(k)
		if err != nil {
			return err
		}
		values[k] = raw
	}

	if bw, ok := tm.kv.(repo.BatchWriter); ok {
		return bw.SetBatch(ctx, values)
	}

	// まとめて書けないストアは1件ずつ。途中で失敗したら書いた分を戻す。
	written := make([]string, 0, len(keys))
	for _, k := range keys {
		if err := tm.kv.Set(ctx, k, values[k]); err != nil {
			tm.restore(ctx, written)
			return err
		}
		written = append(written, k)
	}
	return nil
}

func (tm *TxManagerKV) restore(ctx context.Context, keys []string) {
	for _, k := range keys {
		raw, err := tm.state.encode(k)
		if err == nil {
			err = tm.kv.Set(ctx, k, raw)
		}
		if err != nil {
			tm.log.Error("restore after failed commit", zap.String("key", k), zap.Error(err))
		}
	}
}
