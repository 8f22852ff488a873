package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Users() UserRepository
	Products() ProductRepository
	Orders() OrderRepository
	Carts() CartRepository
	Wishlists() WishlistRepository
	Sessions() SessionRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したら何も反映しない。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
	//読み取り専用。書き込みはErrReadOnlyになる。
	View(ctx context.Context, fn func(r TxRepos) error) error
}
