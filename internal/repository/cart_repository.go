package repository

import (
	"context"

	"farmmarket/internal/domain/model"
)

type CartRepository interface {
	//無ければ空のカートを返す
	Get(ctx context.Context, buyerID string) (model.Cart, error)
	Save(ctx context.Context, cart model.Cart) error
	Clear(ctx context.Context, buyerID string) error
}

type WishlistRepository interface {
	//無ければ空を返す
	Get(ctx context.Context, buyerID string) (model.Wishlist, error)
	Save(ctx context.Context, w model.Wishlist) error
}
