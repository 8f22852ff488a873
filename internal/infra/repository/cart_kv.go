package repository

import (
	"context"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"
)

type cartKVRepository struct {
	t *txState
}

func (r *cartKVRepository) Get(ctx context.Context, buyerID string) (model.Cart, error) {
	c, ok := r.t.state.Carts[buyerID]
	if !ok {
		return model.Cart{BuyerID: buyerID, Items: []model.CartItem{}}, nil
	}
	return copyCart(c), nil
}

func (r *cartKVRepository) Save(ctx context.Context, cart model.Cart) error {
	if err := r.t.write(repo.KeyCarts); err != nil {
		return err
	}
	r.t.state.Carts[cart.BuyerID] = copyCart(cart)
	return nil
}

func (r *cartKVRepository) Clear(ctx context.Context, buyerID string) error {
	if _, ok := r.t.state.Carts[buyerID]; !ok {
		return nil
	}
	if err := r.t.write(repo.KeyCarts); err != nil {
		return err
	}
	delete(r.t.state.Carts, buyerID)
	return nil
}

type wishlistKVRepository struct {
	t *txState
}

func (r *wishlistKVRepository) Get(ctx context.Context, buyerID string) (model.Wishlist, error) {
	w, ok := r.t.state.Wishlists[buyerID]
	if !ok {
		return model.Wishlist{BuyerID: buyerID, ProductIDs: []string{}}, nil
	}
	return copyWishlist(w), nil
}

func (r *wishlistKVRepository) Save(ctx context.Context, w model.Wishlist) error {
	if err := r.t.write(repo.KeyWishlists); err != nil {
		return err
	}
	r.t.state.Wishlists[w.BuyerID] = copyWishlist(w)
	return nil
}
