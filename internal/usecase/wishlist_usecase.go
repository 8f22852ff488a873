package usecase

import (
	"context"
	"errors"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type WishlistUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	log   *zap.Logger
}

func NewWishlistUsecase(tx repo.TransactionManager, clock Clock, log *zap.Logger) *WishlistUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &WishlistUsecase{tx: tx, clock: clock, log: log.Named("wishlist")}
}

// 追加結果。すでに入っていたらAdded=false（エラーではない）
type WishlistAddResult struct {
	ProductID string `json:"product_id"`
	Added     bool   `json:"added"`
}

type WishlistEntry struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	Price      decimal.Decimal `json:"price"`
	Unit       string          `json:"unit"`
	FarmerName string          `json:"farmer_name"`
	Available  bool            `json:"available"`
}

func (u *WishlistUsecase) AddToWishlist(ctx context.Context, actor model.Actor, productID string) (WishlistAddResult, error) {
	if !actor.HasRole(model.RoleBuyer) {
		return WishlistAddResult{}, NewHTTPError(ErrForbidden, "buyer only")
	}

	out := WishlistAddResult{ProductID: productID}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		w, err := r.Wishlists().Get(ctx, actor.UserID)
		if err != nil {
			return err
		}
		// 登録済みなら商品の状態に関係なくadded=false
		if w.Contains(productID) {
			return nil
		}
		if _, err := findAvailableProduct(ctx, r, productID); err != nil {
			return err
		}
		w.ProductIDs = append(w.ProductIDs, productID)
		w.UpdatedAt = u.clock.Now()
		if err := r.Wishlists().Save(ctx, w); err != nil {
			return err
		}
		out.Added = true
		return nil
	})
	if err := finishTx(u.log, "add to wishlist", err); err != nil {
		return WishlistAddResult{}, err
	}
	return out, nil
}

// 無くてもエラーにしない
func (u *WishlistUsecase) RemoveFromWishlist(ctx context.Context, actor model.Actor, productID string) error {
	if !actor.HasRole(model.RoleBuyer) {
		return NewHTTPError(ErrForbidden, "buyer only")
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return removeWishlistItem(ctx, r, actor.UserID, productID, u.clock)
	})
	return finishTx(u.log, "remove from wishlist", err)
}

func (u *WishlistUsecase) GetWishlist(ctx context.Context, actor model.Actor) ([]WishlistEntry, error) {
	if !actor.HasRole(model.RoleBuyer) {
		return nil, NewHTTPError(ErrForbidden, "buyer only")
	}

	var out []WishlistEntry
	err := u.tx.View(ctx, func(r repo.TxRepos) error {
		w, err := r.Wishlists().Get(ctx, actor.UserID)
		if err != nil {
			return err
		}
		out = make([]WishlistEntry, 0, len(w.ProductIDs))
		for _, id := range w.ProductIDs {
			e := WishlistEntry{ProductID: id, Price: decimal.Zero}
			p, err := r.Products().FindByID(ctx, id)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return err
			}
			if err == nil {
				e.Name = p.Name
				e.Image = p.Image
				e.Price = p.Price
				e.Unit = p.Unit
				e.FarmerName = p.FarmerName
				e.Available = p.IsApproved()
			}
			out = append(out, e)
		}
		return nil
	})
	if err := finishTx(u.log, "get wishlist", err); err != nil {
		return nil, err
	}
	return out, nil
}

// ほしい物リストから1個カートへ移す（1トランザクション）
func (u *WishlistUsecase) MoveToCart(ctx context.Context, actor model.Actor, productID string) error {
	if !actor.HasRole(model.RoleBuyer) {
		return NewHTTPError(ErrForbidden, "buyer only")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		w, err := r.Wishlists().Get(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if !w.Contains(productID) {
			return NewHTTPError(ErrNotFound, "wishlist item not found")
		}
		p, err := findAvailableProduct(ctx, r, productID)
		if err != nil {
			return err
		}

		now := u.clock.Now()
		cart, err := r.Carts().Get(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if i, ok := cart.Find(productID); ok {
			total, err := addWithinStock(p, cart.Items[i].Quantity, 1)
			if err != nil {
				return err
			}
			cart.Items[i].Quantity = total
		} else {
			if _, err := addWithinStock(p, 0, 1); err != nil {
				return err
			}
			cart.Items = append(cart.Items, model.CartItem{ProductID: productID, Quantity: 1, AddedAt: now})
		}
		cart.UpdatedAt = now
		if err := r.Carts().Save(ctx, cart); err != nil {
			return err
		}
		return removeWishlistItem(ctx, r, actor.UserID, productID, u.clock)
	})
	return finishTx(u.log, "move wishlist item to cart", err)
}

func removeWishlistItem(ctx context.Context, r repo.TxRepos, buyerID, productID string, clock Clock) error {
	w, err := r.Wishlists().Get(ctx, buyerID)
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(w.ProductIDs))
	for _, id := range w.ProductIDs {
		if id != productID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(w.ProductIDs) {
		return nil
	}
	w.ProductIDs = kept
	w.UpdatedAt = clock.Now()
	return r.Wishlists().Save(ctx, w)
}
