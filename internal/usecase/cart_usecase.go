package usecase

import (
	"context"
	"errors"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartUsecase は /cart の業務ロジックです。
// 価格はカートに持たず、表示のたびに商品から読みます。
type CartUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	log   *zap.Logger
}

func NewCartUsecase(tx repo.TransactionManager, clock Clock, log *zap.Logger) *CartUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{tx: tx, clock: clock, log: log.Named("cart")}
}

// CartLine は表示用の明細。商品が消えた・非公開になったらAvailable=false。
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Available bool            `json:"available"`
}

type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
	//購入できない明細があるか
	HasUnavailable bool `json:"has_unavailable"`
}

// カート取得
func (u *CartUsecase) GetCart(ctx context.Context, actor model.Actor) (CartView, error) {
	if !actor.HasRole(model.RoleBuyer) {
		return CartView{}, NewHTTPError(ErrForbidden, "buyer only")
	}

	var out CartView
	err := u.tx.View(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = buildCartView(ctx, r, actor.UserID)
		return err
	})
	if err := finishTx(u.log, "get cart", err); err != nil {
		return CartView{}, err
	}
	return out, nil
}

// 購入できる明細の 数量×現在価格 の合計
func (u *CartUsecase) CartTotal(ctx context.Context, actor model.Actor) (decimal.Decimal, error) {
	view, err := u.GetCart(ctx, actor)
	if err != nil {
		return decimal.Zero, err
	}
	return view.Total, nil
}

// カートに追加（同一商品は数量加算）。qtyが0なら1個。
func (u *CartUsecase) AddToCart(ctx context.Context, actor model.Actor, productID string, qty int64) (CartView, error) {
	if !actor.HasRole(model.RoleBuyer) {
		return CartView{}, NewHTTPError(ErrForbidden, "buyer only")
	}
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return CartView{}, NewHTTPError(ErrValidation, "invalid quantity")
	}

	var out CartView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := findAvailableProduct(ctx, r, productID)
		if err != nil {
			return err
		}

		cart, err := r.Carts().Get(ctx, actor.UserID)
		if err != nil {
			return err
		}
		now := u.clock.Now()
		if i, ok := cart.Find(productID); ok {
			total, err := addWithinStock(p, cart.Items[i].Quantity, qty)
			if err != nil {
				return err
			}
			cart.Items[i].Quantity = total
		} else {
			if _, err := addWithinStock(p, 0, qty); err != nil {
				return err
			}
			cart.Items = append(cart.Items, model.CartItem{ProductID: productID, Quantity: qty, AddedAt: now})
		}
		cart.UpdatedAt = now

		if err := r.Carts().Save(ctx, cart); err != nil {
			return err
		}
		out, err = buildCartView(ctx, r, actor.UserID)
		return err
	})
	if err := finishTx(u.log, "add to cart", err); err != nil {
		return CartView{}, err
	}
	return out, nil
}

// 数量を増減する。1未満になる変更は受け付けない（削除はRemoveFromCart）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, actor model.Actor, productID string, delta int64) (CartView, error) {
	if !actor.HasRole(model.RoleBuyer) {
		return CartView{}, NewHTTPError(ErrForbidden, "buyer only")
	}

	var out CartView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().Get(ctx, actor.UserID)
		if err != nil {
			return err
		}
		i, ok := cart.Find(productID)
		if !ok {
			return NewHTTPError(ErrNotFound, "cart item not found")
		}
		current := cart.Items[i].Quantity
		var newQty int64
		if delta > 0 {
			//増やすときは在庫まで
			p, err := findAvailableProduct(ctx, r, productID)
			if err != nil {
				return err
			}
			if newQty, err = addWithinStock(p, current, delta); err != nil {
				return err
			}
		} else {
			newQty = current + delta
		}
		if newQty < 1 {
			return NewHTTPError(ErrValidation, "quantity must be at least 1")
		}
		if delta != 0 {
			cart.Items[i].Quantity = newQty
			cart.UpdatedAt = u.clock.Now()
			if err := r.Carts().Save(ctx, cart); err != nil {
				return err
			}
		}
		out, err = buildCartView(ctx, r, actor.UserID)
		return err
	})
	if err := finishTx(u.log, "update cart quantity", err); err != nil {
		return CartView{}, err
	}
	return out, nil
}

// 明細削除。無くてもエラーにしない。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, actor model.Actor, productID string) (CartView, error) {
	if !actor.HasRole(model.RoleBuyer) {
		return CartView{}, NewHTTPError(ErrForbidden, "buyer only")
	}

	var out CartView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().Get(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if i, ok := cart.Find(productID); ok {
			cart.Items = append(cart.Items[:i:i], cart.Items[i+1:]...)
			cart.UpdatedAt = u.clock.Now()
			if err := r.Carts().Save(ctx, cart); err != nil {
				return err
			}
		}
		out, err = buildCartView(ctx, r, actor.UserID)
		return err
	})
	if err := finishTx(u.log, "remove from cart", err); err != nil {
		return CartView{}, err
	}
	return out, nil
}

// カートを空にする
func (u *CartUsecase) ClearCart(ctx context.Context, actor model.Actor) error {
	if !actor.HasRole(model.RoleBuyer) {
		return NewHTTPError(ErrForbidden, "buyer only")
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Carts().Clear(ctx, actor.UserID)
	})
	return finishTx(u.log, "clear cart", err)
}

// カート内の合計数量は在庫を超えない
func addWithinStock(p model.Product, current, add int64) (int64, error) {
	if add > p.Stock-current {
		return 0, NewHTTPError(ErrNotAvailable, "insufficient stock for "+p.Name)
	}
	return current + add, nil
}

// 明細を現在の商品情報で組み立てる
func buildCartView(ctx context.Context, r repo.TxRepos, buyerID string) (CartView, error) {
	cart, err := r.Carts().Get(ctx, buyerID)
	if err != nil {
		return CartView{}, err
	}

	view := CartView{Items: make([]CartLine, 0, len(cart.Items)), Total: decimal.Zero}
	for _, it := range cart.Items {
		line := CartLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: decimal.Zero, LineTotal: decimal.Zero}

		p, err := r.Products().FindByID(ctx, it.ProductID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return CartView{}, err
		}
		if err == nil {
			line.Name = p.Name
			line.Image = p.Image
			line.Unit = p.Unit
			line.Price = p.Price
			line.Available = p.IsApproved()
		}

		if line.Available {
			line.LineTotal = line.Price.Mul(decimal.NewFromInt(it.Quantity))
			view.Total = view.Total.Add(line.LineTotal)
		} else {
			view.HasUnavailable = true
		}
		view.Items = append(view.Items, line)
	}
	return view, nil
}

// 存在して承認済みの商品
func findAvailableProduct(ctx context.Context, r repo.TxRepos, productID string) (model.Product, error) {
	p, err := r.Products().FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(ErrNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, err
	}
	if !p.IsApproved() {
		return model.Product{}, NewHTTPError(ErrNotAvailable, "product not available")
	}
	return p, nil
}
