package repository

import (
	"context"
	"errors"

	"farmmarket/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrNotFound = errors.New("not found")

// 同じemailがすでにある
var ErrDuplicate = errors.New("duplicate")

type UserRepository interface {
	//新規ユーザー作成（email重複はErrDuplicate）
	Create(ctx context.Context, user model.User) error
	FindByID(ctx context.Context, userID string) (model.User, error)
	//emailは正規化済みで渡す
	FindByEmail(ctx context.Context, email string) (model.User, error)
	//登録順
	List(ctx context.Context) ([]model.User, error)
}
