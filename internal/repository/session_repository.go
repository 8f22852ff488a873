package repository

import (
	"context"

	"farmmarket/internal/domain/model"
)

// セッションの保存・取得・削除
type SessionRepository interface {
	Create(ctx context.Context, s model.Session) error
	FindByID(ctx context.Context, sessionID string) (model.Session, error)
	//無くてもエラーにしない
	Delete(ctx context.Context, sessionID string) error
}
