package repository

import (
	"context"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"
)

type userKVRepository struct {
	t *txState
}

// Create はユーザーを新規作成（email重複はErrDuplicate）
func (r *userKVRepository) Create(ctx context.Context, user model.User) error {
	for _, u := range r.t.state.Users {
		if u.Email == user.Email {
			return repo.ErrDuplicate
		}
		if u.ID == user.ID {
			return repo.ErrDuplicate
		}
	}
	if err := r.t.write(repo.KeyUsers); err != nil {
		return err
	}
	r.t.state.Users = append(r.t.state.Users, user)
	return nil
}

// IDでユーザーを1件取得
func (r *userKVRepository) FindByID(ctx context.Context, userID string) (model.User, error) {
	for _, u := range r.t.state.Users {
		if u.ID == userID {
			return u, nil
		}
	}
	return model.User{}, repo.ErrNotFound
}

// emailでユーザーを1件取得
func (r *userKVRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	for _, u := range r.t.state.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repo.ErrNotFound
}

func (r *userKVRepository) List(ctx context.Context) ([]model.User, error) {
	return append([]model.User{}, r.t.state.Users...), nil
}
