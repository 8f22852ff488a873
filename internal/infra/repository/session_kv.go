package repository

import (
	"context"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"
)

type sessionKVRepository struct {
	t *txState
}

func (r *sessionKVRepository) Create(ctx context.Context, s model.Session) error {
	if _, ok := r.t.state.Sessions[s.ID]; ok {
		return repo.ErrDuplicate
	}
	if err := r.t.write(repo.KeySessions); err != nil {
		return err
	}
	r.t.state.Sessions[s.ID] = s
	return nil
}

func (r *sessionKVRepository) FindByID(ctx context.Context, sessionID string) (model.Session, error) {
	s, ok := r.t.state.Sessions[sessionID]
	if !ok {
		return model.Session{}, repo.ErrNotFound
	}
	return s, nil
}

// 無ければ何もしない
func (r *sessionKVRepository) Delete(ctx context.Context, sessionID string) error {
	if _, ok := r.t.state.Sessions[sessionID]; !ok {
		return nil
	}
	if err := r.t.write(repo.KeySessions); err != nil {
		return err
	}
	delete(r.t.state.Sessions, sessionID)
	return nil
}
