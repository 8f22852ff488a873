package auth

import (
	"context"
	"errors"
	"time"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"
	"farmmarket/internal/usecase"

	"go.uber.org/zap"
)

// handlerがJSONにして返す
type LoginOutput struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      model.PublicProfile `json:"user"`
}

// ログイン。ユーザーが無い・パスワード違いはどちらもErrInvalidCredentials。
func (u *SessionUsecase) Login(ctx context.Context, email, password string) (LoginOutput, error) {
	var out LoginOutput
	invalid := usecase.NewHTTPError(usecase.ErrInvalidCredentials, "invalid credentials")

	email = NormalizeEmail(email)
	if err := u.validator.ValidateLogin(email, password); err != nil {
		return out, err
	}

	//emailでユーザー取得
	var user model.User
	err := u.tx.View(ctx, func(r repo.TxRepos) error {
		var err error
		user, err = r.Users().FindByEmail(ctx, email)
		if errors.Is(err, repo.ErrNotFound) {
			return invalid
		}
		return err
	})
	if err := finish(u.log, "login", err); err != nil {
		return out, err
	}

	//パスワード照合
	if ok := u.verifier.Verify(password, user.PasswordHash); !ok {
		u.log.Info("login rejected", zap.String("user_id", user.ID))
		return out, invalid
	}

	//セッション作成（端末ごとに別セッション）
	now := u.clock.Now()
	s := model.Session{
		ID:        u.ids.NewID(),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(u.ttl),
	}
	token, err := u.issuer.Issue(s)
	if err != nil {
		u.log.Error("issue session token failed", zap.Error(err))
		return out, usecase.NewHTTPError(usecase.ErrInternal, "internal error")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Sessions().Create(ctx, s)
	})
	if err := finish(u.log, "create session", err); err != nil {
		return out, err
	}

	u.log.Info("logged in", zap.String("user_id", user.ID), zap.String("session_id", s.ID))

	out.Token = token
	out.ExpiresAt = s.ExpiresAt
	out.User = user.Profile()
	return out, nil
}
