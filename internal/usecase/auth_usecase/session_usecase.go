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

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// セッションのハンドル（トークン）を発行・検証する約束
type SessionTokenIssuer interface {
	Issue(s model.Session) (string, error)
	Parse(token string) (SessionClaims, error)
}

// 入力チェックの約束。エラーはValidationErrorで返す。
type AuthValidator interface {
	ValidateRegister(in RegisterInput) error
	ValidateLogin(email, password string) error
}

// SessionUsecase は登録・ログイン・ログアウト・現在の操作者を扱う。
type SessionUsecase struct {
	tx        repo.TransactionManager
	validator AuthValidator
	hasher    PasswordHasher
	verifier  PasswordVerifier
	issuer    SessionTokenIssuer
	ids       usecase.IDGenerator
	clock     usecase.Clock
	ttl       time.Duration
	log       *zap.Logger
}

// DI
func NewSessionUsecase(
	tx repo.TransactionManager,
	validator AuthValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer SessionTokenIssuer,
	ids usecase.IDGenerator,
	clock usecase.Clock,
	ttl time.Duration,
	log *zap.Logger,
) *SessionUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionUsecase{
		tx:        tx,
		validator: validator,
		hasher:    hasher,
		verifier:  verifier,
		issuer:    issuer,
		ids:       ids,
		clock:     clock,
		ttl:       ttl,
		log:       log.Named("session"),
	}
}

// ログアウト。不正・期限切れ・二重ログアウトでもエラーにしない。
func (u *SessionUsecase) Logout(ctx context.Context, token string) error {
	claims, err := u.issuer.Parse(token)
	if err != nil {
		return nil
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Sessions().Delete(ctx, claims.SessionID)
	})
	if err := finish(u.log, "logout", err); err != nil {
		return err
	}
	u.log.Info("logged out", zap.String("user_id", claims.UserID), zap.String("session_id", claims.SessionID))
	return nil
}

// トークンから操作者を取り出す。ログアウト済み・期限切れはErrUnauthenticated。
func (u *SessionUsecase) CurrentActor(ctx context.Context, token string) (model.Actor, error) {
	unauth := usecase.NewHTTPError(usecase.ErrUnauthenticated, "unauthorized")

	claims, err := u.issuer.Parse(token)
	if err != nil {
		return model.Actor{}, unauth
	}

	var actor model.Actor
	err = u.tx.View(ctx, func(r repo.TxRepos) error {
		s, err := r.Sessions().FindByID(ctx, claims.SessionID)
		if errors.Is(err, repo.ErrNotFound) {
			return unauth
		}
		if err != nil {
			return err
		}
		if s.UserID != claims.UserID || s.Expired(u.clock.Now()) {
			return unauth
		}

		user, err := r.Users().FindByID(ctx, s.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			return unauth
		}
		if err != nil {
			return err
		}

		actor = model.Actor{
			UserID:    user.ID,
			SessionID: s.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			Location:  user.Location,
		}
		return nil
	})
	if err := finish(u.log, "current actor", err); err != nil {
		return model.Actor{}, err
	}
	return actor, nil
}

// ルーティング側のロールチェック
func (u *SessionUsecase) Authorize(actor model.Actor, roles ...model.Role) bool {
	if actor.UserID == "" {
		return false
	}
	return actor.HasRole(roles...)
}

// 自分のプロフィール
func (u *SessionUsecase) Me(ctx context.Context, actor model.Actor) (model.PublicProfile, error) {
	var user model.User
	err := u.tx.View(ctx, func(r repo.TxRepos) error {
		var err error
		user, err = r.Users().FindByID(ctx, actor.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			return usecase.NewHTTPError(usecase.ErrUnauthenticated, "unauthorized")
		}
		return err
	})
	if err := finish(u.log, "me", err); err != nil {
		return model.PublicProfile{}, err
	}
	return user.Profile(), nil
}

func finish(log *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := usecase.AsHTTPError(err); ok {
		return err
	}
	log.Error(op+" failed", zap.Error(err))
	return usecase.NewHTTPError(usecase.ErrInternal, "internal error")
}
