package auth

import (
	"context"
	"errors"
	"strings"

	"farmmarket/internal/domain/model"
	repo "farmmarket/internal/repository"
	"farmmarket/internal/usecase"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	Phone    string
	Location string
}

// emailは前後空白を落として小文字で扱う
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// 会員登録。email重複はErrDuplicateEmail。
// 自分で選べるのはbuyer/farmerだけ（adminはEnsureAdminで作る）。
func (u *SessionUsecase) Register(ctx context.Context, in RegisterInput) (model.PublicProfile, error) {
	if model.Role(strings.TrimSpace(string(in.Role))) == model.RoleAdmin {
		return model.PublicProfile{}, usecase.NewHTTPError(usecase.ErrValidation, "role must be buyer or farmer")
	}
	return u.register(ctx, in)
}

func (u *SessionUsecase) register(ctx context.Context, in RegisterInput) (model.PublicProfile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	in.Role = model.Role(strings.TrimSpace(string(in.Role)))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Location = strings.TrimSpace(in.Location)

	if err := u.validator.ValidateRegister(in); err != nil {
		return model.PublicProfile{}, err
	}

	// パスワードをハッシュ化（ロックの外で）
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		u.log.Error("hash password failed", zap.Error(err))
		return model.PublicProfile{}, usecase.NewHTTPError(usecase.ErrInternal, "internal error")
	}

	now := u.clock.Now()
	user := model.User{
		ID:           u.ids.NewID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed, // ハッシュを保存（平文は保存しない）
		Role:         in.Role,
		Avatar:       model.AvatarURL(in.Name),
		Phone:        in.Phone,
		Location:     in.Location,
		JoinedDate:   now,
	}

	// 重複チェックと保存は同じTxで行う
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Users().FindByEmail(ctx, user.Email)
		if err == nil {
			return usecase.NewHTTPError(usecase.ErrDuplicateEmail, "email already exists")
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		err = r.Users().Create(ctx, user)
		if errors.Is(err, repo.ErrDuplicate) {
			return usecase.NewHTTPError(usecase.ErrDuplicateEmail, "email already exists")
		}
		return err
	})
	if err := finish(u.log, "register", err); err != nil {
		return model.PublicProfile{}, err
	}

	u.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user.Profile(), nil
}

// 起動時の管理者作成。既にあれば何もしない。
func (u *SessionUsecase) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}
	_, err := u.register(ctx, RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if errors.Is(err, usecase.ErrDuplicateEmail) {
		return nil
	}
	return err
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
