package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"farmmarket/internal/usecase"
	auth "farmmarket/internal/usecase/auth_usecase"
)

// パスワード最低文字数
const MinPasswordLength = 8

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() auth.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証（email重複はusecase側のTxでチェック）
func (v *authValidator) ValidateRegister(in auth.RegisterInput) error {
	// 必須チェック
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if utf8.RuneCountInString(in.Name) > 100 {
		return invalid("name is too long")
	}

	// email形式
	if !isEmailLike(in.Email) {
		return invalid("invalid email")
	}

	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return invalid("password must be at least 8 characters")
	}

	if !in.Role.Valid() {
		return invalid("invalid role")
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(email string, password string) error {
	// 必須チェック
	if strings.TrimSpace(email) == "" || password == "" {
		return invalid("email and password are required")
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

func invalid(msg string) error {
	return usecase.NewHTTPError(usecase.ErrValidation, msg)
}
