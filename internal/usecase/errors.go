package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

var (
	//400 入力が不正
	ErrValidation = errors.New("validation error")
	//404 対象が無い
	ErrNotFound = errors.New("not found")
	//403 権限が無い、他人のもの
	ErrForbidden = errors.New("forbidden")
	//401 emailかパスワードが違う
	ErrInvalidCredentials = errors.New("invalid credentials")
	//401 ログインしていない、セッション切れ
	ErrUnauthenticated = errors.New("unauthenticated")
	//409 email登録済み
	ErrDuplicateEmail = errors.New("duplicate email")
	//409 状態遷移できない
	ErrInvalidTransition = errors.New("invalid transition")
	//409 非公開・削除済み・在庫不足
	ErrNotAvailable = errors.New("not available")
	//400 カートが空
	ErrEmptyCart = errors.New("empty cart")
	//500
	ErrInternal = errors.New("internal error")
)

// 種類ごとのHTTPステータス
var kindStatus = map[error]int{
	ErrValidation:         http.StatusBadRequest,
	ErrNotFound:           http.StatusNotFound,
	ErrForbidden:          http.StatusForbidden,
	ErrInvalidCredentials: http.StatusUnauthorized,
	ErrUnauthenticated:    http.StatusUnauthorized,
	ErrDuplicateEmail:     http.StatusConflict,
	ErrInvalidTransition:  http.StatusConflict,
	ErrNotAvailable:       http.StatusConflict,
	ErrEmptyCart:          http.StatusBadRequest,
	ErrInternal:           http.StatusInternalServerError,
}

// HTTPError はusecaseが返すエラー。errors.Is(err, ErrXxx)で種類を判定できる。
type HTTPError struct {
	Status  int
	Message string
	Kind    error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Kind }

func NewHTTPError(kind error, message string) error {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if message == "" {
		message = kind.Error()
	}
	return &HTTPError{
		Status:  status,
		Message: message,
		Kind:    kind,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// Txから返ったエラーを整える。HTTPError以外は保存失敗などなので500にする。
func finishTx(log *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	log.Error(op+" failed", zap.Error(err))
	return NewHTTPError(ErrInternal, "internal error")
}
