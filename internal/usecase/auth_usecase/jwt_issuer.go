package auth

import (
	"errors"
	"time"

	"farmmarket/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// トークンに入れる値
type SessionClaims struct {
	UserID    string
	SessionID string
	Role      model.Role
	ExpiresAt time.Time
}

type sessionJWTClaims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// HS256でセッションIDを署名する
type JWTSessionIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewJWTSessionIssuer(secret string, now func() time.Time) *JWTSessionIssuer {
	if now == nil {
		now = time.Now
	}
	return &JWTSessionIssuer{secret: []byte(secret), now: now}
}

func (i *JWTSessionIssuer) Issue(s model.Session) (string, error) {
	claims := sessionJWTClaims{
		SessionID: s.ID,
		Role:      string(s.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// 署名・期限・必須項目をチェックする
func (i *JWTSessionIssuer) Parse(token string) (SessionClaims, error) {
	if token == "" {
		return SessionClaims{}, ErrInvalidToken
	}

	var claims sessionJWTClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return SessionClaims{}, ErrInvalidToken
	}

	return SessionClaims{
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
		Role:      model.Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
