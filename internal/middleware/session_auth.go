package middleware

import (
	"context"
	"net/http"
	"strings"

	"farmmarket/internal/domain/model"
	"farmmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxActorKey = "actor" // model.Actor
	CtxTokenKey = "token" // string
)

// トークンから操作者を解決する（SessionUsecase）
type ActorResolver interface {
	CurrentActor(ctx context.Context, token string) (model.Actor, error)
}

// Bearerトークンのセッションを検証してactorをcontextに入れる。
func SessionAuth(resolver ActorResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := BearerToken(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			actor, err := resolver.CurrentActor(c.Request().Context(), rawToken)
			if err != nil {
				if he, ok := usecase.AsHTTPError(err); ok {
					return c.JSON(he.Status, errorJSON(he.Message))
				}
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxActorKey, actor)
			c.Set(CtxTokenKey, rawToken)

			return next(c)
		}
	}
}

// Authorizationヘッダからtokenを抜く
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return "", false
	}

	//Bearer形式か確認
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return "", false
	}
	return rawToken, true
}

// SessionAuthの後で使う
func ActorFrom(c echo.Context) (model.Actor, bool) {
	actor, ok := c.Get(CtxActorKey).(model.Actor)
	if !ok || actor.UserID == "" {
		return model.Actor{}, false
	}
	return actor, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
