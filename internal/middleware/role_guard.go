package middleware

import (
	"net/http"

	"farmmarket/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// 役割チェックの約束（SessionUsecase.Authorize）
type Authorizer interface {
	Authorize(actor model.Actor, roles ...model.Role) bool
}

// contextに入っているactorのroleが許可されているかを確認します。
func RequireRoles(authz Authorizer, roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if !authz.Authorize(actor, roles...) {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			return next(c)
		}
	}
}
