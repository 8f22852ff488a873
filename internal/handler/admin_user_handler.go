package handler

import (
	"net/http"

	"farmmarket/internal/domain/model"
	"farmmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/users と管理者向け集計
type AdminUserHandler struct {
	stats *usecase.StatsUsecase
}

func NewAdminUserHandler(stats *usecase.StatsUsecase) *AdminUserHandler {
	return &AdminUserHandler{stats: stats}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	// ★ /admin 配下は全部「セッション必須 + admin限定」
	admin := e.Group("/admin", g.Auth, g.Roles(model.RoleAdmin))

	admin.GET("/users", h.users)
	admin.GET("/stats", h.overview)
	admin.GET("/sales", h.sales)
}

// ?role=farmer|buyer|admin
func (h *AdminUserHandler) users(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.stats.AdminUsers(c.Request().Context(), actor, model.Role(c.QueryParam("role")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) overview(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.stats.AdminOverview(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) sales(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.stats.AdminSales(c.Request().Context(), actor, c.QueryParam("period"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
