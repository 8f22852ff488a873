package handler

import (
	"net/http"

	"farmmarket/internal/domain/model"
	"farmmarket/internal/middleware"
	"farmmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SuccessResponse は { message: string } の形。
type SuccessResponse struct {
	Message string `json:"message"`
}

// ルートに付けるミドルウェア
type Guards struct {
	Auth  echo.MiddlewareFunc
	Roles func(roles ...model.Role) echo.MiddlewareFunc
}

// 承認・却下の入力
type ApprovalRequest struct {
	Status string `json:"status"`
}

// /admin/products（承認キュー）
type AdminProductHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.CatalogUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	admin := e.Group("/admin/products", g.Auth, g.Roles(model.RoleAdmin))

	admin.GET("", h.listAll)
	admin.GET("/pending", h.listPending)
	admin.PUT("/:id/approval", h.setApproval)
}

func (h *AdminProductHandler) listAll(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items, err := h.uc.ListAll(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AdminProductHandler) listPending(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items, err := h.uc.ListPending(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AdminProductHandler) setApproval(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ApprovalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.SetApproval(c.Request().Context(), actor, c.Param("id"), model.ProductStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func actorFromContext(c echo.Context) (model.Actor, bool) {
	return middleware.ActorFrom(c)
}
