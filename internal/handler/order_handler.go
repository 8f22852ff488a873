package handler

import (
	"net/http"
	"strconv"

	"farmmarket/internal/domain/model"
	"farmmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc          *usecase.OrderUsecase
	fulfillment *usecase.FulfillmentUsecase
	stats       *usecase.StatsUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase, fulfillment *usecase.FulfillmentUsecase, stats *usecase.StatsUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, fulfillment: fulfillment, stats: stats}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	orders := e.Group("/orders", g.Auth)
	buyer := g.Roles(model.RoleBuyer)

	orders.POST("", h.create, buyer)
	orders.GET("", h.list, buyer)
	// 詳細は購入者・農家・管理者（見える範囲はusecaseで判定）
	orders.GET("/:id", h.detail)
	orders.POST("/:id/cancel", h.cancel, buyer)

	e.GET("/buyer/stats", h.buyerStats, g.Auth, buyer)
}

func (h *OrderHandler) create(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.OrdersFor(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parseOrderID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetOrder(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := parseOrderID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.fulfillment.CancelOrder(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) buyerStats(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.stats.BuyerStats(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func parseOrderID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
