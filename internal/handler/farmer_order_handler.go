package handler

import (
	"net/http"

	"farmmarket/internal/domain/model"
	"farmmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /farmer/orders と農家の集計
type FarmerOrderHandler struct {
	uc    *usecase.FulfillmentUsecase
	stats *usecase.StatsUsecase
}

func NewFarmerOrderHandler(uc *usecase.FulfillmentUsecase, stats *usecase.StatsUsecase) *FarmerOrderHandler {
	return &FarmerOrderHandler{uc: uc, stats: stats}
}

func (h *FarmerOrderHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	farmer := e.Group("/farmer", g.Auth, g.Roles(model.RoleFarmer))

	farmer.GET("/orders", h.list)
	farmer.PUT("/orders/:id/status", h.updateStatus)
	farmer.GET("/stats", h.farmerStats)
	farmer.GET("/sales", h.sales)
}

func (h *FarmerOrderHandler) list(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.OrdersForFarmer(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FarmerOrderHandler) updateStatus(c echo.Context) error {
	return advanceStatus(c, h.uc)
}

func (h *FarmerOrderHandler) farmerStats(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.stats.FarmerStats(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ?period=day|month（default month）
func (h *FarmerOrderHandler) sales(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.stats.FarmerSales(c.Request().Context(), actor, c.QueryParam("period"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
