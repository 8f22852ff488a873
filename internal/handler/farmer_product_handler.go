package handler

import (
	"net/http"

	"farmmarket/internal/domain/model"
	"farmmarket/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 出品・更新の入力。priceは文字列でも数値でも受け付ける。
type ProductRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	Stock       int64           `json:"stock"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Location    string          `json:"location"`
}

func (r ProductRequest) input() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        r.Name,
		Category:    model.Category(r.Category),
		Price:       r.Price,
		Unit:        r.Unit,
		Stock:       r.Stock,
		Description: r.Description,
		Image:       r.Image,
		Location:    r.Location,
	}
}

// /farmer/products（自分の出品）
type FarmerProductHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewFarmerProductHandler(uc *usecase.CatalogUsecase) *FarmerProductHandler {
	return &FarmerProductHandler{uc: uc}
}

func (h *FarmerProductHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	farmer := e.Group("/farmer/products", g.Auth, g.Roles(model.RoleFarmer))

	farmer.GET("", h.listOwn)
	farmer.POST("", h.create)
	farmer.PUT("/:id", h.update)
	farmer.DELETE("/:id", h.delete)
}

func (h *FarmerProductHandler) listOwn(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items, err := h.uc.ListOwn(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *FarmerProductHandler) create(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), actor, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *FarmerProductHandler) update(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.UpdateProduct(c.Request().Context(), actor, c.Param("id"), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *FarmerProductHandler) delete(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
