package server

import (
	"farmmarket/internal/domain/model"
	"farmmarket/internal/handler"
	"farmmarket/internal/middleware"
	auth "farmmarket/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	FarmerProduct *handler.FarmerProductHandler
	AdminProduct  *handler.AdminProductHandler
	Cart          *handler.CartHandler
	Wishlist      *handler.WishlistHandler
	Order         *handler.OrderHandler
	FarmerOrder   *handler.FarmerOrderHandler
	AdminOrder    *handler.AdminOrderHandler
	AdminUser     *handler.AdminUserHandler
}

// セッション検証とロールチェック
func NewGuards(sessions *auth.SessionUsecase) handler.Guards {
	return handler.Guards{
		Auth: middleware.SessionAuth(sessions),
		Roles: func(roles ...model.Role) echo.MiddlewareFunc {
			return middleware.RequireRoles(sessions, roles...)
		},
	}
}

func RegisterRoutes(e *echo.Echo, h Handlers, g handler.Guards) {
	h.Auth.RegisterRoutes(e, g)
	h.Product.RegisterRoutes(e)
	h.FarmerProduct.RegisterRoutes(e, g)
	h.FarmerOrder.RegisterRoutes(e, g)
	h.Cart.RegisterRoutes(e, g)
	h.Wishlist.RegisterRoutes(e, g)
	h.Order.RegisterRoutes(e, g)
	h.AdminProduct.RegisterRoutes(e, g)
	h.AdminOrder.RegisterRoutes(e, g)
	h.AdminUser.RegisterRoutes(e, g)
}
