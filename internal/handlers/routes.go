package handlers

import (
	"furniture_shop/internal/services"
	"furniture_shop/internal/session"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every endpoint under /api. The router must already
// run session.Middleware.
func RegisterRoutes(router *gin.Engine, shop *ShopHandler, auth *AuthHandler, admin *AdminHandler, authService services.AuthService) {
	api := router.Group("/api")
	{
		api.GET("/nav", shop.Nav)
		api.GET("/categories", shop.ListCategories)
		api.GET("/categories/:slug/products", shop.CategoryProducts)
		api.GET("/products/:id", shop.GetProduct)

		api.GET("/cart", shop.ViewCart)
		api.POST("/cart/add/:product_id", shop.AddToCart)
		api.POST("/cart/remove/:product_id", shop.RemoveFromCart)

		api.GET("/checkout", shop.CheckoutSummary)
		api.POST("/checkout", shop.Checkout)

		api.GET("/orders/:id", shop.GetOrder)
		api.POST("/orders/:id/pay", shop.ConfirmPayment)
		api.GET("/orders/:id/status", shop.OrderStatus)
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", auth.Register)
		authGroup.POST("/login", auth.Login)
		authGroup.POST("/login/resend", auth.ResendOTP)
		authGroup.POST("/logout", auth.Logout)
		authGroup.GET("/profile", session.RequireLogin(), auth.Profile)
	}

	adminGroup := api.Group("/admin", RequireStaff(authService))
	{
		adminGroup.GET("/orders", admin.ListOrders)
		adminGroup.GET("/orders/:id", admin.GetOrder)
		adminGroup.PATCH("/orders/:id", admin.UpdateOrder)
		adminGroup.POST("/orders/actions", admin.ApplyAction)

		adminGroup.POST("/categories", admin.CreateCategory)
		adminGroup.DELETE("/categories/:id", admin.DeleteCategory)
		adminGroup.POST("/products", admin.CreateProduct)
		adminGroup.DELETE("/products/:id", admin.DeleteProduct)
	}
}
