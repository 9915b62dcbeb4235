package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/minh-nguyen1624/phone-commerce-api/controllers/order"
	"github.com/minh-nguyen1624/phone-commerce-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")
	{
		// Checkout the caller's cart into a new order
		orders.POST("/checkout", middleware.ValidateToken, orderControllers.CheckoutHandler(db))

		// Fetch orders for the calling user
		orders.GET("/mine", middleware.ValidateToken, orderControllers.GetUserOrdersHandler(db))

		// Admin order management
		admin := orders.Group("")
		admin.Use(middleware.ValidateAPIKey)
		{
			admin.GET("/", orderControllers.GetAllOrdersHandler(db))
			admin.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))
			admin.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
			admin.PUT("/:orderID/payment-status", orderControllers.UpdatePaymentStatusHandler(db))
			admin.DELETE("/:orderID", orderControllers.DeleteOrderHandler(db))
		}
	}
}
