package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/minh-nguyen1624/phone-commerce-api/controllers/cart"
	userControllers "github.com/minh-nguyen1624/phone-commerce-api/controllers/user"
	"github.com/minh-nguyen1624/phone-commerce-api/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", userControllers.GetUser(db))    // GET /user/
		userGroup.PUT("/", userControllers.UpdateUser(db)) // PUT /user/

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetUserCart(db))               // GET /user/cart
			cartGroup.POST("/items", cartControllers.AddCartItem(db))         // POST /user/cart/items
			cartGroup.PUT("/items/:phone_id", cartControllers.UpdateCartItem(db))
			cartGroup.DELETE("/items/:phone_id", cartControllers.DeleteCartItem(db))
			cartGroup.DELETE("/", cartControllers.ClearUserCart(db)) // DELETE /user/cart
			cartGroup.POST("/coupon", cartControllers.ApplyCoupon(db))
			cartGroup.DELETE("/coupon", cartControllers.RemoveCoupon(db))
			cartGroup.PUT("/shipping", cartControllers.UpdateShipping(db))
		}
	}
}
