package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/cache"
	cartControllers "github.com/minh-nguyen1624/phone-commerce-api/controllers/cart"
	discountControllers "github.com/minh-nguyen1624/phone-commerce-api/controllers/discount"
	inventoryControllers "github.com/minh-nguyen1624/phone-commerce-api/controllers/inventory"
	phonecontroller "github.com/minh-nguyen1624/phone-commerce-api/controllers/phone"
	userControllers "github.com/minh-nguyen1624/phone-commerce-api/controllers/user"
	"github.com/minh-nguyen1624/phone-commerce-api/middleware"
	"github.com/minh-nguyen1624/phone-commerce-api/ws"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, phoneCache *cache.PhoneCache) {
	// Low-stock websocket feed for back-office dashboards. Registered
	// outside the group: the handshake carries no API key header.
	r.GET("/ws/low-stock", ws.LowStockHandler)

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		// ─────────── User Management ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(db))

		// ─────────── Phone Management ───────────
		phoneAdmin := adminGroup.Group("/phones")
		{
			phoneAdmin.POST("", phonecontroller.CreatePhone(db))
			phoneAdmin.PUT("/:id", phonecontroller.UpdatePhone(db, phoneCache))
			phoneAdmin.GET("", phonecontroller.GetPhones(db))
			phoneAdmin.DELETE("/:id", phonecontroller.DeletePhone(db, phoneCache))
			phoneAdmin.POST("/import-excel", phonecontroller.ImportPhonesFromExcel(db))
			phoneAdmin.GET("/export-excel", phonecontroller.ExportPhonesToExcel(db))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", phonecontroller.CreateCategory(db))
			categoryAdmin.GET("", phonecontroller.GetAllCategories(db))
			categoryAdmin.PUT("/:id", phonecontroller.UpdateCategory(db))
			categoryAdmin.DELETE("/:id", phonecontroller.DeleteCategory(db))
		}

		// ─────────── Discount Management ───────────
		discountAdmin := adminGroup.Group("/discounts")
		{
			discountAdmin.POST("", discountControllers.CreateDiscount(db))
			discountAdmin.GET("", discountControllers.GetDiscounts(db))
			discountAdmin.GET("/:id", discountControllers.GetDiscountByID(db))
			discountAdmin.PUT("/:id", discountControllers.UpdateDiscount(db))
			discountAdmin.DELETE("/:id", discountControllers.DeleteDiscount(db))
			discountAdmin.POST("/:id/apply", discountControllers.ApplyDiscountToPhones(db))
		}

		// ─────────── Inventory Management ───────────
		inventoryAdmin := adminGroup.Group("/inventories")
		{
			inventoryAdmin.POST("", inventoryControllers.CreateInventory(db))
			inventoryAdmin.GET("", inventoryControllers.GetInventories(db))
			inventoryAdmin.GET("/low-stock", inventoryControllers.ListLowStock(db))
			inventoryAdmin.POST("/low-stock/alerts", inventoryControllers.RecordLowStockAlert(db))
			inventoryAdmin.GET("/export-excel", inventoryControllers.ExportInventoryToExcel(db))
			inventoryAdmin.GET("/:location", inventoryControllers.GetInventoryByLocation(db))
			inventoryAdmin.POST("/:location/products", inventoryControllers.AddInventoryProduct(db))
			inventoryAdmin.POST("/:location/restock", inventoryControllers.Restock(db))
			inventoryAdmin.POST("/:location/reserve", inventoryControllers.Reserve(db))
			inventoryAdmin.POST("/:location/release", inventoryControllers.Release(db))
			inventoryAdmin.GET("/:location/history", inventoryControllers.GetHistory(db))
			inventoryAdmin.GET("/sold-quantity", inventoryControllers.GetSoldQuantity(db))
		}

		cartMgmt := adminGroup.Group("/user-cart")
		{
			cartMgmt.GET("/:user_id", cartControllers.GetAdminUserCart(db))
		}
	}
}
