package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/cache"
	inventoryControllers "github.com/minh-nguyen1624/phone-commerce-api/controllers/inventory"
	phonecontroller "github.com/minh-nguyen1624/phone-commerce-api/controllers/phone"
)

// SetupPublicRoutes registers the unauthenticated catalog endpoints.
func SetupPublicRoutes(r *gin.Engine, db *gorm.DB, phoneCache *cache.PhoneCache) {
	phones := r.Group("/phones")
	{
		phones.GET("", phonecontroller.GetPhones(db))                    // GET /phones
		phones.GET("/:id", phonecontroller.GetPhoneByID(db, phoneCache)) // GET /phones/:id
	}

	// Stock availability check used by product pages before add-to-cart.
	r.GET("/inventories/:location/check-stock", inventoryControllers.CheckStock(db))
}
