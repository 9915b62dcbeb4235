package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/cache"
)

// SetupRoutes is the single entry-point that wires up the public, user and
// admin route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, phoneCache *cache.PhoneCache) {
	// Public catalog routes (no middleware)
	SetupPublicRoutes(r, db, phoneCache)

	// User routes (JWT-protected)
	SetupUserRoutes(r, db)

	// Admin routes (API-Key-protected)
	SetupAdminRoutes(r, db, phoneCache)

	// order routes
	SetupOrderRoutes(r, db)
}
