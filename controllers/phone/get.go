package phonecontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
	"github.com/minh-nguyen1624/phone-commerce-api/cache"
	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

// GetPhoneByID returns a single phone, served from the read cache when warm.
// URL param: /phones/:id
func GetPhoneByID(db *gorm.DB, phoneCache *cache.PhoneCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		idParam := c.Param("id")
		id, err := strconv.ParseUint(idParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone ID"})
			return
		}

		if cached, hit, err := phoneCache.Get(c.Request.Context(), uint(id)); err == nil && hit {
			c.JSON(http.StatusOK, cached)
			return
		}

		phone, err := models.PhoneByID(db, uint(id))
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		// Best effort; a cache failure never fails the read.
		_ = phoneCache.Set(c.Request.Context(), phone)

		c.JSON(http.StatusOK, phone)
	}
}
