package phonecontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

// GetPhones lists phones with optional brand/category filters and
// limit/offset pagination.
func GetPhones(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		query := db.Preload("Categories").Limit(limit).Offset(offset).Order("id")

		if brand := c.Query("brand"); brand != "" {
			query = query.Where("brand = ?", brand)
		}
		if catID := c.Query("category_id"); catID != "" {
			id, err := strconv.ParseUint(catID, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
				return
			}
			query = query.Joins("JOIN phone_categories pc ON pc.phone_id = phones.id").
				Where("pc.category_id = ?", id)
		}

		var phones []models.Phone
		if err := query.Find(&phones).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch phones"})
			return
		}

		c.JSON(http.StatusOK, phones)
	}
}
