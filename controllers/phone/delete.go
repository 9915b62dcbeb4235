package phonecontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
	"github.com/minh-nguyen1624/phone-commerce-api/cache"
	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

// DeletePhone removes a phone and its entry in the warehouse record. The
// warehouse record itself stays, even when this was its last entry.
func DeletePhone(db *gorm.DB, phoneCache *cache.PhoneCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Phone ID is required"})
			return
		}

		var phone models.Phone
		if err := db.Preload("Categories").First(&phone, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Phone not found"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if phone.WarehouseLocation != "" {
				inv, err := models.InventoryByLocation(tx, phone.WarehouseLocation)
				if err == nil {
					if _, err := inv.RemoveProduct(phone.ID); err == nil {
						if err := tx.Where("inventory_id = ? AND phone_id = ?", inv.ID, phone.ID).
							Delete(&models.InventoryItem{}).Error; err != nil {
							return err
						}
						if err := models.SaveInventory(tx, inv); err != nil {
							return err
						}
					}
				} else if !apperrors.IsNotFound(err) {
					return err
				}
			}

			if err := tx.Model(&phone).Association("Categories").Clear(); err != nil {
				return err
			}
			return tx.Delete(&phone).Error
		})
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		_ = phoneCache.Invalidate(c.Request.Context(), phone.ID)

		c.JSON(http.StatusOK, gin.H{"message": "Phone deleted successfully"})
	}
}
