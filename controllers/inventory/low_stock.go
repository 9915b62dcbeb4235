package inventoryControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
	"github.com/minh-nguyen1624/phone-commerce-api/models"
	"github.com/minh-nguyen1624/phone-commerce-api/ws"
)

func thresholdFromQuery(c *gin.Context) int {
	if v := c.Query("threshold"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return ws.Threshold()
}

// ListLowStock is a pure query over every warehouse: entries whose available
// quantity (quantity - reserved) is at or below the threshold. It writes
// nothing; recording an audit entry is RecordLowStockAlert's job.
func ListLowStock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		threshold := thresholdFromQuery(c)

		var inventories []models.Inventory
		if err := db.Preload("Items").Find(&inventories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventories"})
			return
		}

		items := []models.LowStockItem{}
		for i := range inventories {
			items = append(items, inventories[i].LowStockItems(threshold)...)
		}

		c.JSON(http.StatusOK, gin.H{"threshold": threshold, "items": items})
	}
}

// RecordLowStockAlert appends a low_stock_alert history entry to every
// warehouse with at least one item at or below the threshold, and broadcasts
// the alerts. Calling it twice records two audit entries; the write is
// explicit and deliberate, never a side effect of the query above.
func RecordLowStockAlert(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		threshold := thresholdFromQuery(c)

		var locations []string
		if err := db.Model(&models.Inventory{}).
			Pluck("warehouse_location", &locations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventories"})
			return
		}

		all := []models.LowStockItem{}
		for _, location := range locations {
			var low []models.LowStockItem
			_, err := models.MutateInventory(db, location, func(inv *models.Inventory) error {
				low = inv.RecordLowStockAlert(threshold)
				return nil
			})
			if err != nil {
				c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
				return
			}
			all = append(all, low...)
		}

		ws.BroadcastLowStock(all)

		c.JSON(http.StatusOK, gin.H{"threshold": threshold, "alerts": all})
	}
}
