package inventoryControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

// ExportInventoryToExcel writes a stock report: one row per tracked entry
// with its counters and the sold quantity aggregated from history.
func ExportInventoryToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var inventories []models.Inventory
		if err := db.Preload("Items").Preload("History").
			Order("warehouse_location").Find(&inventories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventories"})
			return
		}

		phoneNames := make(map[uint]string)
		var phones []models.Phone
		if err := db.Select("id", "name").Find(&phones).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch phones"})
			return
		}
		for _, p := range phones {
			phoneNames[p.ID] = p.Name
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Inventory")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"Warehouse", "PhoneID", "PhoneName", "Stock", "Quantity",
			"Reserved", "Available", "Sold", "LastUpdated",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for i := range inventories {
			inv := &inventories[i]
			for j := range inv.Items {
				it := &inv.Items[j]
				row := sheet.AddRow()

				row.AddCell().SetValue(inv.WarehouseLocation)
				row.AddCell().SetValue(it.PhoneID)
				row.AddCell().SetValue(phoneNames[it.PhoneID])
				row.AddCell().SetValue(it.Stock)
				row.AddCell().SetValue(it.Quantity)
				row.AddCell().SetValue(it.Reserved)
				row.AddCell().SetValue(it.Available())
				row.AddCell().SetValue(inv.SoldQuantity(it.PhoneID))
				row.AddCell().SetValue(inv.LastUpdated.Format("2006-01-02 15:04:05"))
			}
		}

		c.Header("Content-Disposition", "attachment; filename=inventory.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
