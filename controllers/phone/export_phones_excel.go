package phonecontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

func ExportPhonesToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var phones []models.Phone
		if err := db.Preload("Categories").Find(&phones).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch phones"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Phones")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		// Header row
		headers := []string{
			"ID", "Name", "Brand", "Price", "DiscountValue", "DiscountAmount",
			"FinalPrice", "Stock", "Reserved", "Warehouse", "Currency",
			"CreatedAt", "UpdatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		// Data rows
		for _, p := range phones {
			row := sheet.AddRow()

			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.Brand)
			row.AddCell().SetValue(p.Price.String())
			row.AddCell().SetValue(p.DiscountValue.String())
			row.AddCell().SetValue(p.DiscountAmount.String())
			row.AddCell().SetValue(p.FinalPrice.String())
			row.AddCell().SetValue(p.Stock)
			row.AddCell().SetValue(p.Reserved)
			row.AddCell().SetValue(p.WarehouseLocation)
			row.AddCell().SetValue(p.Currency)
			row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		// Set response headers for download
		c.Header("Content-Disposition", "attachment; filename=phones.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
