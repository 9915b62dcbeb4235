package phonecontroller

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

// ImportPhonesFromExcel bulk-creates or updates phones from an uploaded
// sheet. Columns: ID (blank for new), Name, Brand, Price, Warehouse,
// InitialStock. Bad rows are skipped and counted, not fatal.
func ImportPhonesFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0
		now := time.Now()

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]

			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			idStr := get(0)
			name := get(1)
			brand := get(2)
			priceStr := get(3)
			warehouse := get(4)
			stockStr := get(5)

			if name == "" || priceStr == "" {
				skippedCount++
				continue
			}
			price, err := decimal.NewFromString(priceStr)
			if err != nil || price.IsNegative() {
				skippedCount++
				continue
			}

			if idStr != "" {
				id, err := strconv.ParseUint(idStr, 10, 64)
				if err != nil {
					skippedCount++
					continue
				}
				var phone models.Phone
				if err := db.First(&phone, id).Error; err != nil {
					skippedCount++
					continue
				}
				phone.Name = name
				phone.Brand = brand
				phone.Price = price

				var discount *models.Discount
				if phone.DiscountID != nil {
					var d models.Discount
					if err := db.First(&d, *phone.DiscountID).Error; err == nil {
						discount = &d
					}
				}
				if err := phone.RecomputePricing(discount, now); err != nil {
					skippedCount++
					continue
				}
				if err := db.Omit("Discount", "Categories").Save(&phone).Error; err != nil {
					skippedCount++
					continue
				}
				updatedCount++
				continue
			}

			if warehouse == "" {
				skippedCount++
				continue
			}
			initialStock := 0
			if stockStr != "" {
				if n, err := strconv.Atoi(stockStr); err == nil && n >= 0 {
					initialStock = n
				}
			}

			phone := models.Phone{
				Name:              name,
				Brand:             brand,
				Price:             price,
				Currency:          "VND",
				WarehouseLocation: warehouse,
			}
			if err := phone.RecomputePricing(nil, now); err != nil {
				skippedCount++
				continue
			}
			err = db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&phone).Error; err != nil {
					return err
				}
				inv, err := models.EnsureInventory(tx, warehouse)
				if err != nil {
					return err
				}
				item, err := inv.AddProduct(phone.ID, initialStock, initialStock, 0)
				if err != nil {
					return err
				}
				phone.SyncInventoryMirror(item)
				return models.SaveInventory(tx, inv)
			})
			if err != nil {
				skippedCount++
				continue
			}
			createdCount++
		}

		c.JSON(http.StatusOK, gin.H{
			"created": createdCount,
			"updated": updatedCount,
			"skipped": skippedCount,
		})
	}
}
