package phonecontroller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

type CreatePhoneInput struct {
	Name              string          `json:"name" binding:"required"`
	Brand             string          `json:"brand"`
	Description       string          `json:"description"`
	ImageURL          string          `json:"image_url"`
	Currency          string          `json:"currency"`
	Price             decimal.Decimal `json:"price"`
	DiscountID        *uint           `json:"discount_id"`
	WarehouseLocation string          `json:"warehouse_location" binding:"required"`
	InitialStock      int             `json:"initial_stock"`
	CategoryIDs       []uint          `json:"category_ids"`
}

// CreatePhone creates a phone, recomputes its pricing and lazily creates the
// warehouse inventory record with the phone's entry, all in one transaction.
func CreatePhone(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreatePhoneInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
			return
		}
		if input.InitialStock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "initial_stock must not be negative"})
			return
		}

		var discount *models.Discount
		if input.DiscountID != nil {
			var d models.Discount
			if err := db.First(&d, *input.DiscountID).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Discount not found"})
				return
			}
			discount = &d
		}

		var categories []models.Category
		if len(input.CategoryIDs) > 0 {
			if err := db.Where("id IN ?", input.CategoryIDs).Find(&categories).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
				return
			}
		}

		currency := input.Currency
		if currency == "" {
			currency = "VND"
		}

		phone := models.Phone{
			Name:              input.Name,
			Brand:             input.Brand,
			Description:       input.Description,
			ImageURL:          input.ImageURL,
			Currency:          currency,
			Price:             input.Price,
			WarehouseLocation: input.WarehouseLocation,
			Categories:        categories,
		}

		// Pricing must be settled before the row is durably written.
		if err := phone.RecomputePricing(discount, time.Now()); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit("Discount").Create(&phone).Error; err != nil {
				return err
			}
			inv, err := models.EnsureInventory(tx, input.WarehouseLocation)
			if err != nil {
				return err
			}
			item, err := inv.AddProduct(phone.ID, input.InitialStock, input.InitialStock, 0)
			if err != nil {
				return err
			}
			phone.SyncInventoryMirror(item)
			return models.SaveInventory(tx, inv)
		})
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, phone)
	}
}
