package phonecontroller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
	"github.com/minh-nguyen1624/phone-commerce-api/cache"
	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

type UpdatePhoneInput struct {
	Name              *string          `json:"name"`
	Brand             *string          `json:"brand"`
	Description       *string          `json:"description"`
	ImageURL          *string          `json:"image_url"`
	Currency          *string          `json:"currency"`
	Price             *decimal.Decimal `json:"price"`
	DiscountID        *uint            `json:"discount_id"`
	ClearDiscount     bool             `json:"clear_discount"`
	WarehouseLocation *string          `json:"warehouse_location"`
	CategoryIDs       []uint           `json:"category_ids"`
}

// UpdatePhone applies partial updates. Any change to price or discount
// recomputes the derived pricing before the row is written; moving the phone
// to another warehouse relocates its inventory entry with its counters.
func UpdatePhone(db *gorm.DB, phoneCache *cache.PhoneCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param("id")
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone ID"})
			return
		}

		var phone models.Phone
		if err := db.Preload("Categories").First(&phone, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Phone not found"})
			return
		}

		var input UpdatePhoneInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if input.Name != nil {
			phone.Name = *input.Name
		}
		if input.Brand != nil {
			phone.Brand = *input.Brand
		}
		if input.Description != nil {
			phone.Description = *input.Description
		}
		if input.ImageURL != nil {
			phone.ImageURL = *input.ImageURL
		}
		if input.Currency != nil {
			phone.Currency = *input.Currency
		}
		if input.Price != nil {
			if input.Price.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
				return
			}
			phone.Price = *input.Price
		}

		// Resolve the discount the phone should carry after this update.
		var discount *models.Discount
		switch {
		case input.ClearDiscount:
			discount = nil
		case input.DiscountID != nil:
			var d models.Discount
			if err := db.First(&d, *input.DiscountID).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Discount not found"})
				return
			}
			discount = &d
		case phone.DiscountID != nil:
			var d models.Discount
			if err := db.First(&d, *phone.DiscountID).Error; err == nil {
				discount = &d
			}
		}

		if err := phone.RecomputePricing(discount, time.Now()); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		var categories []models.Category
		if input.CategoryIDs != nil {
			if err := db.Where("id IN ?", input.CategoryIDs).Find(&categories).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
				return
			}
		}

		newLocation := phone.WarehouseLocation
		if input.WarehouseLocation != nil && *input.WarehouseLocation != phone.WarehouseLocation {
			newLocation = *input.WarehouseLocation
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if newLocation != phone.WarehouseLocation {
				if err := relocateInventoryEntry(tx, &phone, newLocation); err != nil {
					return err
				}
				phone.WarehouseLocation = newLocation
			}
			if input.CategoryIDs != nil {
				if err := tx.Model(&phone).Association("Categories").Replace(categories); err != nil {
					return err
				}
				phone.Categories = categories
			}
			// Associations are written explicitly above; a blanket upsert
			// could stomp the discount's concurrently incremented UsedCount.
			return tx.Omit(clause.Associations).Save(&phone).Error
		})
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		_ = phoneCache.Invalidate(c.Request.Context(), phone.ID)

		c.JSON(http.StatusOK, phone)
	}
}

// relocateInventoryEntry moves a phone's counters from its current warehouse
// record to the target one, creating the target lazily.
func relocateInventoryEntry(tx *gorm.DB, phone *models.Phone, newLocation string) error {
	stock, quantity, reserved := phone.Stock, phone.Quantity, phone.Reserved

	if phone.WarehouseLocation != "" {
		oldInv, err := models.EnsureInventory(tx, phone.WarehouseLocation)
		if err != nil {
			return err
		}
		if removed, err := oldInv.RemoveProduct(phone.ID); err == nil {
			stock, quantity, reserved = removed.Stock, removed.Quantity, removed.Reserved
			if err := tx.Where("inventory_id = ? AND phone_id = ?", oldInv.ID, phone.ID).
				Delete(&models.InventoryItem{}).Error; err != nil {
				return err
			}
			if err := models.SaveInventory(tx, oldInv); err != nil {
				return err
			}
		}
	}

	newInv, err := models.EnsureInventory(tx, newLocation)
	if err != nil {
		return err
	}
	item, err := newInv.AddProduct(phone.ID, stock, quantity, reserved)
	if err != nil {
		return err
	}
	phone.SyncInventoryMirror(item)
	return models.SaveInventory(tx, newInv)
}
