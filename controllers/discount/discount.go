package discountControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

// -------- Request Structs --------

type CreateDiscountInput struct {
	Code          string          `json:"code" binding:"required"`
	Description   string          `json:"description"`
	DiscountType  string          `json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	StartDate     time.Time       `json:"start_date" binding:"required"`
	EndDate       time.Time       `json:"end_date" binding:"required"`
	IsActive      *bool           `json:"is_active"`
	UsageLimit    int             `json:"usage_limit"`
	PhoneIDs      []uint          `json:"phone_ids"`
	CategoryIDs   []uint          `json:"category_ids"`
}

type UpdateDiscountInput struct {
	Description   *string          `json:"description"`
	DiscountType  *string          `json:"discount_type"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	StartDate     *time.Time       `json:"start_date"`
	EndDate       *time.Time       `json:"end_date"`
	IsActive      *bool            `json:"is_active"`
	UsageLimit    *int             `json:"usage_limit"`
}

type ApplyDiscountInput struct {
	DiscountID uint   `json:"discount_id" binding:"required"`
	PhoneIDs   []uint `json:"phone_ids" binding:"required,min=1"`
}

// ApplyResult is the per-phone outcome of a batch apply.
type ApplyResult struct {
	PhoneID    uint            `json:"phone_id"`
	OK         bool            `json:"ok"`
	Error      string          `json:"error,omitempty"`
	FinalPrice decimal.Decimal `json:"final_price,omitempty"`
}

// -------- Handlers --------

// CreateDiscount validates the definition before writing it: a percentage
// over 100 is rejected here, never clamped.
func CreateDiscount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateDiscountInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		discount := models.Discount{
			Code:          input.Code,
			Description:   input.Description,
			DiscountType:  models.DiscountType(input.DiscountType),
			DiscountValue: input.DiscountValue,
			StartDate:     input.StartDate,
			EndDate:       input.EndDate,
			IsActive:      true,
			UsageLimit:    input.UsageLimit,
		}
		if input.IsActive != nil {
			discount.IsActive = *input.IsActive
		}

		if err := discount.Validate(); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		var existing models.Discount
		if err := db.Where("code = ?", discount.Code).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Discount code already exists"})
			return
		}

		if len(input.PhoneIDs) > 0 {
			if err := db.Where("id IN ?", input.PhoneIDs).Find(&discount.Phones).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch phones"})
				return
			}
		}
		if len(input.CategoryIDs) > 0 {
			if err := db.Where("id IN ?", input.CategoryIDs).Find(&discount.Categories).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
				return
			}
		}

		if err := db.Create(&discount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create discount"})
			return
		}

		c.JSON(http.StatusCreated, discount)
	}
}

func GetDiscounts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var discounts []models.Discount
		if err := db.Order("created_at DESC").Find(&discounts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch discounts"})
			return
		}
		c.JSON(http.StatusOK, discounts)
	}
}

func GetDiscountByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var discount models.Discount
		if err := db.Preload("Phones").Preload("Categories").
			First(&discount, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Discount not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch discount"})
			return
		}
		c.JSON(http.StatusOK, discount)
	}
}

// UpdateDiscount applies partial changes, re-validates the definition and
// rederives pricing for every phone still referencing the discount. Phones
// whose discount became unusable are reset to their base price rather than
// left with a stale final price.
func UpdateDiscount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var discount models.Discount
		if err := db.First(&discount, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Discount not found"})
			return
		}

		var input UpdateDiscountInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if input.Description != nil {
			discount.Description = *input.Description
		}
		if input.DiscountType != nil {
			discount.DiscountType = models.DiscountType(*input.DiscountType)
		}
		if input.DiscountValue != nil {
			discount.DiscountValue = *input.DiscountValue
		}
		if input.StartDate != nil {
			discount.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			discount.EndDate = *input.EndDate
		}
		if input.IsActive != nil {
			discount.IsActive = *input.IsActive
		}
		if input.UsageLimit != nil {
			discount.UsageLimit = *input.UsageLimit
		}

		if err := discount.Validate(); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Save(&discount).Error; err != nil {
				return err
			}
			return repriceReferencingPhones(tx, &discount)
		})
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, discount)
	}
}

// DeleteDiscount soft-deletes: the row keeps its usage history, phones that
// referenced it fall back to their base price.
func DeleteDiscount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var discount models.Discount
		if err := db.First(&discount, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Discount not found"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&discount).Update("is_active", false).Error; err != nil {
				return err
			}
			discount.IsActive = false
			if err := repriceReferencingPhones(tx, &discount); err != nil {
				return err
			}
			return tx.Delete(&discount).Error
		})
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Discount deleted"})
	}
}

// ApplyDiscountToPhones applies one discount to many phones. Each phone is
// recomputed and persisted on its own; one failure never corrupts pricing
// already written for the others (partial-success semantics).
func ApplyDiscountToPhones(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ApplyDiscountInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var discount models.Discount
		if err := db.First(&discount, input.DiscountID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Discount not found"})
			return
		}

		now := time.Now()
		results := make([]ApplyResult, 0, len(input.PhoneIDs))
		for _, phoneID := range input.PhoneIDs {
			result := ApplyResult{PhoneID: phoneID}

			var phone models.Phone
			if err := db.First(&phone, phoneID).Error; err != nil {
				result.Error = "phone not found"
				results = append(results, result)
				continue
			}
			if err := phone.RecomputePricing(&discount, now); err != nil {
				result.Error = err.Error()
				results = append(results, result)
				continue
			}
			if err := db.Omit(clause.Associations).Save(&phone).Error; err != nil {
				result.Error = "failed to save phone"
				results = append(results, result)
				continue
			}
			result.OK = true
			result.FinalPrice = phone.FinalPrice
			results = append(results, result)
		}

		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

// repriceReferencingPhones rederives pricing for every phone carrying the
// discount. Evaluation failures clear the reference so no phone keeps a
// dangling pointer to an unusable discount.
func repriceReferencingPhones(tx *gorm.DB, discount *models.Discount) error {
	var phones []models.Phone
	if err := tx.Where("discount_id = ?", discount.ID).Find(&phones).Error; err != nil {
		return err
	}
	now := time.Now()
	for i := range phones {
		phone := &phones[i]
		if err := phone.RecomputePricing(discount, now); err != nil {
			if rerr := phone.RecomputePricing(nil, now); rerr != nil {
				return rerr
			}
		}
		if err := tx.Omit(clause.Associations).Save(phone).Error; err != nil {
			return err
		}
	}
	return nil
}
