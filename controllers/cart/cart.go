package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

// -------- Request Structs --------

type AddItemInput struct {
	PhoneID  uint                 `json:"phone_id" binding:"required"`
	Quantity int                  `json:"quantity" binding:"required,min=1"`
	Attrs    models.CartItemAttrs `json:"attrs"`
}

type UpdateItemInput struct {
	Quantity int                  `json:"quantity"`
	Attrs    models.CartItemAttrs `json:"attrs"`
}

type ApplyCouponInput struct {
	Code string `json:"code" binding:"required"`
}

type ShippingInput struct {
	DeliveryOption  *string         `json:"delivery_option"`
	ShippingAddress *models.Address `json:"shipping_address"`
}

// -------- Helpers --------

func currentUserID(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

// loadOrCreateCart enforces one cart per user, creating it on first use.
func loadOrCreateCart(db *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("Items").Preload("Discount").
		Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID, DeliveryOption: models.DeliveryOptionStandard}
		if err := db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// saveCart persists the cart and its items. Associations are written
// explicitly: a blanket upsert would also write the attached Discount row.
func saveCart(db *gorm.DB, cart *models.Cart, removedItemIDs []uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(cart).Error; err != nil {
			return err
		}
		for i := range cart.Items {
			item := &cart.Items[i]
			item.CartID = cart.CartID
			if item.ID == 0 {
				if err := tx.Create(item).Error; err != nil {
					return err
				}
			} else if err := tx.Save(item).Error; err != nil {
				return err
			}
		}
		for _, id := range removedItemIDs {
			if id == 0 {
				continue
			}
			if err := tx.Delete(&models.CartItem{}, id).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// recomputeAndSave is the single write path: every cart mutation rederives
// totals from current phone pricing before it is persisted.
func recomputeAndSave(db *gorm.DB, cart *models.Cart, removedItemIDs []uint) error {
	if err := cart.Recompute(models.LookupPhones(db), time.Now()); err != nil {
		return err
	}
	return saveCart(db, cart, removedItemIDs)
}

func phoneIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("phone_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone_id"})
		return 0, false
	}
	return uint(id), true
}

// -------- Handlers --------

// GET /user/cart
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		cart, err := loadOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		// Reads return a freshly derived view without persisting it.
		if err := cart.Recompute(models.LookupPhones(db), time.Now()); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /user/cart/items
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		phone, err := models.PhoneByID(db, input.PhoneID)
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		cart, err := loadOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		// Reject quantities the warehouse cannot satisfy right now.
		if phone.WarehouseLocation != "" {
			inv, err := models.InventoryByLocation(db, phone.WarehouseLocation)
			if err == nil {
				requested := input.Quantity
				for _, item := range cart.Items {
					if item.PhoneID == phone.ID {
						requested += item.Quantity
					}
				}
				if err := inv.CheckStock(phone.ID, requested); err != nil {
					c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
					return
				}
			}
		}

		if err := cart.AddOrMergeItem(phone, input.Quantity, input.Attrs); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		if err := recomputeAndSave(db, cart, nil); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, cart)
	}
}

// PUT /user/cart/items/:phone_id
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		phoneID, ok := phoneIDParam(c)
		if !ok {
			return
		}
		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := loadOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		removedID, err := cart.UpdateItem(phoneID, input.Quantity, input.Attrs)
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		if err := recomputeAndSave(db, cart, []uint{removedID}); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /user/cart/items/:phone_id
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		phoneID, ok := phoneIDParam(c)
		if !ok {
			return
		}

		cart, err := loadOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		removedID, err := cart.RemoveItem(phoneID)
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		if err := recomputeAndSave(db, cart, []uint{removedID}); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /user/cart
func ClearUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		cart, err := loadOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		removed := make([]uint, 0, len(cart.Items))
		for _, item := range cart.Items {
			removed = append(removed, item.ID)
		}
		cart.Clear()

		if err := saveCart(db, cart, removed); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// POST /user/cart/coupon
func ApplyCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var input ApplyCouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var discount models.Discount
		if err := db.Preload("Phones").Preload("Categories").
			Where("code = ?", input.Code).First(&discount).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}
		if !discount.IsCurrentlyActive(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon is expired or inactive"})
			return
		}

		cart, err := loadOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if len(cart.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		if len(discount.Phones) > 0 || len(discount.Categories) > 0 {
			applies := false
			for _, item := range cart.Items {
				phone, err := models.PhoneByID(db, item.PhoneID)
				if err != nil {
					continue
				}
				if discount.AppliesTo(phone) {
					applies = true
					break
				}
			}
			if !applies {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon does not apply to any cart item"})
				return
			}
		}

		cart.DiscountID = &discount.ID
		cart.Discount = &discount

		if err := recomputeAndSave(db, cart, nil); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /user/cart/coupon
func RemoveCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		cart, err := loadOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		cart.Discount = nil
		cart.DiscountID = nil

		if err := recomputeAndSave(db, cart, nil); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// PUT /user/cart/shipping
func UpdateShipping(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var input ShippingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := loadOrCreateCart(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		if input.DeliveryOption != nil {
			switch *input.DeliveryOption {
			case models.DeliveryOptionStandard, models.DeliveryOptionExpress:
				cart.DeliveryOption = *input.DeliveryOption
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery_option"})
				return
			}
		}
		if input.ShippingAddress != nil {
			cart.ShippingAddress = *input.ShippingAddress
		}

		if err := recomputeAndSave(db, cart, nil); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// GET /admin/user-cart/:user_id
func GetAdminUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		var cart models.Cart
		if err := db.Preload("Items").Preload("Discount").
			Where("user_id = ?", userID).First(&cart).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User cart not found"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}
