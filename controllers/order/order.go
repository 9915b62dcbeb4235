package orderControllers

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
	"github.com/minh-nguyen1624/phone-commerce-api/models"
	"github.com/minh-nguyen1624/phone-commerce-api/ws"
)

// -------- Request Structs --------

type CheckoutRequest struct {
	PaymentMethod   string          `json:"payment_method" binding:"required"` // e.g. "card", "cod"
	DeliveryOption  *string         `json:"delivery_option"`
	ShippingAddress *models.Address `json:"shipping_address"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// -------- Helpers --------

// Map string to OrderStatus
func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, nil
	case string(models.OrderStatusConfirmed):
		return models.OrderStatusConfirmed, nil
	case string(models.OrderStatusReadyToShip):
		return models.OrderStatusReadyToShip, nil
	case string(models.OrderStatusShipped):
		return models.OrderStatusShipped, nil
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, nil
	case string(models.OrderStatusReturned):
		return models.OrderStatusReturned, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// Map string to PaymentStatus
func mapPaymentStatus(status string) (models.PaymentStatus, error) {
	switch strings.ToLower(status) {
	case string(models.PaymentStatusPending):
		return models.PaymentStatusPending, nil
	case string(models.PaymentStatusPaid):
		return models.PaymentStatusPaid, nil
	case string(models.PaymentStatusFailed):
		return models.PaymentStatusFailed, nil
	case string(models.PaymentStatusRefunded):
		return models.PaymentStatusRefunded, nil
	default:
		return "", errors.New("invalid payment status")
	}
}

// Generate unique order reference
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// lockOrder returns the warehouse locations in sorted order.
func lockOrder(byWarehouse map[string][]line) []string {
	locations := make([]string, 0, len(byWarehouse))
	for location := range byWarehouse {
		locations = append(locations, location)
	}
	sort.Strings(locations)
	return locations
}

// -------- Core Logic --------

// line is one phone/quantity pair within a warehouse during checkout.
type line struct {
	phoneID uint
	qty     int
}

// Checkout turns the user's cart into an order: recompute the cart against
// current pricing, commit the sale for each item against its warehouse,
// consume the coupon exactly once, freeze the totals onto the order and
// clear the cart. The whole thing is one transaction with the affected
// inventory rows locked; partial checkouts never persist.
func Checkout(db *gorm.DB, userID string, req CheckoutRequest) (*models.Order, error) {
	var cart models.Cart
	if err := db.Preload("Items").Preload("Discount").
		Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("cart for user %s", userID)
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.Validationf("cart is empty")
	}

	if req.DeliveryOption != nil {
		cart.DeliveryOption = *req.DeliveryOption
	}
	if req.ShippingAddress != nil {
		cart.ShippingAddress = *req.ShippingAddress
	}

	now := time.Now()
	if err := cart.Recompute(models.LookupPhones(db), now); err != nil {
		return nil, err
	}

	var order models.Order
	var lowStock []models.LowStockItem

	err := db.Transaction(func(tx *gorm.DB) error {
		// Group line items per warehouse so each inventory record is
		// locked, mutated and saved once.
		byWarehouse := make(map[string][]line)
		for _, item := range cart.Items {
			phone, err := models.PhoneByID(tx, item.PhoneID)
			if err != nil {
				return err
			}
			if phone.WarehouseLocation == "" {
				return apperrors.InvalidStatef("phone %d is not tracked in any warehouse", phone.ID)
			}
			byWarehouse[phone.WarehouseLocation] = append(
				byWarehouse[phone.WarehouseLocation], line{phoneID: phone.ID, qty: item.Quantity})
		}

		threshold := ws.Threshold()
		// Lock warehouses in a stable order; concurrent multi-warehouse
		// checkouts locking in opposite orders would deadlock.
		for _, location := range lockOrder(byWarehouse) {
			lines := byWarehouse[location]
			var inv models.Inventory
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("warehouse_location = ?", location).First(&inv).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFoundf("no inventory for warehouse %q", location)
				}
				return err
			}
			if err := tx.Where("inventory_id = ?", inv.ID).Find(&inv.Items).Error; err != nil {
				return err
			}

			for _, l := range lines {
				item, err := inv.CommitSale(l.phoneID, l.qty)
				if err != nil {
					return err
				}
				if item.Available() <= threshold {
					lowStock = append(lowStock, models.LowStockItem{
						WarehouseLocation: location,
						PhoneID:           l.phoneID,
						AvailableStock:    item.Available(),
					})
				}
			}
			if err := models.SaveInventory(tx, &inv); err != nil {
				return err
			}
		}

		// Coupon usage is consumed here and only here, once per completed
		// order; saving a cart while shopping never counts.
		if cart.DiscountID != nil && cart.DiscountAmount.IsPositive() {
			var discount models.Discount
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&discount, *cart.DiscountID).Error; err != nil {
				return apperrors.NotFoundf("discount %d", *cart.DiscountID)
			}
			if !discount.IsCurrentlyActive(now) {
				return apperrors.InvalidStatef("discount %q is expired or inactive", discount.Code)
			}
			if err := tx.Model(&discount).
				Update("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
				return err
			}
			order.DiscountCode = discount.Code
		}

		orderItems := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			orderItems = append(orderItems, models.OrderItem{
				PhoneID:       item.PhoneID,
				PhoneName:     item.PhoneName,
				ImageURL:      item.ImageURL,
				Currency:      item.Currency,
				Price:         item.Price,
				OriginalPrice: item.OriginalPrice,
				Quantity:      item.Quantity,
				IsGift:        item.IsGift,
				CustomOption:  item.CustomOption,
			})
		}

		order.UserID = userID
		order.Items = orderItems
		order.SubTotal = cart.SubTotal
		order.DiscountAmount = cart.DiscountAmount
		order.ShippingFee = cart.ShippingFee
		order.TotalAmount = cart.TotalCartPrice.Add(cart.ShippingFee)
		order.LoyaltyPoints = cart.LoyaltyPoints
		order.Status = models.OrderStatusPending
		order.PaymentStatus = models.PaymentStatusPending
		order.PaymentMethod = req.PaymentMethod
		order.OrderRef = generateOrderRef()
		order.CreatedAt = now

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Clear cart items and zero the derived fields.
		if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Cart{}).Where("cart_id = ?", cart.CartID).
			Updates(map[string]interface{}{
				"sub_total":        0,
				"total_cart_price": 0,
				"discount_id":      nil,
				"discount_amount":  0,
				"shipping_fee":     0,
				"loyalty_points":   0,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	ws.BroadcastLowStock(lowStock)

	return &order, nil
}

// -------- Handlers --------

// POST /user/checkout
func CheckoutHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := Checkout(db, userID, req)
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// Get single order by ID or order_ref
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}

		var order models.Order
		if err := db.
			Preload("Items").
			Where("id::text = ? OR order_ref = ?", id, id).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// Update order status
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := db.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", newStatus).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully"})
	}
}

// Delete an order
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}
		res := db.Where("id = ?", orderID).Delete(&models.Order{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete order"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}

// Update payment status
func UpdatePaymentStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}
		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := mapPaymentStatus(req.PaymentStatus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := db.Model(&models.Order{}).Where("id = ?", orderID).
			Update("payment_status", newStatus).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update payment status"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated successfully"})
	}
}
