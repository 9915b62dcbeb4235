package inventoryControllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
	"github.com/minh-nguyen1624/phone-commerce-api/models"
	"github.com/minh-nguyen1624/phone-commerce-api/ws"
)

// -------- Request Structs --------

type CreateInventoryInput struct {
	WarehouseLocation string `json:"warehouse_location" binding:"required"`
}

type AddProductInput struct {
	PhoneID  uint `json:"phone_id" binding:"required"`
	Stock    int  `json:"stock"`
	Quantity int  `json:"quantity"`
	Reserved int  `json:"reserved"`
}

type QuantityInput struct {
	PhoneID  uint `json:"phone_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// -------- Handlers --------

// CreateInventory explicitly creates a warehouse record. Phones saved with a
// new warehouse location create one lazily; this is the admin path.
func CreateInventory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateInventoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var existing models.Inventory
		if err := db.Where("warehouse_location = ?", input.WarehouseLocation).
			First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Warehouse already exists"})
			return
		}

		inv := models.Inventory{
			WarehouseLocation: input.WarehouseLocation,
			LastUpdated:       time.Now(),
		}
		if err := db.Create(&inv).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inventory"})
			return
		}
		c.JSON(http.StatusCreated, inv)
	}
}

func GetInventories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var inventories []models.Inventory
		if err := db.Preload("Items").Order("warehouse_location").Find(&inventories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventories"})
			return
		}
		c.JSON(http.StatusOK, inventories)
	}
}

func GetInventoryByLocation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		inv, err := models.InventoryByLocation(db, c.Param("location"))
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

// AddInventoryProduct adds a tracked entry for a phone. An existing entry is
// a conflict; restock is the update path.
func AddInventoryProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		location := c.Param("location")
		var input AddProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		phone, err := models.PhoneByID(db, input.PhoneID)
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		if phone.WarehouseLocation != "" && phone.WarehouseLocation != location {
			c.JSON(http.StatusConflict, gin.H{
				"error": "phone is already tracked in warehouse " + phone.WarehouseLocation,
			})
			return
		}

		inv, err := models.MutateInventory(db, location, func(inv *models.Inventory) error {
			_, err := inv.AddProduct(input.PhoneID, input.Stock, input.Quantity, input.Reserved)
			return err
		})
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		if phone.WarehouseLocation == "" {
			if err := db.Model(&models.Phone{}).Where("id = ?", phone.ID).
				Update("warehouse_location", location).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update phone warehouse"})
				return
			}
		}

		c.JSON(http.StatusCreated, inv)
	}
}

// Restock adds units to an existing entry.
func Restock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		location := c.Param("location")
		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		inv, err := models.MutateInventory(db, location, func(inv *models.Inventory) error {
			_, err := inv.Restock(input.PhoneID, input.Quantity)
			return err
		})
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

// Reserve holds units for a pending order.
func Reserve(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		location := c.Param("location")
		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		inv, err := models.MutateInventory(db, location, func(inv *models.Inventory) error {
			return inv.Reserve(input.PhoneID, input.Quantity)
		})
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		notifyIfLow(inv, input.PhoneID)

		c.JSON(http.StatusOK, inv)
	}
}

// Release gives a reservation back.
func Release(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		location := c.Param("location")
		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		inv, err := models.MutateInventory(db, location, func(inv *models.Inventory) error {
			return inv.Release(input.PhoneID, input.Quantity)
		})
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

// CheckStock is read-only: 200 when the requested quantity is available,
// 409 naming the phone and the available count when it is not.
// GET /inventories/:location/check-stock?phone_id=&quantity=
func CheckStock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		phoneID, err := strconv.ParseUint(c.Query("phone_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone_id"})
			return
		}
		qty, err := strconv.Atoi(c.Query("quantity"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
			return
		}

		inv, err := models.InventoryByLocation(db, c.Param("location"))
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		if err := inv.CheckStock(uint(phoneID), qty); err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"available": true})
	}
}

// GetHistory returns the append-only action log for a warehouse.
func GetHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		inv, err := models.InventoryWithHistory(db, c.Param("location"))
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, inv.History)
	}
}

// GetSoldQuantity sums the purchase history for a phone in its warehouse.
// GET /inventories/sold-quantity?phone_id=
func GetSoldQuantity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		phoneID, err := strconv.ParseUint(c.Query("phone_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone_id"})
			return
		}

		phone, err := models.PhoneByID(db, uint(phoneID))
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		if phone.WarehouseLocation == "" {
			c.JSON(http.StatusOK, gin.H{"phone_id": phone.ID, "sold_quantity": 0})
			return
		}

		inv, err := models.InventoryWithHistory(db, phone.WarehouseLocation)
		if err != nil {
			c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"phone_id":      phone.ID,
			"warehouse":     inv.WarehouseLocation,
			"sold_quantity": inv.SoldQuantity(phone.ID),
		})
	}
}

// notifyIfLow pushes a websocket alert when the touched entry sits at or
// below the threshold. Push only; nothing is written.
func notifyIfLow(inv *models.Inventory, phoneID uint) {
	it, err := inv.Item(phoneID)
	if err != nil {
		return
	}
	threshold := ws.Threshold()
	if it.Available() <= threshold {
		ws.BroadcastLowStock([]models.LowStockItem{{
			WarehouseLocation: inv.WarehouseLocation,
			PhoneID:           phoneID,
			AvailableStock:    it.Available(),
		}})
	}
}
