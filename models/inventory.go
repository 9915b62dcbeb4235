package models

import (
	"time"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
)

type HistoryAction string

const (
	HistoryActionAdd           HistoryAction = "add"
	HistoryActionReserve       HistoryAction = "reserve"
	HistoryActionUnreserve     HistoryAction = "unreserve"
	HistoryActionPurchase      HistoryAction = "purchase"
	HistoryActionLowStockAlert HistoryAction = "low_stock_alert"
)

// Inventory owns the stock counters for one warehouse location. It is the
// source of truth; Phone.Stock/Quantity/Reserved mirror it. Every save goes
// through a compare-and-swap on Version so concurrent read-modify-write
// cycles surface as conflicts instead of lost updates.
type Inventory struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	WarehouseLocation string             `gorm:"uniqueIndex;not null" json:"warehouse_location"`
	Items             []InventoryItem    `gorm:"foreignKey:InventoryID;constraint:OnDelete:CASCADE" json:"items"`
	History           []InventoryHistory `gorm:"foreignKey:InventoryID;constraint:OnDelete:CASCADE" json:"history,omitempty"`
	Version           int                `gorm:"not null;default:0" json:"version"`
	LastUpdated       time.Time          `json:"last_updated"`
	CreatedAt         time.Time          `json:"created_at"`
}

type InventoryItem struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	InventoryID uint `gorm:"index:idx_inventory_phone,unique" json:"inventory_id"`
	PhoneID     uint `gorm:"index:idx_inventory_phone,unique" json:"phone_id"`
	Stock       int  `json:"stock"`
	Quantity    int  `json:"quantity"`
	Reserved    int  `json:"reserved"`
}

// Available is the quantity not held by a reservation.
func (it *InventoryItem) Available() int {
	return it.Quantity - it.Reserved
}

// InventoryHistory rows are append-only; they are never updated or deleted.
type InventoryHistory struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	InventoryID     uint          `gorm:"index" json:"inventory_id"`
	PhoneID         uint          `gorm:"index" json:"phone_id"`
	Action          HistoryAction `gorm:"type:VARCHAR(20);not null" json:"action"`
	QuantityChanged int           `json:"quantity_changed"`
	NewQuantity     int           `json:"new_quantity"`
	CreatedAt       time.Time     `json:"created_at"`
}

type LowStockItem struct {
	WarehouseLocation string `json:"warehouse_location"`
	PhoneID           uint   `json:"phone_id"`
	AvailableStock    int    `json:"available_stock"`
}

func (inv *Inventory) item(phoneID uint) (*InventoryItem, error) {
	for i := range inv.Items {
		if inv.Items[i].PhoneID == phoneID {
			return &inv.Items[i], nil
		}
	}
	return nil, apperrors.NotFoundf("phone %d has no entry in warehouse %q", phoneID, inv.WarehouseLocation)
}

// Item returns the entry for a phone, or a NotFound error.
func (inv *Inventory) Item(phoneID uint) (*InventoryItem, error) {
	return inv.item(phoneID)
}

func (inv *Inventory) appendHistory(phoneID uint, action HistoryAction, changed, newQuantity int) {
	inv.History = append(inv.History, InventoryHistory{
		InventoryID:     inv.ID,
		PhoneID:         phoneID,
		Action:          action,
		QuantityChanged: changed,
		NewQuantity:     newQuantity,
		CreatedAt:       time.Now(),
	})
}

// CheckStock fails with an InsufficientStock error naming the phone and the
// available quantity when the request cannot be satisfied. Read-only.
func (inv *Inventory) CheckStock(phoneID uint, requested int) error {
	if requested <= 0 {
		return apperrors.Validationf("requested quantity must be positive, got %d", requested)
	}
	it, err := inv.item(phoneID)
	if err != nil {
		return err
	}
	if it.Available() < requested {
		return apperrors.InsufficientStockf(
			"phone %d in warehouse %q: requested %d but only %d available",
			phoneID, inv.WarehouseLocation, requested, it.Available())
	}
	return nil
}

// Reserve holds qty units for a pending order without removing them from
// stock.
func (inv *Inventory) Reserve(phoneID uint, qty int) error {
	if qty <= 0 {
		return apperrors.Validationf("reserve quantity must be positive, got %d", qty)
	}
	it, err := inv.item(phoneID)
	if err != nil {
		return err
	}
	if it.Stock-it.Reserved < qty {
		return apperrors.InsufficientStockf(
			"phone %d in warehouse %q: cannot reserve %d, only %d available",
			phoneID, inv.WarehouseLocation, qty, it.Stock-it.Reserved)
	}
	it.Reserved += qty
	inv.appendHistory(phoneID, HistoryActionReserve, qty, it.Quantity)
	return nil
}

// Release gives back a previous reservation.
func (inv *Inventory) Release(phoneID uint, qty int) error {
	if qty <= 0 {
		return apperrors.Validationf("release quantity must be positive, got %d", qty)
	}
	it, err := inv.item(phoneID)
	if err != nil {
		return err
	}
	if it.Reserved < qty {
		return apperrors.Validationf(
			"phone %d in warehouse %q: cannot release %d, only %d reserved",
			phoneID, inv.WarehouseLocation, qty, it.Reserved)
	}
	it.Reserved -= qty
	inv.appendHistory(phoneID, HistoryActionUnreserve, qty, it.Quantity)
	return nil
}

// CommitSale removes sold units directly from stock. The returned item is
// the updated entry so callers can sync the phone mirror in the same
// transaction as the inventory write.
func (inv *Inventory) CommitSale(phoneID uint, qty int) (*InventoryItem, error) {
	if qty <= 0 {
		return nil, apperrors.Validationf("sale quantity must be positive, got %d", qty)
	}
	it, err := inv.item(phoneID)
	if err != nil {
		return nil, err
	}
	if it.Stock-it.Reserved < qty {
		return nil, apperrors.InsufficientStockf(
			"phone %d in warehouse %q: cannot sell %d, only %d available",
			phoneID, inv.WarehouseLocation, qty, it.Stock-it.Reserved)
	}
	it.Stock -= qty
	it.Quantity -= qty
	inv.appendHistory(phoneID, HistoryActionPurchase, qty, it.Quantity)
	return it, nil
}

// Restock adds units for an existing entry.
func (inv *Inventory) Restock(phoneID uint, qty int) (*InventoryItem, error) {
	if qty <= 0 {
		return nil, apperrors.Validationf("restock quantity must be positive, got %d", qty)
	}
	it, err := inv.item(phoneID)
	if err != nil {
		return nil, err
	}
	it.Stock += qty
	it.Quantity += qty
	inv.appendHistory(phoneID, HistoryActionAdd, qty, it.Quantity)
	return it, nil
}

// AddProduct creates an entry for a phone not yet tracked in this warehouse.
// An existing entry is a conflict, never a silent overwrite; use Restock to
// change counts.
func (inv *Inventory) AddProduct(phoneID uint, stock, quantity, reserved int) (*InventoryItem, error) {
	if stock < 0 || quantity < 0 || reserved < 0 {
		return nil, apperrors.Validationf("stock, quantity and reserved must not be negative")
	}
	if quantity < reserved {
		return nil, apperrors.Validationf("quantity %d must not be below reserved %d", quantity, reserved)
	}
	if _, err := inv.item(phoneID); err == nil {
		return nil, apperrors.Conflictf("phone %d already tracked in warehouse %q", phoneID, inv.WarehouseLocation)
	}
	inv.Items = append(inv.Items, InventoryItem{
		InventoryID: inv.ID,
		PhoneID:     phoneID,
		Stock:       stock,
		Quantity:    quantity,
		Reserved:    reserved,
	})
	inv.appendHistory(phoneID, HistoryActionAdd, quantity, quantity)
	return &inv.Items[len(inv.Items)-1], nil
}

// RemoveProduct drops a phone's entry, e.g. when the phone itself is
// deleted. The warehouse record stays even when its last entry goes.
func (inv *Inventory) RemoveProduct(phoneID uint) (*InventoryItem, error) {
	for i := range inv.Items {
		if inv.Items[i].PhoneID == phoneID {
			removed := inv.Items[i]
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			return &removed, nil
		}
	}
	return nil, apperrors.NotFoundf("phone %d has no entry in warehouse %q", phoneID, inv.WarehouseLocation)
}

// SoldQuantity sums the purchase history for a phone.
func (inv *Inventory) SoldQuantity(phoneID uint) int {
	total := 0
	for _, h := range inv.History {
		if h.PhoneID == phoneID && h.Action == HistoryActionPurchase {
			total += h.QuantityChanged
		}
	}
	return total
}

// LowStockItems lists entries whose available quantity is at or below the
// threshold. Pure query; recording an alert is a separate operation.
func (inv *Inventory) LowStockItems(threshold int) []LowStockItem {
	var out []LowStockItem
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.Available() <= threshold {
			out = append(out, LowStockItem{
				WarehouseLocation: inv.WarehouseLocation,
				PhoneID:           it.PhoneID,
				AvailableStock:    it.Available(),
			})
		}
	}
	return out
}

// RecordLowStockAlert appends an audit entry for every item at or below the
// threshold and reports them. Explicitly invoked; the pure query never
// writes.
func (inv *Inventory) RecordLowStockAlert(threshold int) []LowStockItem {
	low := inv.LowStockItems(threshold)
	for _, l := range low {
		inv.appendHistory(l.PhoneID, HistoryActionLowStockAlert, 0, l.AvailableStock+reservedOf(inv, l.PhoneID))
	}
	return low
}

func reservedOf(inv *Inventory, phoneID uint) int {
	if it, err := inv.item(phoneID); err == nil {
		return it.Reserved
	}
	return 0
}

// CheckConsistency re-verifies the whole record before any persist, not just
// the touched entry: every item must satisfy quantity >= reserved >= 0 and
// stock >= 0.
func (inv *Inventory) CheckConsistency() error {
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.Reserved < 0 {
			return apperrors.Conflictf(
				"warehouse %q phone %d: reserved %d is negative", inv.WarehouseLocation, it.PhoneID, it.Reserved)
		}
		if it.Stock < 0 {
			return apperrors.Conflictf(
				"warehouse %q phone %d: stock %d is negative", inv.WarehouseLocation, it.PhoneID, it.Stock)
		}
		if it.Quantity < it.Reserved {
			return apperrors.Conflictf(
				"warehouse %q phone %d: quantity %d below reserved %d",
				inv.WarehouseLocation, it.PhoneID, it.Quantity, it.Reserved)
		}
	}
	return nil
}
