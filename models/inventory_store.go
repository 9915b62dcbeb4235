package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
)

// Attempts for the re-fetch-and-reapply loop on version conflicts.
const inventoryRetryAttempts = 3

// ErrStaleInventory marks a lost version race on save. Only these conflicts
// are retryable; consistency violations are Conflict-kind too but
// deterministic, so re-fetching cannot resolve them.
var ErrStaleInventory = errors.New("inventory version is stale")

func staleInventoryErr(location string) error {
	return fmt.Errorf("warehouse %q was modified concurrently: %w: %w",
		location, ErrStaleInventory, apperrors.ErrConflict)
}

func InventoryByLocation(db *gorm.DB, location string) (*Inventory, error) {
	var inv Inventory
	err := db.Preload("Items").Where("warehouse_location = ?", location).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("no inventory for warehouse %q", location)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// InventoryWithHistory additionally loads the full history log.
func InventoryWithHistory(db *gorm.DB, location string) (*Inventory, error) {
	var inv Inventory
	err := db.Preload("Items").Preload("History").
		Where("warehouse_location = ?", location).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("no inventory for warehouse %q", location)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// EnsureInventory returns the warehouse record, creating it lazily the first
// time a phone is saved with a new warehouse location.
func EnsureInventory(tx *gorm.DB, location string) (*Inventory, error) {
	if location == "" {
		return nil, apperrors.Validationf("warehouse location is required")
	}
	var inv Inventory
	err := tx.Preload("Items").Where("warehouse_location = ?", location).First(&inv).Error
	if err == nil {
		return &inv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	inv = Inventory{WarehouseLocation: location, LastUpdated: time.Now()}
	if err := tx.Create(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// SaveInventory persists a mutated record: compare-and-swap on Version (a
// concurrent writer surfaces as a Conflict, not a lost update), item upserts,
// new history rows, and the phone mirror columns, all in the caller's
// transaction.
func SaveInventory(tx *gorm.DB, inv *Inventory) error {
	if err := inv.CheckConsistency(); err != nil {
		return err
	}

	res := tx.Model(&Inventory{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"version":      inv.Version + 1,
			"last_updated": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return staleInventoryErr(inv.WarehouseLocation)
	}
	inv.Version++

	for i := range inv.Items {
		it := &inv.Items[i]
		it.InventoryID = inv.ID
		if it.ID == 0 {
			if err := tx.Create(it).Error; err != nil {
				return err
			}
		} else if err := tx.Model(&InventoryItem{}).Where("id = ?", it.ID).
			Updates(map[string]interface{}{
				"stock":    it.Stock,
				"quantity": it.Quantity,
				"reserved": it.Reserved,
			}).Error; err != nil {
			return err
		}
		if err := SyncPhoneMirror(tx, it); err != nil {
			return err
		}
	}

	for i := range inv.History {
		h := &inv.History[i]
		if h.ID != 0 {
			continue
		}
		h.InventoryID = inv.ID
		if err := tx.Create(h).Error; err != nil {
			return err
		}
	}
	return nil
}

// MutateInventory loads the record, applies fn and saves, re-fetching and
// reapplying when a concurrent writer won the version race.
func MutateInventory(db *gorm.DB, location string, fn func(*Inventory) error) (*Inventory, error) {
	var lastErr error
	for attempt := 0; attempt < inventoryRetryAttempts; attempt++ {
		inv, err := InventoryByLocation(db, location)
		if err != nil {
			return nil, err
		}
		if err := fn(inv); err != nil {
			return nil, err
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			return SaveInventory(tx, inv)
		})
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, ErrStaleInventory) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// SyncPhoneMirror projects an inventory entry's counters onto the phone row.
func SyncPhoneMirror(tx *gorm.DB, it *InventoryItem) error {
	return tx.Model(&Phone{}).Where("id = ?", it.PhoneID).
		Updates(map[string]interface{}{
			"stock":    it.Stock,
			"quantity": it.Quantity,
			"reserved": it.Reserved,
		}).Error
}

// PhoneByID wraps the record-not-found case in the service error taxonomy.
func PhoneByID(db *gorm.DB, id uint) (*Phone, error) {
	var phone Phone
	err := db.Preload("Categories").First(&phone, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("phone %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &phone, nil
}

// LookupPhones returns the DB-backed PhoneLookup carts recompute against.
func LookupPhones(db *gorm.DB) PhoneLookup {
	return func(id uint) (*Phone, error) {
		return PhoneByID(db, id)
	}
}
