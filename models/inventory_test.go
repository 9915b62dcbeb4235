package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
)

func testInventory(t *testing.T) *Inventory {
	t.Helper()
	inv := &Inventory{ID: 1, WarehouseLocation: "hanoi-01"}
	_, err := inv.AddProduct(1, 10, 10, 0)
	require.NoError(t, err)
	return inv
}

func TestCheckStockAgainstReserved(t *testing.T) {
	inv := testInventory(t)
	require.NoError(t, inv.Reserve(1, 3))

	// 10 on hand, 3 reserved: 8 must fail, 7 must pass.
	err := inv.CheckStock(1, 8)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientStock(err))
	assert.Contains(t, err.Error(), "only 7 available")

	assert.NoError(t, inv.CheckStock(1, 7))
}

func TestCheckStockUnknownPhone(t *testing.T) {
	inv := testInventory(t)
	err := inv.CheckStock(99, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReserveBoundary(t *testing.T) {
	inv := testInventory(t)

	err := inv.Reserve(1, 11)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientStock(err))

	it, _ := inv.Item(1)
	assert.Equal(t, 0, it.Reserved, "failed reserve must leave reserved unchanged")

	require.NoError(t, inv.Reserve(1, 10))
	it, _ = inv.Item(1)
	assert.Equal(t, 10, it.Reserved)
}

func TestReleaseMoreThanReserved(t *testing.T) {
	inv := testInventory(t)
	require.NoError(t, inv.Reserve(1, 2))

	err := inv.Release(1, 3)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	require.NoError(t, inv.Release(1, 2))
	it, _ := inv.Item(1)
	assert.Equal(t, 0, it.Reserved)
}

func TestCommitSaleExhaustsStock(t *testing.T) {
	inv := &Inventory{ID: 1, WarehouseLocation: "hanoi-01"}
	_, err := inv.AddProduct(1, 5, 5, 0)
	require.NoError(t, err)

	it, err := inv.CommitSale(1, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, it.Stock)
	assert.Equal(t, 0, it.Quantity)

	_, err = inv.CommitSale(1, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientStock(err))

	it, _ = inv.Item(1)
	assert.Equal(t, 0, it.Stock, "failed sale must not change counters")
}

func TestCommitSaleRespectsReservations(t *testing.T) {
	inv := testInventory(t)
	require.NoError(t, inv.Reserve(1, 6))

	_, err := inv.CommitSale(1, 5)
	require.Error(t, err)
	assert.True(t, apperrors.IsInsufficientStock(err))

	_, err = inv.CommitSale(1, 4)
	assert.NoError(t, err)
}

func TestAddProductDuplicateConflicts(t *testing.T) {
	inv := testInventory(t)
	_, err := inv.AddProduct(1, 5, 5, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestRemoveProduct(t *testing.T) {
	inv := testInventory(t)
	removed, err := inv.RemoveProduct(1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), removed.PhoneID)
	assert.Empty(t, inv.Items)

	_, err = inv.RemoveProduct(1)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRestock(t *testing.T) {
	inv := testInventory(t)
	it, err := inv.Restock(1, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, it.Stock)
	assert.Equal(t, 15, it.Quantity)
}

func TestSoldQuantitySumsPurchases(t *testing.T) {
	inv := testInventory(t)
	_, err := inv.CommitSale(1, 2)
	require.NoError(t, err)
	_, err = inv.CommitSale(1, 3)
	require.NoError(t, err)
	require.NoError(t, inv.Reserve(1, 1)) // not a purchase

	assert.Equal(t, 5, inv.SoldQuantity(1))
	assert.Equal(t, 0, inv.SoldQuantity(99))
}

func TestLowStockItemsIsPure(t *testing.T) {
	inv := testInventory(t)
	_, err := inv.AddProduct(2, 3, 3, 0)
	require.NoError(t, err)

	histBefore := len(inv.History)
	low := inv.LowStockItems(5)
	require.Len(t, low, 1)
	assert.Equal(t, uint(2), low[0].PhoneID)
	assert.Equal(t, 3, low[0].AvailableStock)
	assert.Equal(t, histBefore, len(inv.History), "the query must not write history")
}

func TestRecordLowStockAlertAppendsHistory(t *testing.T) {
	inv := testInventory(t)
	_, err := inv.AddProduct(2, 3, 3, 0)
	require.NoError(t, err)

	histBefore := len(inv.History)
	low := inv.RecordLowStockAlert(5)
	require.Len(t, low, 1)
	require.Equal(t, histBefore+1, len(inv.History))
	assert.Equal(t, HistoryActionLowStockAlert, inv.History[len(inv.History)-1].Action)
}

func TestStaleSaveErrorIsRetryable(t *testing.T) {
	err := staleInventoryErr("hanoi-01")
	assert.True(t, apperrors.IsConflict(err))
	assert.True(t, errors.Is(err, ErrStaleInventory))
}

func TestConsistencyConflictIsNotRetryable(t *testing.T) {
	inv := testInventory(t)
	inv.Items[0].Reserved = -1

	err := inv.CheckConsistency()
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.False(t, errors.Is(err, ErrStaleInventory),
		"a deterministic consistency failure must not be re-fetched and retried")
}

func TestCheckConsistency(t *testing.T) {
	inv := testInventory(t)
	assert.NoError(t, inv.CheckConsistency())

	t.Run("negative reserved", func(t *testing.T) {
		inv := testInventory(t)
		inv.Items[0].Reserved = -1
		assert.True(t, apperrors.IsConflict(inv.CheckConsistency()))
	})
	t.Run("quantity below reserved", func(t *testing.T) {
		inv := testInventory(t)
		inv.Items[0].Reserved = 11
		assert.True(t, apperrors.IsConflict(inv.CheckConsistency()))
	})
	t.Run("negative stock", func(t *testing.T) {
		inv := testInventory(t)
		inv.Items[0].Stock = -1
		assert.True(t, apperrors.IsConflict(inv.CheckConsistency()))
	})
}
