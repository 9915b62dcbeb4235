package orderControllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minh-nguyen1624/phone-commerce-api/models"
)

func TestLockOrderIsDeterministic(t *testing.T) {
	byWarehouse := map[string][]line{
		"saigon-02": {{phoneID: 2, qty: 1}},
		"hanoi-01":  {{phoneID: 1, qty: 2}},
		"danang-03": {{phoneID: 3, qty: 1}},
	}

	// Two concurrent checkouts touching the same warehouses must acquire
	// their row locks in the same order.
	first := lockOrder(byWarehouse)
	assert.Equal(t, []string{"danang-03", "hanoi-01", "saigon-02"}, first)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, lockOrder(byWarehouse))
	}
}

func TestMapOrderStatus(t *testing.T) {
	status, err := mapOrderStatus("Shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, status)

	_, err = mapOrderStatus("teleported")
	assert.Error(t, err)
}

func TestMapPaymentStatus(t *testing.T) {
	status, err := mapPaymentStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, status)

	_, err = mapPaymentStatus("maybe")
	assert.Error(t, err)
}
