package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValid(t *testing.T) {
	assert.True(t, CATEGORY_PREPARATION_CLASS.Valid())
	assert.True(t, CATEGORY_TEST_BOOKING.Valid())
	assert.True(t, CATEGORY_MOCK_TEST.Valid())
	assert.False(t, Category("").Valid())
	assert.False(t, Category("workshop").Valid())
}

func TestReservationStatusValid(t *testing.T) {
	for _, s := range []ReservationStatus{
		RESERVATION_UPCOMING,
		RESERVATION_ACTIVE,
		RESERVATION_COMPLETED,
		RESERVATION_PROCESSING,
		RESERVATION_CANCELLED,
	} {
		assert.Truef(t, s.Valid(), "%s should be a valid status", s)
	}
	assert.False(t, ReservationStatus("expired").Valid())
}

func TestTransactionStatusValid(t *testing.T) {
	assert.True(t, TRANSACTION_PENDING.Valid())
	assert.True(t, TRANSACTION_PAID.Valid())
	assert.True(t, TRANSACTION_FAILED.Valid())
	assert.True(t, TRANSACTION_REFUNDED.Valid())
	assert.False(t, TransactionStatus("settled").Valid())
}

func TestCategoryScan(t *testing.T) {
	var c Category
	assert.Nil(t, c.Scan([]byte("mock_test")))
	assert.Equal(t, CATEGORY_MOCK_TEST, c)

	assert.Nil(t, c.Scan("test_booking"))
	assert.Equal(t, CATEGORY_TEST_BOOKING, c)

	assert.NotNil(t, c.Scan(42))
}

func TestJSONBScan(t *testing.T) {
	var p JSONB
	err := p.Scan([]byte(`{"id":7,"topic":"reservations-activate"}`))
	assert.Nil(t, err)
	assert.Equal(t, float64(7), p["id"])
	assert.Equal(t, "reservations-activate", p["topic"])

	err = p.Scan("not bytes")
	assert.NotNil(t, err)
}
