package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePrice_SingleUnit(t *testing.T) {
	// Скидка не применяется к одной единице даже при настроенном проценте
	assert.Equal(t, 100.0, ComputePrice(100, 1, 10))
}

func TestComputePrice_BulkDiscount(t *testing.T) {
	// 100 * 3 = 300, минус 10% = 270.00
	assert.Equal(t, 270.0, ComputePrice(100, 3, 10))
}

func TestComputePrice_NoDiscountConfigured(t *testing.T) {
	assert.Equal(t, 300.0, ComputePrice(100, 3, 0))
}

func TestComputePrice_ZeroQuantity(t *testing.T) {
	assert.Equal(t, 0.0, ComputePrice(100, 0, 10))
	assert.Equal(t, 0.0, ComputePrice(100, -1, 10))
}

func TestComputePrice_RoundsHalfUpToCents(t *testing.T) {
	// 33.335 * 2 = 66.67, минус 15% = 56.6695 -> 56.67
	assert.Equal(t, 56.67, ComputePrice(33.335, 2, 15))

	// 10.00 * 3 = 30, минус 33.333% = 20.0001 -> 20.00
	assert.Equal(t, 20.0, ComputePrice(10, 3, 33.33))
}

func TestComputePrice_FullDiscountBoundary(t *testing.T) {
	// 99% - максимально допустимая скидка в конфигурации
	assert.Equal(t, 2.0, ComputePrice(100, 2, 99))
}
