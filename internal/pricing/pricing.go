package pricing

import "math"

// ComputePrice вычисляет итоговую стоимость бронирования с учётом оптовой скидки
// Скидка применяется только при quantity > 1 и настроенном discountPercent
// Результат округляется до копеек (round half up)
func ComputePrice(baseServicePrice float64, quantity int, bulkDiscountPercent float64) float64 {
	if quantity <= 0 {
		return 0
	}

	total := baseServicePrice * float64(quantity)
	if quantity > 1 && bulkDiscountPercent > 0 {
		total *= 1 - bulkDiscountPercent/100
	}

	return roundToCents(total)
}

// roundToCents округляет сумму до двух знаков (round half up)
func roundToCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
