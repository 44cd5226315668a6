// Package pricing содержит расчёт стоимости заказа.
package pricing

// Цены за одно яйцо в кронах.
const (
	PriceStandard = 5
	PriceLowChol  = 7
)

// Total возвращает стоимость заказа в целых кронах.
// Используется одинаково при создании заказа и при подтверждении предзаказа.
func Total(standard, lowChol int) int {
	return standard*PriceStandard + lowChol*PriceLowChol
}
