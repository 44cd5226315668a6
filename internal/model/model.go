// Package model содержит доменные сущности фермерского магазина.
package model

import (
	"fmt"
	"time"
)

// Stock описывает текущий остаток яиц по двум видам.
type Stock struct {
	Standard  int       `json:"standard"`
	LowChol   int       `json:"low_chol"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Total возвращает суммарный остаток по обоим видам.
func (s Stock) Total() int {
	return s.Standard + s.LowChol
}

// PickupLocation описывает точку самовывоза заказа.
type PickupLocation string

const (
	// LocationFarm — самовывоз с фермы, доступен в любой день недели.
	LocationFarm PickupLocation = "farm"
	// LocationFactory — выдача на проходной завода, только в рабочие дни.
	LocationFactory PickupLocation = "factory"
)

// Valid сообщает, является ли значение одной из известных точек самовывоза.
func (l PickupLocation) Valid() bool {
	return l == LocationFarm || l == LocationFactory
}

// OrderStatus описывает статус обработки заказа.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// Next возвращает следующий статус в цепочке new → processing → done.
// Для терминальных статусов возвращает ok = false.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderStatusNew:
		return OrderStatusProcessing, true
	case OrderStatusProcessing:
		return OrderStatusDone, true
	default:
		return s, false
	}
}

// ReservationStatus описывает статус предзаказа.
type ReservationStatus string

const (
	ReservationStatusWaiting   ReservationStatus = "waiting"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCanceled  ReservationStatus = "canceled"
)

// Order описывает подтверждённый заказ с ценой и статусом оплаты.
type Order struct {
	ID          int64          `json:"-"`
	PublicID    string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email,omitempty"`
	Phone       string         `json:"phone,omitempty"`
	Standard    int            `json:"standard"`
	LowChol     int            `json:"low_chol"`
	Location    PickupLocation `json:"location"`
	PickupDate  time.Time      `json:"pickup_date"`
	Note        string         `json:"note,omitempty"`
	Price       int            `json:"price"`
	PriceManual bool           `json:"price_manual"`
	Paid        bool           `json:"paid"`
	Status      OrderStatus    `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Reservation описывает предзаказ — мягкую бронь будущего количества.
type Reservation struct {
	ID         int64             `json:"-"`
	PublicID   string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Standard   int               `json:"standard"`
	LowChol    int               `json:"low_chol"`
	Location   PickupLocation    `json:"location"`
	PickupDate *time.Time        `json:"pickup_date,omitempty"`
	Note       string            `json:"note,omitempty"`
	Status     ReservationStatus `json:"status"`
	Converted  bool              `json:"converted"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Expense описывает запись о расходах фермы.
type Expense struct {
	ID        int64     `json:"id"`
	SpentOn   time.Time `json:"spent_on"`
	Category  string    `json:"category"`
	Amount    int       `json:"amount"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductionRecord описывает дневную запись о собранных яйцах.
type ProductionRecord struct {
	ID         int64     `json:"id"`
	ProducedOn time.Time `json:"produced_on"`
	Standard   int       `json:"standard"`
	LowChol    int       `json:"low_chol"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CapacitySnapshot содержит исходные данные расчёта доступности:
// остаток по видам, сумму невыполненных броней и дневную скорость производства.
type CapacitySnapshot struct {
	StockStandard   int `json:"stock_standard"`
	StockLowChol    int `json:"stock_low_chol"`
	Reserved        int `json:"reserved"`
	DailyProduction int `json:"daily_production"`
}

// StockTotal возвращает суммарный остаток снимка.
func (c CapacitySnapshot) StockTotal() int {
	return c.StockStandard + c.StockLowChol
}

// Availability описывает ответ на запрос доступности для заданного количества.
type Availability struct {
	StockTotal      int       `json:"stock_total"`
	Reserved        int       `json:"reserved"`
	Available       int       `json:"available"`
	DailyProduction int       `json:"daily_production"`
	RequestedQty    int       `json:"requested_qty"`
	DaysNeeded      int       `json:"days_needed"`
	EarliestPickup  time.Time `json:"earliest_pickup"`
}

// CapacityError возвращается, когда предзаказ превышает общий лимит
// невыполненных броней. Remaining — сколько единиц ещё можно забронировать.
type CapacityError struct {
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("global reservation cap exceeded, remaining capacity %d", e.Remaining)
}
