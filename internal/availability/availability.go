// Package availability содержит прогноз самой ранней даты самовывоза.
package availability

import (
	"time"

	"github.com/milanbouzek/farmshop-system/internal/model"
	"github.com/milanbouzek/farmshop-system/internal/validation"
)

// Projection — результат прогноза для запрошенного количества.
type Projection struct {
	// Available — остаток за вычетом невыполненных броней, может быть отрицательным.
	Available int
	// DaysNeeded — сколько дней производства не хватает до запрошенного количества.
	DaysNeeded int
	// EarliestDate — самая ранняя дата самовывоза, не раньше завтрашнего дня.
	EarliestDate time.Time
}

// Project рассчитывает самую раннюю дату, на которую ферма сможет выдать
// запрошенное количество. Прогноз справочный: он не бронирует остаток
// и не заменяет проверку лимитов при приёме заявки.
func Project(snap model.CapacitySnapshot, requestedQty int, today time.Time) Projection {
	tomorrow := validation.Midnight(today).AddDate(0, 0, 1)

	available := snap.StockTotal() - snap.Reserved
	if available >= requestedQty {
		return Projection{
			Available:    available,
			DaysNeeded:   0,
			EarliestDate: tomorrow,
		}
	}

	rate := snap.DailyProduction
	if rate <= 0 {
		rate = 1
	}

	missing := requestedQty - available
	daysNeeded := (missing + rate - 1) / rate

	candidate := validation.Midnight(today).AddDate(0, 0, daysNeeded)
	if candidate.Before(tomorrow) {
		candidate = tomorrow
	}

	return Projection{
		Available:    available,
		DaysNeeded:   daysNeeded,
		EarliestDate: candidate,
	}
}
