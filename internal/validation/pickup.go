// Package validation содержит правила проверки заказов и предзаказов.
// Правила определены в одном месте: клиентская форма может подсказывать,
// но сервер всегда проверяет заявку заново.
package validation

import (
	"time"

	"github.com/milanbouzek/farmshop-system/internal/model"
)

// Midnight приводит значение к началу его календарного дня в UTC.
// Дата из запроса разбирается в UTC, а текущее время сервер берёт в своём
// поясе; сравнивать можно только календарные дни, иначе смещение пояса
// даёт ошибку на один день.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsValidPickupDate проверяет допустимость даты самовывоза для точки выдачи.
// Дата должна быть строго позже сегодняшнего дня; для выдачи на заводе
// суббота и воскресенье недоступны.
func IsValidPickupDate(date time.Time, location model.PickupLocation, today time.Time) bool {
	d := Midnight(date)

	if !d.After(Midnight(today)) {
		return false
	}

	if location == model.LocationFactory {
		wd := d.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}

	return true
}
