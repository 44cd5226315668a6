package cache

import "time"

const (
	// Снимок данных доступности: availability:snapshot -> JSON CapacitySnapshot.
	keySnapshot = "availability:snapshot"
)

// TTLSnapshot ограничивает время жизни кэшированного снимка: после записи
// в БД мимо сервиса устаревшие данные живут не дольше минуты.
var TTLSnapshot = 1 * time.Minute
