package validation

import (
	"testing"
	"time"

	"github.com/milanbouzek/farmshop-system/internal/model"
)

func TestIsValidPickupDate(t *testing.T) {
	// Среда 2025-06-04.
	today := time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     time.Time
		location model.PickupLocation
		valid    bool
	}{
		{
			name:     "tomorrow at farm",
			date:     time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			location: model.LocationFarm,
			valid:    true,
		},
		{
			name:     "today is not allowed",
			date:     time.Date(2025, 6, 4, 23, 59, 0, 0, time.UTC),
			location: model.LocationFarm,
			valid:    false,
		},
		{
			name:     "past date",
			date:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			location: model.LocationFarm,
			valid:    false,
		},
		{
			name:     "saturday at factory",
			date:     time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
			location: model.LocationFactory,
			valid:    false,
		},
		{
			name:     "sunday at factory",
			date:     time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
			location: model.LocationFactory,
			valid:    false,
		},
		{
			name:     "saturday at farm",
			date:     time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
			location: model.LocationFarm,
			valid:    true,
		},
		{
			name:     "monday at factory",
			date:     time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
			location: model.LocationFactory,
			valid:    true,
		},
		{
			name:     "time of day does not matter",
			date:     time.Date(2025, 6, 5, 0, 0, 1, 0, time.UTC),
			location: model.LocationFarm,
			valid:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidPickupDate(tt.date, tt.location, today)
			if got != tt.valid {
				t.Fatalf("IsValidPickupDate(%s, %s) = %v, want %v",
					tt.date.Format(time.DateOnly), tt.location, got, tt.valid)
			}
		})
	}
}

// Дата из запроса приходит в UTC, а текущее время сервера может быть в другом
// поясе. Сравнение должно идти по календарным дням, а не по моментам времени.
func TestIsValidPickupDateMixedZones(t *testing.T) {
	prague := time.FixedZone("CEST", 2*60*60)

	tests := []struct {
		name     string
		date     time.Time
		today    time.Time
		location model.PickupLocation
		valid    bool
	}{
		{
			name:     "same day rejected on a server east of UTC",
			date:     time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
			today:    time.Date(2025, 6, 4, 9, 0, 0, 0, prague),
			location: model.LocationFarm,
			valid:    false,
		},
		{
			name:     "tomorrow accepted late in the server evening",
			date:     time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			today:    time.Date(2025, 6, 4, 23, 30, 0, 0, prague),
			location: model.LocationFarm,
			valid:    true,
		},
		{
			name:     "same day rejected on a server west of UTC",
			date:     time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
			today:    time.Date(2025, 6, 4, 9, 0, 0, 0, time.FixedZone("EDT", -4*60*60)),
			location: model.LocationFarm,
			valid:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidPickupDate(tt.date, tt.location, tt.today)
			if got != tt.valid {
				t.Fatalf("IsValidPickupDate(%s, %s) = %v, want %v",
					tt.date.Format(time.DateOnly), tt.location, got, tt.valid)
			}
		})
	}
}

func TestMidnight(t *testing.T) {
	in := time.Date(2025, 6, 4, 18, 45, 12, 999, time.UTC)
	got := Midnight(in)

	want := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Midnight(%v) = %v, want %v", in, got, want)
	}
}

func TestMidnightDropsZone(t *testing.T) {
	prague := time.FixedZone("CEST", 2*60*60)
	in := time.Date(2025, 6, 4, 1, 30, 0, 0, prague)

	got := Midnight(in)

	want := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Midnight(%v) = %v, want %v", in, got, want)
	}
}
