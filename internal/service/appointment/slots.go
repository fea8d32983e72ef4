package appointment

import (
	"fmt"
	"time"

	"github.com/jwalitptl/booking-api/pkg/validator"
)

const (
	firstSlotMinutes = 9 * 60
	lastSlotMinutes  = 17*60 + 30
	slotStepMinutes  = 30
)

// DailyTemplate lists every bookable slot label of a day in ascending order:
// 09:00 through 17:30 every 30 minutes.
func DailyTemplate() []string {
	slots := make([]string, 0, (lastSlotMinutes-firstSlotMinutes)/slotStepMinutes+1)
	for m := firstSlotMinutes; m <= lastSlotMinutes; m += slotStepMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// IsTemplateSlot reports whether slot is one of the daily template labels
func IsTemplateSlot(slot string) bool {
	m, ok := slotMinutes(slot)
	if !ok {
		return false
	}
	return m >= firstSlotMinutes && m <= lastSlotMinutes && (m-firstSlotMinutes)%slotStepMinutes == 0
}

func slotMinutes(slot string) (int, bool) {
	t, err := time.Parse(validator.TimeOfDayLayout, slot)
	if err != nil || len(slot) != len(validator.TimeOfDayLayout) {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// AvailableSlots filters the daily template for date. Booked slots are dropped
// whatever their status. When date is today in now's location, only slots
// strictly after the current minute of the day are kept.
func AvailableSlots(date string, booked []string, now time.Time) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, s := range booked {
		taken[s] = struct{}{}
	}

	isToday := now.Format(validator.DateLayout) == date
	nowMinutes := now.Hour()*60 + now.Minute()

	available := make([]string, 0, len(DailyTemplate()))
	for _, slot := range DailyTemplate() {
		if _, ok := taken[slot]; ok {
			continue
		}
		if isToday {
			m, _ := slotMinutes(slot)
			if m <= nowMinutes {
				continue
			}
		}
		available = append(available, slot)
	}
	return available
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
