package booking

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var timeGrid = buildTimeGrid()

func buildTimeGrid() []string {
	slots := make([]string, 0, 48)
	for i := 0; i < 48; i++ {
		slots = append(slots, fmt.Sprintf("%02d:%02d", i/2, (i%2)*30))
	}
	return slots
}

// TimeSlots returns the half-hour grid 00:00 through 23:30.
func TimeSlots() []string {
	out := make([]string, len(timeGrid))
	copy(out, timeGrid)
	return out
}

func isGridTime(t string) bool {
	for _, s := range timeGrid {
		if s == t {
			return true
		}
	}
	return false
}

func beginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ValidateSchedule checks that date falls strictly after tomorrow (relative
// to now, in now's location) and that tm is on the half-hour grid.
func ValidateSchedule(date, tm string, now time.Time) error {
	if date == "" {
		return NewValidationError("date", "date is required")
	}
	day, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return NewValidationError("date", "date must be formatted as YYYY-MM-DD")
	}
	tomorrow := beginningOfDay(now).AddDate(0, 0, 1)
	if !day.After(tomorrow) {
		return NewValidationError("date", "date must be after "+tomorrow.Format(dateLayout))
	}
	if tm == "" {
		return NewValidationError("time", "time is required")
	}
	if !isGridTime(tm) {
		return NewValidationError("time", "time must be on the half-hour grid")
	}
	return nil
}
