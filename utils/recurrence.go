package utils

import (
	"time"

	"tribeconnect/models"
)

// DateLayout is the calendar-day format used across events ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeekdayName returns the short weekday name used in weekly repeat rules.
func WeekdayName(t time.Time) string {
	return weekdayNames[int(t.Weekday())]
}

// MonthGrid builds the day cells for a month view: weeks start on Sunday
// and the month is padded to full weeks with zero times, exactly the
// shape a calendar page renders.
func MonthGrid(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstIdx := int(first.Weekday())
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	totalCells := ((firstIdx + daysInMonth + 6) / 7) * 7
	grid := make([]time.Time, totalCells)
	for i := range grid {
		d := i - firstIdx + 1
		if d >= 1 && d <= daysInMonth {
			grid[i] = time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		}
	}
	return grid
}

// OccursOn reports whether the event occurs on the given calendar day.
//
// The event's own base date always counts as an occurrence, even when a
// weekly day-set does not include that weekday. Repeats only ever fall on
// or after the base date.
func OccursOn(event models.Event, day time.Time) bool {
	if day.IsZero() {
		return false
	}
	dateStr := day.Format(DateLayout)
	if event.Date == dateStr {
		return true
	}
	if !event.Repeats() {
		return false
	}

	base, err := time.ParseInLocation(DateLayout, event.Date, time.UTC)
	if err != nil || day.Before(base) {
		return false
	}

	interval := event.RepeatInterval
	if interval <= 0 {
		interval = 1
	}
	diffDays := int(day.Sub(base).Hours() / 24)

	switch event.RepeatFrequency {
	case models.RepeatDaily:
		return diffDays%interval == 0
	case models.RepeatWeekly:
		if (diffDays/7)%interval != 0 {
			return false
		}
		name := WeekdayName(day)
		for _, d := range event.RepeatDays {
			if d == name {
				return true
			}
		}
		return false
	case models.RepeatMonthly:
		return day.Day() == event.RepeatDayOfMonth
	}
	return false
}

// ExpandOccurrences maps each visible day ("YYYY-MM-DD") to the events
// occurring on it, repeat rules included. An event appears at most once
// per day. Pure function of its inputs; padding cells are skipped.
func ExpandOccurrences(events []models.Event, grid []time.Time) map[string][]models.Event {
	occurrences := make(map[string][]models.Event)

	add := func(dateStr string, evt models.Event) {
		for _, existing := range occurrences[dateStr] {
			if existing.ID == evt.ID {
				return
			}
		}
		occurrences[dateStr] = append(occurrences[dateStr], evt)
	}

	for _, day := range grid {
		if day.IsZero() {
			continue
		}
		dateStr := day.Format(DateLayout)
		for _, evt := range events {
			if OccursOn(evt, day) {
				add(dateStr, evt)
			}
		}
	}
	return occurrences
}
