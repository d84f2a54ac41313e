package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tribeconnect/models"
)

func eventModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

func day(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(DateLayout, date, time.UTC)
	require.NoError(t, err)
	return d
}

func TestMonthGrid(t *testing.T) {
	// March 2024 starts on a Friday (index 5) and has 31 days:
	// 5 leading pads + 31 days = 36 cells, padded to 42.
	grid := MonthGrid(2024, time.March)
	assert.Len(t, grid, 42)
	assert.True(t, grid[0].IsZero())
	assert.True(t, grid[4].IsZero())
	assert.Equal(t, "2024-03-01", grid[5].Format(DateLayout))
	assert.Equal(t, "2024-03-31", grid[35].Format(DateLayout))
	assert.True(t, grid[36].IsZero())

	// A month starting on Sunday has no leading pads
	sept := MonthGrid(2024, time.September)
	assert.Equal(t, "2024-09-01", sept[0].Format(DateLayout))
	assert.Len(t, sept, 35)

	// Every cell is either zero or inside the month
	for _, d := range grid {
		if !d.IsZero() {
			assert.Equal(t, time.March, d.Month())
		}
	}
}

func TestOccursOn(t *testing.T) {
	tests := []struct {
		name  string
		event models.Event
		date  string
		want  bool
	}{
		{
			name:  "non-repeating on its date",
			event: models.Event{Date: "2024-03-15"},
			date:  "2024-03-15",
			want:  true,
		},
		{
			name:  "non-repeating on another date",
			event: models.Event{Date: "2024-03-15"},
			date:  "2024-03-16",
			want:  false,
		},
		{
			name: "daily every second day hits",
			event: models.Event{
				Date:            "2024-03-01",
				RepeatFrequency: models.RepeatDaily,
				RepeatInterval:  2,
			},
			date: "2024-03-05",
			want: true,
		},
		{
			name: "daily every second day skips",
			event: models.Event{
				Date:            "2024-03-01",
				RepeatFrequency: models.RepeatDaily,
				RepeatInterval:  2,
			},
			date: "2024-03-04",
			want: false,
		},
		{
			name: "no occurrence before the base date",
			event: models.Event{
				Date:            "2024-03-10",
				RepeatFrequency: models.RepeatDaily,
				RepeatInterval:  1,
			},
			date: "2024-03-05",
			want: false,
		},
		{
			name: "weekly hits listed weekday",
			event: models.Event{
				Date:            "2024-03-01",
				RepeatFrequency: models.RepeatWeekly,
				RepeatInterval:  1,
				RepeatDays:      []string{"Mon", "Fri"},
			},
			date: "2024-03-11", // a Monday
			want: true,
		},
		{
			name: "weekly skips unlisted weekday",
			event: models.Event{
				Date:            "2024-03-01",
				RepeatFrequency: models.RepeatWeekly,
				RepeatInterval:  1,
				RepeatDays:      []string{"Mon", "Fri"},
			},
			date: "2024-03-12", // a Tuesday
			want: false,
		},
		{
			name: "weekly base date counts even when its weekday is unlisted",
			event: models.Event{
				Date:            "2024-03-01", // a Friday
				RepeatFrequency: models.RepeatWeekly,
				RepeatInterval:  1,
				RepeatDays:      []string{"Mon"},
			},
			date: "2024-03-01",
			want: true,
		},
		{
			name: "biweekly skips the off week",
			event: models.Event{
				Date:            "2024-03-01",
				RepeatFrequency: models.RepeatWeekly,
				RepeatInterval:  2,
				RepeatDays:      []string{"Fri"},
			},
			date: "2024-03-08",
			want: false,
		},
		{
			name: "biweekly hits the on week",
			event: models.Event{
				Date:            "2024-03-01",
				RepeatFrequency: models.RepeatWeekly,
				RepeatInterval:  2,
				RepeatDays:      []string{"Fri"},
			},
			date: "2024-03-15",
			want: true,
		},
		{
			name: "monthly hits the day of month",
			event: models.Event{
				Date:             "2024-01-15",
				RepeatFrequency:  models.RepeatMonthly,
				RepeatInterval:   1,
				RepeatDayOfMonth: 15,
			},
			date: "2024-03-15",
			want: true,
		},
		{
			name: "monthly skips other days",
			event: models.Event{
				Date:             "2024-01-15",
				RepeatFrequency:  models.RepeatMonthly,
				RepeatInterval:   1,
				RepeatDayOfMonth: 15,
			},
			date: "2024-03-14",
			want: false,
		},
		{
			name: "zero interval treated as one",
			event: models.Event{
				Date:            "2024-03-01",
				RepeatFrequency: models.RepeatDaily,
				RepeatInterval:  0,
			},
			date: "2024-03-02",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OccursOn(tt.event, day(t, tt.date))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOccursOnPaddingCell(t *testing.T) {
	event := models.Event{
		Date:            "2024-03-01",
		RepeatFrequency: models.RepeatDaily,
		RepeatInterval:  1,
	}
	assert.False(t, OccursOn(event, time.Time{}))
}

func TestExpandOccurrencesWeeklyMarch(t *testing.T) {
	event := models.Event{
		Model:           eventModel(1),
		Title:           "Soccer practice",
		Date:            "2024-03-01",
		RepeatFrequency: models.RepeatWeekly,
		RepeatInterval:  1,
		RepeatDays:      []string{"Mon", "Fri"},
	}

	grid := MonthGrid(2024, time.March)
	occurrences := ExpandOccurrences([]models.Event{event}, grid)

	wantDates := []string{
		"2024-03-01", // base date, a Friday
		"2024-03-04", "2024-03-08",
		"2024-03-11", "2024-03-15",
		"2024-03-18", "2024-03-22",
		"2024-03-25", "2024-03-29",
	}
	assert.Len(t, occurrences, len(wantDates))
	for _, date := range wantDates {
		assert.Len(t, occurrences[date], 1, "expected occurrence on %s", date)
	}
	assert.Empty(t, occurrences["2024-03-05"])
}

func TestExpandOccurrencesDedupOnBaseDate(t *testing.T) {
	// Base date is a listed weekday: the rule and the base-date special
	// case both match, but the event must appear once.
	event := models.Event{
		Model:           eventModel(7),
		Date:            "2024-03-04", // a Monday
		RepeatFrequency: models.RepeatWeekly,
		RepeatInterval:  1,
		RepeatDays:      []string{"Mon"},
	}

	grid := MonthGrid(2024, time.March)
	occurrences := ExpandOccurrences([]models.Event{event}, grid)

	require.Len(t, occurrences["2024-03-04"], 1)
}

func TestExpandOccurrencesMultipleEvents(t *testing.T) {
	events := []models.Event{
		{Model: eventModel(1), Date: "2024-03-10"},
		{
			Model:            eventModel(2),
			Date:             "2024-01-10",
			RepeatFrequency:  models.RepeatMonthly,
			RepeatInterval:   1,
			RepeatDayOfMonth: 10,
		},
	}

	grid := MonthGrid(2024, time.March)
	occurrences := ExpandOccurrences(events, grid)

	require.Len(t, occurrences["2024-03-10"], 2)
	assert.Equal(t, uint(1), occurrences["2024-03-10"][0].ID)
	assert.Equal(t, uint(2), occurrences["2024-03-10"][1].ID)
}
