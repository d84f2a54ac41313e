package models

import "gorm.io/gorm"

// Repeat frequencies for calendar events
const (
	RepeatNone    = "none"
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

// Event is a calendar entry. It is always owned by a user; when CircleID
// is set the event is shared with every member of that circle.
//
// Date is a calendar day ("2006-01-02") and the optional start/end times
// are clock strings ("15:04"). Day comparisons throughout the calendar
// code are calendar-date equality, never instant equality.
type Event struct {
	gorm.Model
	UserID   uint  `gorm:"not null;index" json:"user_id"`
	CircleID *uint `gorm:"index" json:"circle_id,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Date        string `gorm:"not null;index" json:"date"` // YYYY-MM-DD
	StartTime   string `json:"start_time,omitempty"`       // HH:MM
	EndTime     string `json:"end_time,omitempty"`         // HH:MM
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`

	// Repeat rule. Days holds weekday names ("Mon","Wed") for weekly
	// rules; DayOfMonth applies to monthly rules.
	RepeatFrequency  string   `gorm:"default:'none'" json:"repeat_frequency"`
	RepeatInterval   int      `gorm:"default:1" json:"repeat_interval"`
	RepeatDays       []string `gorm:"serializer:json" json:"repeat_days,omitempty"`
	RepeatDayOfMonth int      `json:"repeat_day_of_month,omitempty"`

	// Last date ("2006-01-02") the reminder worker announced, so a
	// recurring event is reminded at most once per occurrence.
	RemindedFor string `json:"-"`

	// Relations
	User   User    `json:"-"`
	Circle *Circle `json:"-"`
}

// Repeats reports whether the event has an active repeat rule.
func (e *Event) Repeats() bool {
	return e.RepeatFrequency != "" && e.RepeatFrequency != RepeatNone
}
