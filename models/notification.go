package models

import "gorm.io/gorm"

// Notification is a message visible to every member of its circle.
// ReadBy accumulates the IDs of users who acknowledged it and only ever
// grows; appends are idempotent per user.
type Notification struct {
	gorm.Model
	CircleID uint   `gorm:"not null;index" json:"circle_id"`
	Message  string `gorm:"not null" json:"message"`
	ReadBy   []uint `gorm:"serializer:json" json:"read_by"`

	// Relations
	Circle Circle `json:"-"`
}

// IsReadBy reports whether the given user has acknowledged the
// notification.
func (n *Notification) IsReadBy(userID uint) bool {
	for _, id := range n.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
