package models

import "gorm.io/gorm"

// FamilyMember is a roster entry scoped to a circle. These are profile
// records (children, elders, relatives), not user accounts.
type FamilyMember struct {
	gorm.Model
	CircleID uint `gorm:"not null;index" json:"circle_id"`

	Name         string  `gorm:"not null" json:"name"`
	Age          string  `json:"age,omitempty"`
	Relationship string  `json:"relationship,omitempty"` // e.g. daughter, grandfather
	PhotoURL     *string `json:"photo_url,omitempty"`

	// Relations
	Circle Circle `json:"-"`
}
