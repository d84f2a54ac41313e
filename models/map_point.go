package models

import "gorm.io/gorm"

// MapPoint is a pin on the community map: cultural sites, community
// centers, services.
type MapPoint struct {
	gorm.Model
	Title       string  `gorm:"not null" json:"title"`
	Description string  `json:"description"`
	Category    string  `gorm:"index" json:"category"`
	Latitude    float64 `gorm:"not null" json:"latitude"`
	Longitude   float64 `gorm:"not null" json:"longitude"`
	CreatedBy   uint    `gorm:"not null;index" json:"created_by"`
}
