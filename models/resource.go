package models

import "gorm.io/gorm"

// Resource is a shared library document: guides, workbooks, legal
// papers. Visible to every signed-in user.
type Resource struct {
	gorm.Model
	Title       string   `gorm:"not null" json:"title"`
	Description string   `json:"description"`
	FileURL     string   `gorm:"not null" json:"file_url"`
	FileType    string   `json:"file_type"` // pdf, doc, ...
	Category    string   `gorm:"index" json:"category"`
	Tags        []string `gorm:"serializer:json" json:"tags"`
	AuthorID    uint     `gorm:"not null;index" json:"author_id"`

	// Relations
	Author User `json:"author,omitempty"`
}
