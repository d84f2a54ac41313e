package models

import (
	"time"

	"gorm.io/gorm"
)

// Member roles within a circle. The owner role is assigned automatically
// when a circle is created; invited users join as editors.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
	RoleMember = "member"
)

// Invite lifecycle states
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRevoked  = "revoked"
)

// Circle is a named group of users sharing events, notifications and a
// family roster
type Circle struct {
	gorm.Model
	Name    string `gorm:"not null" json:"name"`
	OwnerID uint   `gorm:"not null;index" json:"owner_id"`

	// Relations
	Members []CircleMember `gorm:"foreignKey:CircleID" json:"members,omitempty"`
	Invites []CircleInvite `gorm:"foreignKey:CircleID" json:"invites,omitempty"`
}

// CircleMember links a user to a circle with a role. One row per
// (circle, user) pair.
type CircleMember struct {
	gorm.Model
	CircleID uint   `gorm:"not null;uniqueIndex:idx_circle_user" json:"circle_id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_circle_user" json:"user_id"`
	Role     string `gorm:"default:'member'" json:"role"` // owner, editor, viewer, member

	// Relations
	Circle Circle `json:"-"`
	User   User   `json:"-"`
}

// CircleInvite is a single-use email invitation to join a circle. The
// email delivery fields drive the invite worker's retry loop.
type CircleInvite struct {
	gorm.Model
	CircleID  uint   `gorm:"not null;index" json:"circle_id"`
	Email     string `gorm:"not null" json:"email"`
	Token     string `gorm:"uniqueIndex;not null" json:"token"`
	Status    string `gorm:"default:'pending'" json:"status"` // pending, accepted, revoked
	InvitedBy uint   `gorm:"not null" json:"invited_by"`

	// Email delivery state
	EmailSentAt   *time.Time `json:"email_sent_at,omitempty"`
	EmailAttempts int        `gorm:"default:0" json:"email_attempts"`
	LastError     string     `json:"last_error,omitempty"`

	// Relations
	Circle Circle `json:"-"`
}
