package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tribeconnect/models"
)

func notification(id, circleID uint, age time.Duration, readBy ...uint) models.Notification {
	return models.Notification{
		Model: gorm.Model{
			ID:        id,
			CreatedAt: time.Now().Add(-age),
		},
		CircleID: circleID,
		Message:  "hello",
		ReadBy:   readBy,
	}
}

func TestVisibleNotifications(t *testing.T) {
	notifs := []models.Notification{
		notification(1, 10, 3*time.Hour),
		notification(2, 20, 2*time.Hour), // circle not joined
		notification(3, 10, 1*time.Hour),
		notification(4, 30, 4*time.Hour),
	}

	visible := VisibleNotifications(notifs, []uint{10, 30})

	require.Len(t, visible, 3)
	// Newest first
	assert.Equal(t, uint(3), visible[0].ID)
	assert.Equal(t, uint(1), visible[1].ID)
	assert.Equal(t, uint(4), visible[2].ID)
}

func TestVisibleNotificationsReadStateIgnored(t *testing.T) {
	// Read notifications stay visible; only membership filters
	notifs := []models.Notification{
		notification(1, 10, time.Hour, 7),
	}

	visible := VisibleNotifications(notifs, []uint{10})
	require.Len(t, visible, 1)
	assert.True(t, visible[0].IsReadBy(7))
}

func TestVisibleNotificationsNoCircles(t *testing.T) {
	notifs := []models.Notification{notification(1, 10, time.Hour)}

	assert.Empty(t, VisibleNotifications(notifs, nil))
}

func TestAppendReader(t *testing.T) {
	readBy := AppendReader(nil, 5)
	assert.Equal(t, []uint{5}, readBy)

	readBy = AppendReader(readBy, 8)
	assert.Equal(t, []uint{5, 8}, readBy)

	// Idempotent
	readBy = AppendReader(readBy, 5)
	assert.Equal(t, []uint{5, 8}, readBy)
}

func TestHasUnread(t *testing.T) {
	tests := []struct {
		name   string
		notifs []models.Notification
		userID uint
		want   bool
	}{
		{
			name:   "no notifications",
			notifs: nil,
			userID: 1,
			want:   false,
		},
		{
			name: "all read",
			notifs: []models.Notification{
				notification(1, 10, time.Hour, 1, 2),
				notification(2, 10, time.Hour, 1),
			},
			userID: 1,
			want:   false,
		},
		{
			name: "one unread",
			notifs: []models.Notification{
				notification(1, 10, time.Hour, 1),
				notification(2, 10, time.Hour, 2),
			},
			userID: 1,
			want:   true,
		},
		{
			name: "read by others only",
			notifs: []models.Notification{
				notification(1, 10, time.Hour, 2, 3),
			},
			userID: 1,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasUnread(tt.notifs, tt.userID))
		})
	}
}
