package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"tribeconnect/models"
)

func circle(id, ownerID uint, memberIDs ...uint) models.Circle {
	c := models.Circle{
		Model:   gorm.Model{ID: id},
		Name:    "Circle",
		OwnerID: ownerID,
	}
	for _, uid := range memberIDs {
		c.Members = append(c.Members, models.CircleMember{CircleID: id, UserID: uid})
	}
	return c
}

func TestIsJoined(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		circle models.Circle
		want   bool
	}{
		{
			name:   "owner without a member row",
			userID: 1,
			circle: circle(10, 1),
			want:   true,
		},
		{
			name:   "member row",
			userID: 2,
			circle: circle(10, 1, 2, 3),
			want:   true,
		},
		{
			name:   "outsider",
			userID: 4,
			circle: circle(10, 1, 2, 3),
			want:   false,
		},
		{
			name:   "owner who also has a member row",
			userID: 1,
			circle: circle(10, 1, 1),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsJoined(tt.userID, tt.circle))
		})
	}
}

func TestResolveJoinedCircles(t *testing.T) {
	circles := []models.Circle{
		circle(1, 5),       // owned by 5
		circle(2, 9, 5),    // 5 is a member
		circle(3, 9, 6, 7), // 5 not involved
		circle(4, 5, 5),    // owned with a redundant member row
	}

	joined := ResolveJoinedCircles(5, circles)

	assert.Len(t, joined, 3)
	ids := JoinedCircleIDs(5, circles)
	assert.Equal(t, []uint{1, 2, 4}, ids)

	// Each entry carries the circle's identity
	assert.Equal(t, uint(5), joined[0].OwnerID)
	assert.Equal(t, "Circle", joined[0].Name)
}

func TestResolveJoinedCirclesNone(t *testing.T) {
	circles := []models.Circle{circle(1, 2), circle(2, 3, 4)}

	joined := ResolveJoinedCircles(99, circles)

	assert.NotNil(t, joined)
	assert.Empty(t, joined)
	assert.Empty(t, JoinedCircleIDs(99, circles))
}
