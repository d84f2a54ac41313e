package utils

import (
	"sort"

	"tribeconnect/models"
)

// VisibleNotifications filters notifications down to the user's joined
// circles and orders them newest first. Read state never affects
// visibility.
func VisibleNotifications(notifs []models.Notification, joinedCircleIDs []uint) []models.Notification {
	joined := make(map[uint]struct{}, len(joinedCircleIDs))
	for _, id := range joinedCircleIDs {
		joined[id] = struct{}{}
	}

	visible := make([]models.Notification, 0, len(notifs))
	for _, n := range notifs {
		if _, ok := joined[n.CircleID]; ok {
			visible = append(visible, n)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return visible
}

// AppendReader adds the user to a readBy list. Idempotent: marking a
// notification read twice leaves the list unchanged.
func AppendReader(readBy []uint, userID uint) []uint {
	for _, id := range readBy {
		if id == userID {
			return readBy
		}
	}
	return append(readBy, userID)
}

// HasUnread reports whether any of the notifications is unread for the
// user. Feed it the output of VisibleNotifications.
func HasUnread(notifs []models.Notification, userID uint) bool {
	for i := range notifs {
		if !notifs[i].IsReadBy(userID) {
			return true
		}
	}
	return false
}
