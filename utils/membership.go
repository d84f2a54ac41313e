package utils

import "tribeconnect/models"

// CircleSummary is the joined-circle view returned to clients.
type CircleSummary struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	OwnerID uint   `json:"owner_id"`
}

// IsJoined reports whether the user owns the circle or has a member row
// in it. Ownership counts even without an explicit member row.
func IsJoined(userID uint, circle models.Circle) bool {
	if circle.OwnerID == userID {
		return true
	}
	for _, m := range circle.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// ResolveJoinedCircles returns the circles the user owns or belongs to,
// at most one entry per circle. Callers must load circles with their
// member rows in a single query so a fetch failure aborts the whole
// resolution instead of silently dropping circles.
func ResolveJoinedCircles(userID uint, circles []models.Circle) []CircleSummary {
	joined := make([]CircleSummary, 0, len(circles))
	for _, c := range circles {
		if IsJoined(userID, c) {
			joined = append(joined, CircleSummary{
				ID:      c.ID,
				Name:    c.Name,
				OwnerID: c.OwnerID,
			})
		}
	}
	return joined
}

// JoinedCircleIDs is ResolveJoinedCircles reduced to the ID set.
func JoinedCircleIDs(userID uint, circles []models.Circle) []uint {
	summaries := ResolveJoinedCircles(userID, circles)
	ids := make([]uint, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
	}
	return ids
}
