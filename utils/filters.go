package utils

import (
	"strings"

	"tribeconnect/models"
)

// FilterResources narrows a resource list by free-text query and
// category. The query matches title, description or any tag, case
// insensitively; an empty or "all" category matches everything.
func FilterResources(resources []models.Resource, query, category string) []models.Resource {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		if !categoryMatches(r.Category, category) {
			continue
		}
		if query != "" && !resourceMatches(r, query) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// FilterMapPoints narrows map pins the same way, matching the query
// against title and description.
func FilterMapPoints(points []models.MapPoint, query, category string) []models.MapPoint {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]models.MapPoint, 0, len(points))
	for _, p := range points {
		if !categoryMatches(p.Category, category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func categoryMatches(have, want string) bool {
	return want == "" || want == "all" || have == want
}

func resourceMatches(r models.Resource, query string) bool {
	if strings.Contains(strings.ToLower(r.Title), query) ||
		strings.Contains(strings.ToLower(r.Description), query) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
