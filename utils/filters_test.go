package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tribeconnect/models"
)

func testResources() []models.Resource {
	return []models.Resource{
		{
			Model:       gorm.Model{ID: 1},
			Title:       "Traditional Medicine Guide",
			Description: "Medicinal plants and their uses",
			Category:    "health",
			Tags:        []string{"medicine", "traditional", "healing"},
		},
		{
			Model:       gorm.Model{ID: 2},
			Title:       "Language Learning Workbook",
			Description: "Exercises and audio guides",
			Category:    "language",
			Tags:        []string{"language", "education"},
		},
		{
			Model:       gorm.Model{ID: 3},
			Title:       "Cultural Preservation Guidelines",
			Description: "Documenting cultural heritage",
			Category:    "cultural",
			Tags:        []string{"culture"},
		},
	}
}

func TestFilterResources(t *testing.T) {
	resources := testResources()

	t.Run("no filters returns everything", func(t *testing.T) {
		assert.Len(t, FilterResources(resources, "", ""), 3)
		assert.Len(t, FilterResources(resources, "", "all"), 3)
	})

	t.Run("category filter", func(t *testing.T) {
		got := FilterResources(resources, "", "health")
		require.Len(t, got, 1)
		assert.Equal(t, uint(1), got[0].ID)
	})

	t.Run("query matches title case-insensitively", func(t *testing.T) {
		got := FilterResources(resources, "WORKBOOK", "")
		require.Len(t, got, 1)
		assert.Equal(t, uint(2), got[0].ID)
	})

	t.Run("query matches tags", func(t *testing.T) {
		got := FilterResources(resources, "healing", "")
		require.Len(t, got, 1)
		assert.Equal(t, uint(1), got[0].ID)
	})

	t.Run("query and category combine", func(t *testing.T) {
		assert.Empty(t, FilterResources(resources, "healing", "language"))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, FilterResources(resources, "astronomy", ""))
	})
}

func TestFilterMapPoints(t *testing.T) {
	points := []models.MapPoint{
		{
			Model:       gorm.Model{ID: 1},
			Title:       "Tribal Cultural Center",
			Description: "Main community gathering place",
			Category:    "cultural",
		},
		{
			Model:       gorm.Model{ID: 2},
			Title:       "Heritage Museum",
			Description: "Artifacts and history",
			Category:    "historical",
		},
	}

	assert.Len(t, FilterMapPoints(points, "", ""), 2)

	got := FilterMapPoints(points, "gathering", "")
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)

	got = FilterMapPoints(points, "", "historical")
	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)

	assert.Empty(t, FilterMapPoints(points, "museum", "cultural"))
}
