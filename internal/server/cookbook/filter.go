package cookbook

import (
	"cmp"
	"slices"
	"strings"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// Query describes a recipe listing filter. Zero values mean "no filter".
type Query struct {
	// Tags must all be present on a recipe.
	Tags []models.Tag
	// Tag is a single extra required tag.
	Tag models.Tag
	// Status is matched exactly against saved/verified; unknown values are ignored.
	Status string
}

// ParseTagsParam splits a comma-separated tags parameter, dropping blanks.
func ParseTagsParam(s string) []models.Tag {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]models.Tag, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, models.Tag(p))
		}
	}
	return out
}

// Filter returns the recipes matching q, ordered by rate (highest first).
// Recipes with equal rate keep their input order. The input is not modified.
func Filter(recipes []*models.Recipe, q Query) []*models.Recipe {
	required := slices.Clone(q.Tags)
	if q.Tag != "" {
		required = append(required, q.Tag)
	}

	status, byStatus := models.ParseStatus(q.Status)

	out := make([]*models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r == nil {
			continue
		}
		if byStatus && r.Status != status {
			continue
		}
		if !hasAllTags(r, required) {
			continue
		}
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b *models.Recipe) int {
		return cmp.Compare(b.Rate, a.Rate)
	})

	return out
}

func hasAllTags(r *models.Recipe, tags []models.Tag) bool {
	for _, t := range tags {
		if !r.Tags.Contains(t) {
			return false
		}
	}
	return true
}
