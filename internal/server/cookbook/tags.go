package cookbook

import (
	"cmp"
	"slices"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// TagCount is a tag together with the number of recipes carrying it.
type TagCount struct {
	Name  models.Tag
	Count int
}

// TagCounts returns every distinct tag of recipes with the number of recipes
// whose tag set contains it. Membership is exact: "pasta" never counts a
// recipe tagged only "pastamaker".
//
// Results are ordered by count (descending), then by name.
func TagCounts(recipes []*models.Recipe) []TagCount {
	counts := make(map[models.Tag]int)

	for _, r := range recipes {
		if r == nil {
			continue
		}
		// a recipe counts once per tag even if its list repeats it
		seen := make(map[models.Tag]struct{}, len(r.Tags))
		for _, t := range r.Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			counts[t]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TagCount{Name: name, Count: n})
	}

	slices.SortFunc(out, func(a, b TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return out
}
