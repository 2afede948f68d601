package cookbook

import (
	"cmp"
	"slices"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

type mergeKey struct {
	name string
	unit string
}

type bucket struct {
	key mergeKey
	acc Accumulator
}

// Aggregate merges the ingredient lines of recipes into a shopping list.
//
// Lines sharing the exact (name, unit) pair are merged: integer amounts are
// summed, and the first line wins when either side is not an integer. The
// result is sorted by name, then unit. Recipes are expected to be already
// restricted to one user and to the requested ids.
func Aggregate(recipes []*models.Recipe) []models.Ingredient {
	buckets := make(map[mergeKey]*bucket)

	for _, r := range recipes {
		if r == nil {
			continue
		}
		for _, item := range r.Ingredients {
			key := mergeKey{name: item.Name, unit: item.Unit}
			incoming := Coerce(item.Amount)

			b, ok := buckets[key]
			if !ok {
				buckets[key] = &bucket{key: key, acc: incoming}
				continue
			}

			if b.acc.Numeric() && incoming.Numeric() {
				b.acc = b.acc.add(incoming)
				continue
			}

			b.acc = keepFirstOnOpaqueConflict(b.acc, incoming)
		}
	}

	out := make([]models.Ingredient, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, models.Ingredient{Name: b.key.name, Amount: b.acc.Amount(), Unit: b.key.unit})
	}

	slices.SortFunc(out, func(a, b models.Ingredient) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Unit, b.Unit)
	})

	return out
}

// keepFirstOnOpaqueConflict resolves a repeated (name, unit) line when either
// amount is not an integer: the bucket keeps its first value and the later
// line is dropped.
func keepFirstOnOpaqueConflict(current, _ Accumulator) Accumulator {
	return current
}
