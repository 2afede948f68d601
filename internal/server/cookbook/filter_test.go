package cookbook

import (
	"testing"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func ids(recipes []*models.Recipe) []int64 {
	out := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}

func TestParseTagsParam(t *testing.T) {
	tests := []struct {
		in   string
		want []models.Tag
	}{
		{in: "", want: nil},
		{in: "  ", want: nil},
		{in: "italian", want: []models.Tag{"italian"}},
		{in: "italian, pasta", want: []models.Tag{"italian", "pasta"}},
		{in: ",italian,,pasta,", want: []models.Tag{"italian", "pasta"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTagsParam(tt.in))
		})
	}
}

func TestFilter(t *testing.T) {
	verified := tagged(5, 2, "italian", "pasta")
	verified.Status = models.StatusVerified
	in := append(fourRecipes(), verified)

	tests := []struct {
		name string
		q    Query
		want []int64
	}{
		{name: "no filter orders by rate", q: Query{}, want: []int64{1, 4, 2, 3, 5}},
		{name: "all tags required", q: Query{Tags: []models.Tag{"italian", "pasta"}}, want: []int64{1, 2, 5}},
		{name: "single tag", q: Query{Tag: "dinner"}, want: []int64{1, 3}},
		{name: "tags and tag combine", q: Query{Tags: []models.Tag{"italian"}, Tag: "dinner"}, want: []int64{1}},
		{name: "no substring match", q: Query{Tag: "ital"}, want: []int64{}},
		{name: "saved only", q: Query{Tags: []models.Tag{"pasta"}, Status: "saved"}, want: []int64{1, 2}},
		{name: "verified only", q: Query{Status: "verified"}, want: []int64{5}},
		{name: "unknown status ignored", q: Query{Tag: "pasta", Status: "Verified"}, want: []int64{1, 2, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(in, tt.q)))
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	q := Query{Tags: []models.Tag{"italian", "pasta"}}
	once := Filter(fourRecipes(), q)
	twice := Filter(once, q)

	assert.Equal(t, ids(once), ids(twice))
	assert.Len(t, once, 2)
}

func TestFilter_DoesNotReorderInput(t *testing.T) {
	in := fourRecipes()
	_ = Filter(in, Query{})

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(in))
}
