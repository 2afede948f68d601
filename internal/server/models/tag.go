package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
)

// Tag is a user-assigned recipe label. Tags compare exactly.
type Tag string

// TagList is a recipe's tag set. The slice keeps insertion order for
// serialization; membership is what matters.
type TagList []Tag

// NewTagList builds a TagList from raw strings, dropping blanks and
// duplicates while keeping first-seen order.
func NewTagList(raw []string) TagList {
	out := make(TagList, 0, len(raw))
	seen := make(map[Tag]struct{}, len(raw))
	for _, s := range raw {
		t := Tag(strings.TrimSpace(s))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Contains reports exact set membership.
func (l TagList) Contains(t Tag) bool {
	for _, x := range l {
		if x == t {
			return true
		}
	}
	return false
}

// Strings returns the tags as plain strings.
func (l TagList) Strings() []string {
	out := make([]string, len(l))
	for i, t := range l {
		out[i] = string(t)
	}
	return out
}

func (l *TagList) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: tags must be a list of strings: %v", common.ErrorIncorrectData, err)
	}
	*l = NewTagList(raw)
	return nil
}
