package cookbook

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

const (
	// VerifiedTitleSuffix is appended to the title of a verified copy.
	VerifiedTitleSuffix = " (verified)"
	// NotesSeparator separates a recipe's content from its rendered notes.
	NotesSeparator = "\n\n"
)

// Patch carries the fields of a create or update request. Nil fields are
// left untouched.
type Patch struct {
	Title       *string
	Rate        *int
	URL         *string
	Description *string
	Content     *string
	Tags        *models.TagList
	Ingredients *models.IngredientList
}

func (p Patch) apply(r *models.Recipe) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Rate != nil {
		r.Rate = *p.Rate
	}
	if p.URL != nil {
		r.URL = *p.URL
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Content != nil {
		r.Content = *p.Content
	}
	if p.Tags != nil {
		r.Tags = slices.Clone(*p.Tags)
	}
	if p.Ingredients != nil {
		r.Ingredients = slices.Clone(*p.Ingredients)
	}
}

// NewRecipe builds a saved recipe owned by userID from p. The rate defaults
// to 5 and a title is required.
func NewRecipe(userID int64, p Patch, now time.Time) (*models.Recipe, error) {
	r := &models.Recipe{
		UserID:      userID,
		Rate:        models.DefaultRate,
		Tags:        models.TagList{},
		Ingredients: models.IngredientList{},
		Status:      models.StatusSaved,
		CreatedAt:   now,
	}
	p.apply(r)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Update applies p to r. Only the fields present in p change, and any update
// of a verified recipe turns it back into a saved one. r is left untouched
// when the result would be invalid.
func Update(r *models.Recipe, p Patch) error {
	next := *r
	p.apply(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	next.Status = models.StatusSaved
	*r = next
	return nil
}

// AddNote appends a note to r with the next free id and demotes a verified
// recipe to saved.
func AddNote(r *models.Recipe, text string) (models.Note, error) {
	if strings.TrimSpace(text) == "" {
		return models.Note{}, common.ValidationError("Need text")
	}

	note := models.Note{ID: nextNoteID(r.Notes), Text: text}
	r.Notes = append(r.Notes, note)
	r.Status = models.StatusSaved
	return note, nil
}

func nextNoteID(notes []models.Note) int {
	maxID := 0
	for _, n := range notes {
		maxID = max(maxID, n.ID)
	}
	return maxID + 1
}

// Verify derives a new verified recipe from src. The notes of src are
// rendered into the copy's content and the copy starts without notes.
// src itself is not modified.
func Verify(src *models.Recipe, now time.Time) *models.Recipe {
	original := src.ID

	content := src.Content
	if block := RenderNotes(src.Notes); block != "" {
		if content != "" {
			content += NotesSeparator
		}
		content += block
	}

	return &models.Recipe{
		UserID:           src.UserID,
		Title:            src.Title + VerifiedTitleSuffix,
		Rate:             src.Rate,
		URL:              src.URL,
		Description:      src.Description,
		Content:          content,
		Tags:             slices.Clone(src.Tags),
		Ingredients:      slices.Clone(src.Ingredients),
		Notes:            []models.Note{},
		Status:           models.StatusVerified,
		OriginalRecipeID: &original,
		CreatedAt:        now,
	}
}

// RenderNotes renders notes as "Note {id}: {text}" lines in ascending id
// order.
func RenderNotes(notes []models.Note) string {
	sorted := slices.Clone(notes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	lines := make([]string, 0, len(sorted))
	for _, n := range sorted {
		lines = append(lines, "Note "+strconv.Itoa(n.ID)+": "+n.Text)
	}
	return strings.Join(lines, "\n")
}
