package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
)

// Status is the lifecycle state of a recipe.
type Status string

const (
	StatusSaved    Status = "saved"
	StatusVerified Status = "verified"
)

// ParseStatus matches s against the known statuses, case-sensitively.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusSaved, StatusVerified:
		return Status(s), true
	}
	return "", false
}

const (
	MinRate     = 1
	MaxRate     = 5
	DefaultRate = 5
)

// Note is a free-text annotation embedded in its recipe. IDs are unique
// within the recipe and never reused.
type Note struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Recipe is a user's recipe. The JSON form is the one used for exports.
type Recipe struct {
	ID               int64          `json:"id"`
	UserID           int64          `json:"user_id"`
	Title            string         `json:"title"`
	Rate             int            `json:"rate"`
	URL              string         `json:"url"`
	Description      string         `json:"description"`
	Content          string         `json:"content"`
	Tags             TagList        `json:"tags"`
	Ingredients      IngredientList `json:"ingredients"`
	Notes            []Note         `json:"notes"`
	Status           Status         `json:"status"`
	OriginalRecipeID *int64         `json:"original_recipe_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Validate checks the fields every stored recipe must satisfy.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return common.ValidationError("Need title")
	}
	if r.Rate < MinRate || r.Rate > MaxRate {
		return common.ValidationError("rate must be between %d and %d", MinRate, MaxRate)
	}
	for n, item := range r.Ingredients {
		if err := item.Validate(); err != nil {
			return common.ValidationError("ingredient %d: name is required", n)
		}
	}
	return nil
}

// EncodeJSONColumn renders v for a JSON text column.
func EncodeJSONColumn(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorIncorrectData, err)
	}
	return string(b), nil
}

// DecodeJSONColumn parses a JSON text column into v. Empty columns decode as
// the zero value.
func DecodeJSONColumn(s string, v any) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		if isIncorrectData(err) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrorIncorrectData, err)
	}
	return nil
}
