// Package recipes stores recipes with their tags, ingredients and notes.
// Every read and write is scoped to the owning user; a recipe of another
// user is reported as common.ErrorNotFound.
package recipes

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

type Repository interface {
	// Create inserts recipe and fills in the generated ID.
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	Get(ctx context.Context, userID, id int64) (*models.Recipe, error)
	// GetForUpdate is Get with a row lock; it must run inside a transaction.
	GetForUpdate(ctx context.Context, userID, id int64) (*models.Recipe, error)
	// ListByUser returns all recipes of userID in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]*models.Recipe, error)
	// ListByIDs returns the recipes of userID among ids. Unknown ids are skipped.
	ListByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, userID, id int64) error
}
