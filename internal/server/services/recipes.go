package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/cookbook"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
)

// RecipeService runs the recipe operations of one caller. Every method takes
// the caller's user id and never sees recipes of other users: those are
// reported as common.ErrorNotFound, the same as missing ones.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *RecipeService {
	return &RecipeService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "recipes"),
		now:         time.Now,
	}
}

func (s *RecipeService) Create(ctx context.Context, userID int64, p cookbook.Patch) (*models.Recipe, error) {
	recipe, err := cookbook.NewRecipe(userID, p, s.now())
	if err != nil {
		return nil, err
	}

	recipe, err = s.repomanager.Recipes(s.db).Create(ctx, recipe)
	if err != nil {
		return nil, fmt.Errorf("error creating recipe: %w", err)
	}

	s.logger.Info(ctx, "recipe created", "user_id", userID, "recipe_id", recipe.ID)
	return recipe, nil
}

func (s *RecipeService) Get(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	return s.repomanager.Recipes(s.db).Get(ctx, userID, id)
}

// List returns the caller's recipes matching q, best rated first.
func (s *RecipeService) List(ctx context.Context, userID int64, q cookbook.Query) ([]*models.Recipe, error) {
	all, err := s.repomanager.Recipes(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing recipes: %w", err)
	}
	return cookbook.Filter(all, q), nil
}

// Update applies p under a row lock. Any update turns a verified recipe
// back into a saved one.
func (s *RecipeService) Update(ctx context.Context, userID, id int64, p cookbook.Patch) (*models.Recipe, error) {
	var updated *models.Recipe

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		recipe, err := repo.GetForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := cookbook.Update(recipe, p); err != nil {
			return err
		}
		if err := repo.Update(ctx, recipe); err != nil {
			return err
		}
		updated = recipe
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *RecipeService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repomanager.Recipes(s.db).Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "recipe deleted", "user_id", userID, "recipe_id", id)
	return nil
}

// AddNote appends a note under a row lock so concurrent notes on the same
// recipe get distinct ids.
func (s *RecipeService) AddNote(ctx context.Context, userID, id int64, text string) (*models.Recipe, error) {
	var updated *models.Recipe

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		recipe, err := repo.GetForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if _, err := cookbook.AddNote(recipe, text); err != nil {
			return err
		}
		if err := repo.Update(ctx, recipe); err != nil {
			return err
		}
		updated = recipe
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Verify stores a verified copy of recipe id built from its notes. The
// source row is read and the copy inserted within one snapshot transaction.
func (s *RecipeService) Verify(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	var verified *models.Recipe

	err := dbx.WithTx(ctx, s.db, dbx.Snapshot, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		src, err := repo.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		verified, err = repo.Create(ctx, cookbook.Verify(src, s.now()))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "recipe verified", "user_id", userID, "recipe_id", id, "verified_id", verified.ID)
	return verified, nil
}

func (s *RecipeService) Tags(ctx context.Context, userID int64) ([]cookbook.TagCount, error) {
	all, err := s.repomanager.Recipes(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing recipes: %w", err)
	}
	return cookbook.TagCounts(all), nil
}

// ShoppingList aggregates the ingredients of the caller's recipes among ids.
// Unknown or foreign ids are skipped and repeated ids count once.
func (s *RecipeService) ShoppingList(ctx context.Context, userID int64, ids []int64) ([]models.Ingredient, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := s.repomanager.Recipes(s.db).ListByIDs(ctx, userID, unique)
	if err != nil {
		return nil, fmt.Errorf("error loading recipes: %w", err)
	}

	byID := make(map[int64]*models.Recipe, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	ordered := make([]*models.Recipe, 0, len(found))
	for _, id := range unique {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}

	return cookbook.Aggregate(ordered), nil
}
