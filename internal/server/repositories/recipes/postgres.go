package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

const selectColumns = `id, user_id, title, rate, url, description, content,
		tags, ingredients, notes, status, original_recipe_id, created_at`

// PostgresRepository implements recipe storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type jsonColumns struct {
	tags, ingredients, notes string
}

func encodeColumns(r *models.Recipe) (jsonColumns, error) {
	var (
		c   jsonColumns
		err error
	)
	tags := r.Tags
	if tags == nil {
		tags = models.TagList{}
	}
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = models.IngredientList{}
	}
	notes := r.Notes
	if notes == nil {
		notes = []models.Note{}
	}
	if c.tags, err = models.EncodeJSONColumn(tags); err != nil {
		return c, err
	}
	if c.ingredients, err = models.EncodeJSONColumn(ingredients); err != nil {
		return c, err
	}
	if c.notes, err = models.EncodeJSONColumn(notes); err != nil {
		return c, err
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s scanner) (*models.Recipe, error) {
	var (
		r        models.Recipe
		c        jsonColumns
		status   string
		original sql.NullInt64
	)
	if err := s.Scan(&r.ID, &r.UserID, &r.Title, &r.Rate, &r.URL, &r.Description, &r.Content,
		&c.tags, &c.ingredients, &c.notes, &status, &original, &r.CreatedAt); err != nil {
		return nil, err
	}

	if err := models.DecodeJSONColumn(c.tags, &r.Tags); err != nil {
		return nil, fmt.Errorf("recipe %d tags: %w", r.ID, err)
	}
	if err := models.DecodeJSONColumn(c.ingredients, &r.Ingredients); err != nil {
		return nil, fmt.Errorf("recipe %d ingredients: %w", r.ID, err)
	}
	if err := models.DecodeJSONColumn(c.notes, &r.Notes); err != nil {
		return nil, fmt.Errorf("recipe %d notes: %w", r.ID, err)
	}

	st, ok := models.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: recipe %d has status %q", common.ErrorIncorrectData, r.ID, status)
	}
	r.Status = st

	if original.Valid {
		id := original.Int64
		r.OriginalRecipeID = &id
	}
	return &r, nil
}

func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	c, err := encodeColumns(recipe)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO recipes (user_id, title, rate, url, description, content,
			tags, ingredients, notes, status, original_recipe_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	var original sql.NullInt64
	if recipe.OriginalRecipeID != nil {
		original = sql.NullInt64{Int64: *recipe.OriginalRecipeID, Valid: true}
	}

	err = r.db.QueryRowContext(ctx, query,
		recipe.UserID, recipe.Title, recipe.Rate, recipe.URL, recipe.Description, recipe.Content,
		c.tags, c.ingredients, c.notes, string(recipe.Status), original, recipe.CreatedAt,
	).Scan(&recipe.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipe, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	query := `SELECT ` + selectColumns + ` FROM recipes
		WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	query := `SELECT ` + selectColumns + ` FROM recipes
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`
	return r.getOne(ctx, query, id, userID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, id, userID int64) (*models.Recipe, error) {
	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if errors.Is(err, common.ErrorIncorrectData) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipe, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Recipe, error) {
	query := `SELECT ` + selectColumns + ` FROM recipes
		WHERE user_id = $1
		ORDER BY id`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.Recipe, error) {
	if len(ids) == 0 {
		return []*models.Recipe{}, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	placeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + selectColumns + ` FROM recipes
		WHERE user_id = $1 AND id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY id`
	return r.list(ctx, query, args...)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipes: %w", err)
	}
	defer rows.Close()

	result := []*models.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	c, err := encodeColumns(recipe)
	if err != nil {
		return err
	}

	query := `
		UPDATE recipes SET
			title = $1, rate = $2, url = $3, description = $4, content = $5,
			tags = $6, ingredients = $7, notes = $8, status = $9
		WHERE id = $10 AND user_id = $11
	`
	res, err := r.db.ExecContext(ctx, query,
		recipe.Title, recipe.Rate, recipe.URL, recipe.Description, recipe.Content,
		c.tags, c.ingredients, c.notes, string(recipe.Status),
		recipe.ID, recipe.UserID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM recipes WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
