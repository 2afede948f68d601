package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/cookbook"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

const timeLayout = "2006-01-02 15:04"

const maxBodyBytes = 1 << 20

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type noteRequest struct {
	Text string `json:"text"`
}

// recipeRequest is the body of create and update calls. Absent fields stay
// nil so updates are partial.
type recipeRequest struct {
	Title       *string                `json:"title"`
	Rate        *int                   `json:"rate"`
	URL         *string                `json:"url"`
	Description *string                `json:"description"`
	Content     *string                `json:"content"`
	Tags        *[]string              `json:"tags"`
	Ingredients *models.IngredientList `json:"ingredients"`
}

func (req recipeRequest) patch() cookbook.Patch {
	p := cookbook.Patch{
		Title:       req.Title,
		Rate:        req.Rate,
		URL:         req.URL,
		Description: req.Description,
		Content:     req.Content,
		Ingredients: req.Ingredients,
	}
	if req.Tags != nil {
		tags := models.NewTagList(*req.Tags)
		p.Tags = &tags
	}
	return p
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	UserName string `json:"username"`
}

type loginResponse struct {
	userResponse
	tokenResponse
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type recipeSummary struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Rate        int           `json:"rate"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags"`
	Status      models.Status `json:"status"`
	CreatedAt   string        `json:"created_at"`
}

type recipeResponse struct {
	ID               int64               `json:"id"`
	Title            string              `json:"title"`
	Rate             int                 `json:"rate"`
	URL              string              `json:"url"`
	Description      string              `json:"description"`
	Content          string              `json:"content"`
	Tags             []string            `json:"tags"`
	Ingredients      []models.Ingredient `json:"ingredients"`
	Notes            []models.Note       `json:"notes"`
	Status           models.Status       `json:"status"`
	OriginalRecipeID *int64              `json:"original_recipe_id,omitempty"`
	CreatedAt        string              `json:"created_at"`
}

type tagResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, UserName: u.UserName}
}

func newRecipeSummary(r *models.Recipe) recipeSummary {
	return recipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		Rate:        r.Rate,
		Description: r.Description,
		Tags:        r.Tags.Strings(),
		Status:      r.Status,
		CreatedAt:   formatTime(r.CreatedAt),
	}
}

func newRecipeResponse(r *models.Recipe) recipeResponse {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = models.IngredientList{}
	}
	notes := r.Notes
	if notes == nil {
		notes = []models.Note{}
	}
	return recipeResponse{
		ID:               r.ID,
		Title:            r.Title,
		Rate:             r.Rate,
		URL:              r.URL,
		Description:      r.Description,
		Content:          r.Content,
		Tags:             r.Tags.Strings(),
		Ingredients:      ingredients,
		Notes:            notes,
		Status:           r.Status,
		OriginalRecipeID: r.OriginalRecipeID,
		CreatedAt:        formatTime(r.CreatedAt),
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	if errors.Is(err, common.ErrorIncorrectData) {
		return err
	}
	return common.ValidationError("Invalid JSON")
}

func recipeIDParam(ps httprouter.Params) (int64, error) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrorNotFound
	}
	return id, nil
}

// parseRecipeIDs parses the comma separated recipe_ids parameter.
func parseRecipeIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, common.ValidationError("Invalid recipe_ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseListQuery(r *http.Request) cookbook.Query {
	q := r.URL.Query()
	return cookbook.Query{
		Tags:   cookbook.ParseTagsParam(q.Get("tags")),
		Tag:    models.Tag(strings.TrimSpace(q.Get("tag"))),
		Status: q.Get("type"),
	}
}

func callerID(r *http.Request) (int64, error) {
	c := claimsFromContext(r.Context())
	if c == nil {
		return 0, fmt.Errorf("no caller identity: %w", common.ErrorUnauthorized)
	}
	return c.UserID, nil
}
