package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/cookbook"
	"github.com/dmitrijs2005/recipekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	validToken = "valid-access-token"
	callerUID  = int64(7)
)

type fakeUsers struct {
	registerFn    func(email, password string) (*models.User, error)
	loginFn       func(email, password string) (*models.User, *services.TokenPair, error)
	refreshFn     func(token string) (*services.TokenPair, error)
	currentUserFn func(id int64) (*models.User, error)

	loggedOut    *auth.Claims
	loggedOutRT  string
	logoutCalled bool
}

func (f *fakeUsers) Register(_ context.Context, email, password string) (*models.User, error) {
	return f.registerFn(email, password)
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*models.User, *services.TokenPair, error) {
	return f.loginFn(email, password)
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	return f.refreshFn(token)
}

func (f *fakeUsers) Logout(_ context.Context, claims *auth.Claims, refreshToken string) error {
	f.logoutCalled = true
	f.loggedOut = claims
	f.loggedOutRT = refreshToken
	return nil
}

func (f *fakeUsers) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	if token != validToken {
		return nil, common.ErrInvalidToken
	}
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1"},
		UserID:           callerUID,
	}, nil
}

func (f *fakeUsers) CurrentUser(_ context.Context, id int64) (*models.User, error) {
	if f.currentUserFn == nil {
		return &models.User{ID: id, Email: "cook@example.com", UserName: "cook"}, nil
	}
	return f.currentUserFn(id)
}

// fakeRecipes records the arguments of the last call and answers with the
// configured values.
type fakeRecipes struct {
	recipe  *models.Recipe
	recipes []*models.Recipe
	tags    []cookbook.TagCount
	meals   []models.Ingredient
	err     error

	gotUserID int64
	gotID     int64
	gotPatch  cookbook.Patch
	gotQuery  cookbook.Query
	gotText   string
	gotIDs    []int64
}

func (f *fakeRecipes) Create(_ context.Context, userID int64, p cookbook.Patch) (*models.Recipe, error) {
	f.gotUserID, f.gotPatch = userID, p
	return f.recipe, f.err
}

func (f *fakeRecipes) Get(_ context.Context, userID, id int64) (*models.Recipe, error) {
	f.gotUserID, f.gotID = userID, id
	return f.recipe, f.err
}

func (f *fakeRecipes) List(_ context.Context, userID int64, q cookbook.Query) ([]*models.Recipe, error) {
	f.gotUserID, f.gotQuery = userID, q
	return f.recipes, f.err
}

func (f *fakeRecipes) Update(_ context.Context, userID, id int64, p cookbook.Patch) (*models.Recipe, error) {
	f.gotUserID, f.gotID, f.gotPatch = userID, id, p
	return f.recipe, f.err
}

func (f *fakeRecipes) Delete(_ context.Context, userID, id int64) error {
	f.gotUserID, f.gotID = userID, id
	return f.err
}

func (f *fakeRecipes) AddNote(_ context.Context, userID, id int64, text string) (*models.Recipe, error) {
	f.gotUserID, f.gotID, f.gotText = userID, id, text
	if f.err != nil {
		return nil, f.err
	}
	if _, err := cookbook.AddNote(f.recipe, text); err != nil {
		return nil, err
	}
	return f.recipe, nil
}

func (f *fakeRecipes) Verify(_ context.Context, userID, id int64) (*models.Recipe, error) {
	f.gotUserID, f.gotID = userID, id
	return f.recipe, f.err
}

func (f *fakeRecipes) Tags(_ context.Context, userID int64) ([]cookbook.TagCount, error) {
	f.gotUserID = userID
	return f.tags, f.err
}

func (f *fakeRecipes) ShoppingList(_ context.Context, userID int64, ids []int64) ([]models.Ingredient, error) {
	f.gotUserID, f.gotIDs = userID, ids
	return f.meals, f.err
}

type fakeArchive struct {
	export *services.Export
	err    error
}

func (f *fakeArchive) Export(context.Context, int64) (*services.Export, error) {
	return f.export, f.err
}

type testServer struct {
	users   *fakeUsers
	recipes *fakeRecipes
	archive *fakeArchive
	handler http.Handler
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	ts := &testServer{
		users:   &fakeUsers{},
		recipes: &fakeRecipes{},
		archive: &fakeArchive{},
	}
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"http://localhost:3000"}
	}
	s := NewServer(ts.users, ts.recipes, ts.archive, metrics.New(), logging.Discard(), opts)
	ts.handler = s.Handler()
	return ts
}

// do performs a request; authenticated requests carry the valid bearer token.
func (ts *testServer) do(t *testing.T, method, target string, body any, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+validToken)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
