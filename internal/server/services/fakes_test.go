package services

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	recipesrepo "github.com/dmitrijs2005/recipekeeper/internal/server/repositories/recipes"
	refreshtokensrepo "github.com/dmitrijs2005/recipekeeper/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/recipekeeper/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	nextID  int64
	getErr  error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeRefreshRepo struct {
	tokens    map[string]*models.RefreshToken
	findErr   error
	createErr error
	deleted   []string
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID int64, token string, expires time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: expires}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	delete(f.tokens, token)
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, userID int64, now time.Time) (int64, error) {
	var n int64
	for k, t := range f.tokens {
		if t.UserID == userID && t.Expires.Before(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

// fakeRecipesRepo keeps deep copies so services cannot mutate stored rows
// behind the repository's back.
type fakeRecipesRepo struct {
	mu        sync.Mutex
	rows      map[int64]*models.Recipe
	nextID    int64
	createErr error
	lockedIDs []int64
}

func newFakeRecipesRepo() *fakeRecipesRepo {
	return &fakeRecipesRepo{rows: map[int64]*models.Recipe{}}
}

func clone(r *models.Recipe) *models.Recipe {
	c := *r
	c.Tags = slices.Clone(r.Tags)
	c.Ingredients = slices.Clone(r.Ingredients)
	c.Notes = slices.Clone(r.Notes)
	return &c
}

func (f *fakeRecipesRepo) seed(r *models.Recipe) *models.Recipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	f.rows[r.ID] = clone(r)
	return r
}

func (f *fakeRecipesRepo) Create(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.seed(r), nil
}

func (f *fakeRecipesRepo) Get(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return clone(r), nil
}

func (f *fakeRecipesRepo) GetForUpdate(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	f.mu.Lock()
	f.lockedIDs = append(f.lockedIDs, id)
	f.mu.Unlock()
	return f.Get(ctx, userID, id)
}

func (f *fakeRecipesRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Recipe{}
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, clone(r))
		}
	}
	slices.SortFunc(out, func(a, b *models.Recipe) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeRecipesRepo) ListByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.Recipe, error) {
	all, _ := f.ListByUser(ctx, userID)
	out := []*models.Recipe{}
	for _, r := range all {
		if slices.Contains(ids, r.ID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipesRepo) Update(ctx context.Context, r *models.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.rows[r.ID]
	if !ok || old.UserID != r.UserID {
		return common.ErrorNotFound
	}
	f.rows[r.ID] = clone(r)
	return nil
}

func (f *fakeRecipesRepo) Delete(ctx context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	c *fakeRecipesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), r: newFakeRefreshRepo(), c: newFakeRecipesRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Recipes(db dbx.DBTX) recipesrepo.Repository             { return m.c }
