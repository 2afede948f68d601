package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(db, rm, auth.NewMemoryRevoker(), cfg, logging.Discard())
}

func TestRegister(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm)

	u, err := s.Register(context.Background(), " alice@example.com ", "pw")
	require.NoError(t, err)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice", u.UserName)
	assert.NotEqual(t, []byte("pw"), u.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, newFakeRepoManager())

	for _, tc := range [][2]string{{"", "pw"}, {"a@b.c", ""}, {"  ", "pw"}} {
		_, err := s.Register(context.Background(), tc[0], tc[1])
		require.ErrorIs(t, err, common.ErrorValidation)
		assert.Equal(t, "Need email and password", common.ValidationMessage(err))
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, newFakeRepoManager())

	_, err := s.Register(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = s.Register(context.Background(), "alice@example.com", "other")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestLogin(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	rm.r.tokens["stale"] = &models.RefreshToken{UserID: 1, Token: "stale", Expires: time.Now().Add(-time.Hour)}

	u, pair, err := s.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Len(t, pair.RefreshToken, 64)
	assert.Contains(t, rm.r.tokens, pair.RefreshToken)
	assert.NotContains(t, rm.r.tokens, "stale")

	claims, err := s.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestLogin_WrongCredentials(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	_, _, err = s.Login(context.Background(), "alice@example.com", "nope")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, err = s.Login(context.Background(), "ghost@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, err = s.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogin_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.u.getErr = errors.New("db down")
	s := newUserService(t, db, rm)

	_, _, err := s.Login(context.Background(), "alice@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestRefreshToken_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := newFakeRepoManager()
	rm.r.tokens["refresh-xyz"] = &models.RefreshToken{UserID: 7, Token: "refresh-xyz", Expires: time.Now().Add(10 * time.Minute)}
	s := newUserService(t, db, rm)

	pair, err := s.RefreshToken(context.Background(), "refresh-xyz")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, "refresh-xyz", pair.RefreshToken)
	assert.NotContains(t, rm.r.tokens, "refresh-xyz")
	assert.Equal(t, int64(7), rm.r.tokens[pair.RefreshToken].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_Expired(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := newFakeRepoManager()
	rm.r.tokens["r"] = &models.RefreshToken{UserID: 1, Token: "r", Expires: time.Now().Add(-1 * time.Minute)}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_Unknown(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newUserService(t, db, newFakeRepoManager())

	_, err := s.RefreshToken(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefreshToken_CreateFails(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := newFakeRepoManager()
	rm.r.tokens["r"] = &models.RefreshToken{UserID: 1, Token: "r", Expires: time.Now().Add(time.Minute)}
	rm.r.createErr = errors.New("insert failed")
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	_, pair, err := s.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	claims, err := s.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background(), claims, pair.RefreshToken))
	assert.NotContains(t, rm.r.tokens, pair.RefreshToken)

	_, err = s.Authenticate(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestAuthenticate_BadToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, newFakeRepoManager())

	_, err := s.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestCurrentUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, newFakeRepoManager())

	u, err := s.Register(context.Background(), "bob@example.com", "pw")
	require.NoError(t, err)

	got, err := s.CurrentUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.UserName)

	_, err = s.CurrentUser(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
