// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID valid until expires.
	Create(ctx context.Context, userID int64, token string, expires time.Time) error

	// Find looks up a refresh token by its opaque token string.
	// Implementations return common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token. Deleting a non-existent token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired drops the tokens of userID that expired before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, userID int64, now time.Time) (int64, error)
}
