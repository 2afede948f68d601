package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const exportLinkValidity = 15 * time.Minute

// Export describes an uploaded recipe snapshot.
type Export struct {
	Key string
	URL string
}

type exportDocument struct {
	UserID     int64            `json:"user_id"`
	ExportedAt time.Time        `json:"exported_at"`
	Recipes    []*models.Recipe `json:"recipes"`
}

// ArchiveService writes JSON snapshots of a user's recipes to object storage.
type ArchiveService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	logger      logging.Logger
	now         func() time.Time
}

func NewArchiveService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, logger logging.Logger) *ArchiveService {
	return &ArchiveService{
		db:          db,
		repomanager: m,
		store:       store,
		logger:      logger.With("module", "archive"),
		now:         time.Now,
	}
}

func exportKey(userID int64, d time.Time) string {
	return fmt.Sprintf("users/%d/exports/%04d/%02d/%02d/%v.json", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// Export uploads all recipes of userID and returns the object key together
// with a download link valid for 15 minutes.
func (s *ArchiveService) Export(ctx context.Context, userID int64) (*Export, error) {
	recipes, err := s.repomanager.Recipes(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing recipes: %w", err)
	}

	now := s.now().UTC()
	body, err := json.Marshal(exportDocument{UserID: userID, ExportedAt: now, Recipes: recipes})
	if err != nil {
		return nil, fmt.Errorf("error encoding export: %w", err)
	}

	key := exportKey(userID, now)
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		return nil, fmt.Errorf("error uploading export: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, exportLinkValidity)
	if err != nil {
		return nil, fmt.Errorf("error presigning export: %w", err)
	}

	s.logger.Info(ctx, "recipes exported", "user_id", userID, "key", key, "count", len(recipes))
	return &Export{Key: key, URL: url}, nil
}
