package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// DraftPersistenceService keeps a resumable copy of guest booking drafts
type DraftPersistenceService struct {
	store  DraftStore
	ttl    time.Duration
	logger *logrus.Logger
	now    func() time.Time
}

// NewDraftPersistenceService creates a new draft persistence service.
// A ttl of zero keeps drafts until they are cleared.
func NewDraftPersistenceService(store DraftStore, ttl time.Duration, logger *logrus.Logger) *DraftPersistenceService {
	return &DraftPersistenceService{store: store, ttl: ttl, logger: logger, now: time.Now}
}

// Persist writes the snapshot; empty snapshots are skipped
func (s *DraftPersistenceService) Persist(ctx context.Context, sessionKey string, snapshot models.DraftSnapshot, deviceType string) error {
	if sessionKey == "" || snapshot.IsEmpty() {
		return nil
	}
	if err := s.store.Save(ctx, sessionKey, snapshot, deviceType); err != nil {
		return fmt.Errorf("failed to save booking draft: %w", err)
	}
	return nil
}

// Resume returns the saved snapshot for the session, or nil. An expired
// draft is removed and treated as missing.
func (s *DraftPersistenceService) Resume(ctx context.Context, sessionKey string) (*models.DraftSnapshot, error) {
	if sessionKey == "" {
		return nil, nil
	}
	draft, err := s.store.Load(ctx, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking draft: %w", err)
	}
	if draft == nil {
		return nil, nil
	}

	if s.ttl > 0 && s.now().Sub(draft.UpdatedAt) > s.ttl {
		s.logger.WithFields(logrus.Fields{
			"session":    sessionKey,
			"updated_at": draft.UpdatedAt,
		}).Info("Discarding expired booking draft")
		if err := s.store.Delete(ctx, sessionKey); err != nil {
			s.logger.WithError(err).Warn("Failed to delete expired booking draft")
		}
		return nil, nil
	}

	snapshot := draft.Snapshot
	return &snapshot, nil
}

// Clear removes the saved snapshot
func (s *DraftPersistenceService) Clear(ctx context.Context, sessionKey string) error {
	if sessionKey == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("failed to clear booking draft: %w", err)
	}
	return nil
}

// PurgeExpired deletes drafts older than the TTL and returns how many went
func (s *DraftPersistenceService) PurgeExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	return s.PurgeOlderThan(ctx, s.ttl)
}

// PurgeOlderThan deletes drafts not updated within age
func (s *DraftPersistenceService) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	deleted, err := s.store.DeleteOlderThan(ctx, s.now().Add(-age))
	if err != nil {
		return 0, fmt.Errorf("failed to purge booking drafts: %w", err)
	}
	return deleted, nil
}

// Count returns the number of saved drafts
func (s *DraftPersistenceService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
