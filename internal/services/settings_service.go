package services

import (
	"context"
	"log/slog"
	"sync"

	"screenpipe/internal/logger"
	"screenpipe/internal/models"
	"screenpipe/internal/notify"
	"screenpipe/internal/repositories"
)

// SettingsService owns the in-memory settings snapshot and keeps it in sync
// with the backing store.
//
// Calls are expected to be serialised by the caller. The mutex only keeps the
// snapshot itself consistent; overlapping Update calls may interleave their
// store writes, and a failing Update reverts to the snapshot it started from
// even if another Update completed in between.
type SettingsService struct {
	repo     repositories.SettingsRepository
	notifier *notify.Notifier
	log      *slog.Logger

	mu       sync.RWMutex
	snapshot models.Settings
}

func NewSettingsService(repo repositories.SettingsRepository, notifier *notify.Notifier, log *slog.Logger) *SettingsService {
	if notifier == nil {
		notifier = notify.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &SettingsService{
		repo:     repo,
		notifier: notifier,
		log:      log.With(slog.String("component", "settings")),
		snapshot: models.DefaultSettings(),
	}
}

// Settings returns a copy of the current snapshot.
func (s *SettingsService) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

func (s *SettingsService) Subscribe(observer notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(observer)
}

// Load reads the persisted settings and publishes them with IsLoading
// cleared. A failure is logged and the current values are kept, but
// IsLoading is still cleared.
func (s *SettingsService) Load(ctx context.Context) models.Settings {
	loaded, err := s.repo.Read(ctx)
	if err != nil {
		s.log.Error("failed to load settings", logger.Err(err))
		loaded = s.Settings()
		loaded.IsLoading = false
	}
	s.publish(notify.ChangeLoad, loaded)
	return loaded.Clone()
}

// Update merges patch into the snapshot, publishes the result right away and
// then persists every field. If persisting fails the previous snapshot is
// published again and the error is returned.
func (s *SettingsService) Update(ctx context.Context, patch models.SettingsPatch) error {
	prev := s.Settings()
	merged := prev.Apply(patch)
	s.publish(notify.ChangeUpdate, merged)

	if err := s.repo.Write(ctx, merged); err != nil {
		s.log.Error("failed to update settings", logger.Err(err))
		reverted := prev.Clone()
		reverted.IsLoading = s.Settings().IsLoading
		s.publish(notify.ChangeRevert, reverted)
		return err
	}
	return nil
}

func (s *SettingsService) publish(kind notify.ChangeType, next models.Settings) {
	s.mu.Lock()
	old := s.snapshot
	s.snapshot = next.Clone()
	s.mu.Unlock()

	s.log.Debug("settings published", slog.String("change", kind.String()))
	s.notifier.Notify(notify.Change{Type: kind, Old: old, New: next})
}
