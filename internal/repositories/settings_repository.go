package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"screenpipe/internal/logger"
	"screenpipe/internal/models"
	"screenpipe/internal/store"
)

// StoreSource hands out the shared store handle. *store.Provider implements it.
type StoreSource interface {
	Store(ctx context.Context) (store.Store, error)
}

type SettingsRepository interface {
	// Read loads the store and returns a fully defaulted snapshot with
	// IsLoading cleared. A key holding a value of the wrong type falls back
	// to its default without affecting the other keys.
	Read(ctx context.Context) (models.Settings, error)
	// Write stages every persisted field and saves once. It stops at the
	// first failure; values staged before it are not rolled back.
	Write(ctx context.Context, settings models.Settings) error
}

type settingsRepository struct {
	stores StoreSource
	log    *slog.Logger
}

type Option func(*settingsRepository)

func WithLogger(log *slog.Logger) Option {
	return func(r *settingsRepository) {
		if log != nil {
			r.log = log
		}
	}
}

func NewSettingsRepository(stores StoreSource, opts ...Option) SettingsRepository {
	r := &settingsRepository{stores: stores, log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *settingsRepository) Read(ctx context.Context) (models.Settings, error) {
	s, err := r.stores.Store(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if err := s.Load(ctx); err != nil {
		return models.Settings{}, err
	}

	out := models.DefaultSettings()
	out.IsLoading = false
	def := models.DefaultSettings()

	fields := []struct {
		key   string
		dst   any
		reset func()
	}{
		{models.KeyOpenAIAPIKey, &out.OpenAIAPIKey, func() { out.OpenAIAPIKey = def.OpenAIAPIKey }},
		{models.KeyUseOllama, &out.UseOllama, func() { out.UseOllama = def.UseOllama }},
		{models.KeyUseCloudAudio, &out.UseCloudAudio, func() { out.UseCloudAudio = def.UseCloudAudio }},
		{models.KeyUseCloudOCR, &out.UseCloudOCR, func() { out.UseCloudOCR = def.UseCloudOCR }},
		{models.KeyOllamaURL, &out.OllamaURL, func() { out.OllamaURL = def.OllamaURL }},
		{models.KeyAIModel, &out.AIModel, func() { out.AIModel = def.AIModel }},
		{models.KeyInstalledPipes, &out.InstalledPipes, func() { out.InstalledPipes = []string{} }},
		{models.KeyUserID, &out.UserID, func() { out.UserID = def.UserID }},
		{models.KeyCustomPrompt, &out.CustomPrompt, func() { out.CustomPrompt = def.CustomPrompt }},
		{models.KeyDevMode, &out.DevMode, func() { out.DevMode = def.DevMode }},
	}
	for _, f := range fields {
		// absent keys leave the default in place
		_, err := s.Get(ctx, f.key, f.dst)
		if err == nil {
			continue
		}
		var decodeErr *store.DecodeError
		if !errors.As(err, &decodeErr) {
			return models.Settings{}, fmt.Errorf("read %s: %w", f.key, err)
		}
		// a partial decode may have touched the field
		f.reset()
		r.log.Warn("ignoring malformed setting", slog.String("key", f.key), logger.Err(err))
	}
	if out.InstalledPipes == nil {
		out.InstalledPipes = []string{}
	}
	return out, nil
}

func (r *settingsRepository) Write(ctx context.Context, settings models.Settings) error {
	s, err := r.stores.Store(ctx)
	if err != nil {
		return err
	}

	pipes := settings.InstalledPipes
	if pipes == nil {
		pipes = []string{}
	}
	values := map[string]any{
		models.KeyOpenAIAPIKey:   settings.OpenAIAPIKey,
		models.KeyUseOllama:      settings.UseOllama,
		models.KeyUseCloudAudio:  settings.UseCloudAudio,
		models.KeyUseCloudOCR:    settings.UseCloudOCR,
		models.KeyOllamaURL:      settings.OllamaURL,
		models.KeyAIModel:        settings.AIModel,
		models.KeyInstalledPipes: pipes,
		models.KeyUserID:         settings.UserID,
		models.KeyCustomPrompt:   settings.CustomPrompt,
		models.KeyDevMode:        settings.DevMode,
	}
	for _, key := range models.SettingKeys {
		if err := s.Set(ctx, key, values[key]); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	return s.Save(ctx)
}
