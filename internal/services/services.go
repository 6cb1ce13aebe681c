package services

import (
	"log/slog"

	"screenpipe/internal/notify"
	"screenpipe/internal/repositories"
	"screenpipe/internal/store"
)

// Services aggregates the services backed by the settings store.
type Services struct {
	Settings *SettingsService
	Stores   *store.Provider
}

// NewServices wires the repositories and services on top of stores.
func NewServices(stores *store.Provider, log *slog.Logger) *Services {
	settingsRepo := repositories.NewSettingsRepository(stores, repositories.WithLogger(log))

	return &Services{
		Settings: NewSettingsService(settingsRepo, notify.New(), log),
		Stores:   stores,
	}
}
