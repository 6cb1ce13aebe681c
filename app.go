package main

import (
	"context"
	"fmt"
	"log/slog"

	"screenpipe/internal/events"
	"screenpipe/internal/logger"
	"screenpipe/internal/models"
	"screenpipe/internal/notify"
	"screenpipe/internal/services"
	"screenpipe/internal/store"
)

// App struct
type App struct {
	ctx      context.Context
	Settings *services.SettingsService
	stores   *store.Provider
	log      *slog.Logger
	forward  *notify.Subscription
}

// NewApp creates a new App application struct
func NewApp(settings *services.SettingsService, stores *store.Provider, log *slog.Logger) *App {
	return &App{
		Settings: settings,
		stores:   stores,
		log:      log,
	}
}

// startup is called when the app starts. The first settings load happens
// here, once the window is mounted.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.forward = a.Settings.Subscribe(events.Forward(ctx))
	loaded := a.Settings.Load(ctx)
	a.log.Info("settings loaded", slog.String("aiModel", loaded.AIModel), slog.Int("pipes", len(loaded.InstalledPipes)))
}

// shutdown is called when the app is closing. Clean up resources here.
func (a *App) shutdown(ctx context.Context) {
	a.forward.Unsubscribe()

	if a.stores != nil {
		if err := a.stores.Close(); err != nil {
			a.log.Error("failed to close settings store", logger.Err(err))
		} else {
			a.log.Info("settings store closed")
		}
	}
}

// requestContext falls back to a background context when bound methods are
// called before startup.
func (a *App) requestContext() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// GetSettings returns the current settings snapshot
func (a *App) GetSettings() (models.Settings, error) {
	if a.Settings == nil {
		return models.Settings{}, fmt.Errorf("settings service not available")
	}
	return a.Settings.Settings(), nil
}

// UpdateSettings merges the given fields into the settings and persists them.
// Fields missing from the payload are left untouched.
func (a *App) UpdateSettings(patch models.SettingsPatch) (models.Settings, error) {
	if a.Settings == nil {
		return models.Settings{}, fmt.Errorf("settings service not available")
	}
	if patch.Empty() {
		return a.Settings.Settings(), nil
	}
	err := a.Settings.Update(a.requestContext(), patch)
	return a.Settings.Settings(), err
}

// InstallPipe appends a pipe to the installed list if it is not there yet
func (a *App) InstallPipe(name string) (models.Settings, error) {
	if a.Settings == nil {
		return models.Settings{}, fmt.Errorf("settings service not available")
	}
	if name == "" {
		return models.Settings{}, fmt.Errorf("pipe name is required")
	}
	pipes := a.Settings.Settings().InstalledPipes
	for _, p := range pipes {
		if p == name {
			return a.Settings.Settings(), nil
		}
	}
	pipes = append(pipes, name)
	return a.UpdateSettings(models.SettingsPatch{InstalledPipes: &pipes})
}

// UninstallPipe removes a pipe from the installed list
func (a *App) UninstallPipe(name string) (models.Settings, error) {
	if a.Settings == nil {
		return models.Settings{}, fmt.Errorf("settings service not available")
	}
	current := a.Settings.Settings().InstalledPipes
	pipes := make([]string, 0, len(current))
	for _, p := range current {
		if p != name {
			pipes = append(pipes, p)
		}
	}
	if len(pipes) == len(current) {
		return a.Settings.Settings(), nil
	}
	return a.UpdateSettings(models.SettingsPatch{InstalledPipes: &pipes})
}
