package mocks

import (
	"context"

	"screenpipe/internal/models"
)

type SettingsRepositoryMock struct {
	ReadFunc  func(ctx context.Context) (models.Settings, error)
	WriteFunc func(ctx context.Context, settings models.Settings) error
}

func (m *SettingsRepositoryMock) Read(ctx context.Context) (models.Settings, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx)
	}
	s := models.DefaultSettings()
	s.IsLoading = false
	return s, nil
}

func (m *SettingsRepositoryMock) Write(ctx context.Context, settings models.Settings) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, settings)
	}
	return nil
}
