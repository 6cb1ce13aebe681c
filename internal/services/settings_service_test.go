package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenpipe/internal/logger"
	"screenpipe/internal/models"
	"screenpipe/internal/notify"
	"screenpipe/internal/repositories"
	"screenpipe/internal/store"
	"screenpipe/internal/tests/mocks"
)

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return logger.New(buf, &logger.Options{Level: slog.LevelInfo, NoColor: true})
}

func newService(t *testing.T, repo repositories.SettingsRepository) (*SettingsService, *bytes.Buffer, *[]notify.Change) {
	t.Helper()
	var buf bytes.Buffer
	svc := NewSettingsService(repo, notify.New(), quietLogger(&buf))
	var changes []notify.Change
	svc.Subscribe(func(c notify.Change) { changes = append(changes, c) })
	return svc, &buf, &changes
}

func newDiskService(t *testing.T, dir string) (*SettingsService, *store.Provider) {
	t.Helper()
	provider := store.NewProvider(store.WithDataDir(dir))
	t.Cleanup(func() { _ = provider.Close() })
	svc := NewSettingsService(repositories.NewSettingsRepository(provider), nil, quietLogger(&bytes.Buffer{}))
	return svc, provider
}

func TestSettingsService_InitialSnapshotIsLoading(t *testing.T) {
	svc, _, _ := newService(t, &mocks.SettingsRepositoryMock{})

	s := svc.Settings()
	assert.True(t, s.IsLoading)
	assert.Equal(t, "gpt-4o", s.AIModel)
}

func TestSettingsService_Load_DefaultsFromEmptyStore(t *testing.T) {
	svc, _ := newDiskService(t, t.TempDir())

	got := svc.Load(context.Background())

	want := models.DefaultSettings()
	want.IsLoading = false
	assert.Equal(t, want, got)
	assert.Equal(t, want, svc.Settings())
}

func TestSettingsService_Load_BooleanFalseIsKept(t *testing.T) {
	ctx := context.Background()
	m := mocks.NewStoreMock()
	for _, key := range []string{models.KeyUseOllama, models.KeyUseCloudAudio, models.KeyUseCloudOCR, models.KeyDevMode} {
		m.Put(key, false)
	}
	provider := store.NewProvider(store.WithOpener(func(string) (store.Store, error) { return m, nil }))
	svc := NewSettingsService(repositories.NewSettingsRepository(provider), nil, quietLogger(&bytes.Buffer{}))

	got := svc.Load(ctx)

	assert.False(t, got.UseOllama)
	assert.False(t, got.UseCloudAudio)
	assert.False(t, got.UseCloudOCR)
	assert.False(t, got.DevMode)
	assert.False(t, got.IsLoading)
}

func TestSettingsService_Load_FailureClearsLoading(t *testing.T) {
	repo := &mocks.SettingsRepositoryMock{
		ReadFunc: func(context.Context) (models.Settings, error) {
			return models.Settings{}, errors.New("corrupt store")
		},
	}
	svc, logs, changes := newService(t, repo)

	got := svc.Load(context.Background())

	want := models.DefaultSettings()
	want.IsLoading = false
	assert.Equal(t, want, got)
	assert.False(t, svc.Settings().IsLoading)
	assert.Contains(t, logs.String(), "failed to load settings")
	assert.Contains(t, logs.String(), "corrupt store")
	require.Len(t, *changes, 1)
	assert.Equal(t, notify.ChangeLoad, (*changes)[0].Type)
}

func TestSettingsService_Load_PublishesToSubscribers(t *testing.T) {
	repo := &mocks.SettingsRepositoryMock{
		ReadFunc: func(context.Context) (models.Settings, error) {
			s := models.DefaultSettings()
			s.IsLoading = false
			s.UserID = "u1"
			return s, nil
		},
	}
	svc, _, changes := newService(t, repo)

	svc.Load(context.Background())

	require.Len(t, *changes, 1)
	c := (*changes)[0]
	assert.Equal(t, notify.ChangeLoad, c.Type)
	assert.True(t, c.Old.IsLoading)
	assert.False(t, c.New.IsLoading)
	assert.Equal(t, "u1", c.New.UserID)
}

func TestSettingsService_Update_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, _ := newDiskService(t, dir)
	first.Load(ctx)
	require.NoError(t, first.Update(ctx, models.SettingsPatch{UserID: lo.ToPtr("u1"), DevMode: lo.ToPtr(true)}))
	before := first.Settings()
	require.NoError(t, first.Update(ctx, models.SettingsPatch{AIModel: lo.ToPtr("gpt-4-turbo")}))

	second, _ := newDiskService(t, dir)
	got := second.Load(ctx)

	assert.Equal(t, "gpt-4-turbo", got.AIModel)
	before.AIModel = "gpt-4-turbo"
	assert.True(t, before.Equal(got))
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.DevMode)
}

func TestSettingsService_Update_Merges(t *testing.T) {
	ctx := context.Background()
	var written models.Settings
	repo := &mocks.SettingsRepositoryMock{
		WriteFunc: func(_ context.Context, s models.Settings) error {
			written = s
			return nil
		},
	}
	svc, _, _ := newService(t, repo)
	svc.Load(ctx)
	require.NoError(t, svc.Update(ctx, models.SettingsPatch{UserID: lo.ToPtr("u1")}))

	require.NoError(t, svc.Update(ctx, models.SettingsPatch{CustomPrompt: lo.ToPtr("hi")}))

	got := svc.Settings()
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "hi", got.CustomPrompt)
	assert.Equal(t, got, written)
}

func TestSettingsService_Update_PublishesBeforePersisting(t *testing.T) {
	ctx := context.Background()
	var svc *SettingsService
	var seen models.Settings
	repo := &mocks.SettingsRepositoryMock{
		WriteFunc: func(context.Context, models.Settings) error {
			seen = svc.Settings()
			return nil
		},
	}
	svc, _, _ = newService(t, repo)

	require.NoError(t, svc.Update(ctx, models.SettingsPatch{AIModel: lo.ToPtr("llama3")}))

	assert.Equal(t, "llama3", seen.AIModel)
}

func TestSettingsService_Update_RevertsOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	m := mocks.NewStoreMock()
	m.Put(models.KeyOpenAIAPIKey, "old")
	m.SaveFunc = func(context.Context) error { return errors.New("disk full") }
	provider := store.NewProvider(store.WithOpener(func(string) (store.Store, error) { return m, nil }))

	var logs bytes.Buffer
	svc := NewSettingsService(repositories.NewSettingsRepository(provider), nil, quietLogger(&logs))
	var changes []notify.Change
	svc.Subscribe(func(c notify.Change) { changes = append(changes, c) })
	svc.Load(ctx)
	before := svc.Settings()

	err := svc.Update(ctx, models.SettingsPatch{OpenAIAPIKey: lo.ToPtr("new")})

	assert.EqualError(t, err, "disk full")
	after := svc.Settings()
	assert.Equal(t, before, after)
	assert.Equal(t, "old", after.OpenAIAPIKey)
	assert.False(t, after.IsLoading)
	assert.Contains(t, logs.String(), "failed to update settings")

	require.Len(t, changes, 3)
	assert.Equal(t, notify.ChangeUpdate, changes[1].Type)
	assert.Equal(t, "new", changes[1].New.OpenAIAPIKey)
	assert.Equal(t, notify.ChangeRevert, changes[2].Type)
	assert.Equal(t, "old", changes[2].New.OpenAIAPIKey)
}

func TestSettingsService_Update_RevertKeepsLoadingFlag(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SettingsRepositoryMock{
		WriteFunc: func(context.Context, models.Settings) error { return errors.New("boom") },
	}
	svc, _, _ := newService(t, repo)

	err := svc.Update(ctx, models.SettingsPatch{DevMode: lo.ToPtr(true)})

	assert.Error(t, err)
	assert.True(t, svc.Settings().IsLoading)
	assert.False(t, svc.Settings().DevMode)
}

func TestSettingsService_Update_StoreInitFailure(t *testing.T) {
	ctx := context.Background()
	provider := store.NewProvider(store.WithPathFunc(func() (string, error) {
		return "", errors.New("no local data dir")
	}))
	svc := NewSettingsService(repositories.NewSettingsRepository(provider), nil, quietLogger(&bytes.Buffer{}))

	err := svc.Update(ctx, models.SettingsPatch{UserID: lo.ToPtr("u1")})

	assert.ErrorContains(t, err, "no local data dir")
	assert.Equal(t, "", svc.Settings().UserID)
	assert.False(t, provider.Initialized())
}

func TestSettingsService_Load_Twice(t *testing.T) {
	ctx := context.Background()
	opens := 0
	var paths []string
	dir := t.TempDir()
	provider := store.NewProvider(
		store.WithDataDir(dir),
		store.WithOpener(func(path string) (store.Store, error) {
			opens++
			paths = append(paths, path)
			return store.Open(path)
		}),
	)
	defer provider.Close()
	svc := NewSettingsService(repositories.NewSettingsRepository(provider), nil, quietLogger(&bytes.Buffer{}))

	first := svc.Load(ctx)
	h1, err := provider.Store(ctx)
	require.NoError(t, err)
	second := svc.Load(ctx)
	h2, err := provider.Store(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, opens)
	assert.Same(t, h1, h2)
	assert.Equal(t, h1.Path(), h2.Path())
}

func TestSettingsService_SettingsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, &mocks.SettingsRepositoryMock{})
	require.NoError(t, svc.Update(ctx, models.SettingsPatch{InstalledPipes: &[]string{"pipe-a"}}))

	s := svc.Settings()
	s.InstalledPipes[0] = "mutated"

	assert.Equal(t, []string{"pipe-a"}, svc.Settings().InstalledPipes)
}

func TestNewServices_SharesProvider(t *testing.T) {
	provider := store.NewProvider(store.WithDataDir(t.TempDir()))
	defer provider.Close()

	svc := NewServices(provider, quietLogger(&bytes.Buffer{}))
	svc.Settings.Load(context.Background())

	assert.Same(t, provider, svc.Stores)
	assert.True(t, provider.Initialized())
	assert.False(t, svc.Settings.Settings().IsLoading)
}

func TestSettingsService_MalformedKeyDoesNotWipeOthers(t *testing.T) {
	ctx := context.Background()
	m := mocks.NewStoreMock()
	m.Put(models.KeyOpenAIAPIKey, "sk-keep")
	m.Put(models.KeyUserID, "u1")
	m.Put(models.KeyDevMode, "yes")
	provider := store.NewProvider(store.WithOpener(func(string) (store.Store, error) { return m, nil }))
	svc := NewServices(provider, quietLogger(&bytes.Buffer{})).Settings

	loaded := svc.Load(ctx)
	assert.Equal(t, "sk-keep", loaded.OpenAIAPIKey)
	assert.Equal(t, "u1", loaded.UserID)
	assert.False(t, loaded.DevMode)

	require.NoError(t, svc.Update(ctx, models.SettingsPatch{CustomPrompt: lo.ToPtr("hi")}))

	assert.JSONEq(t, `"sk-keep"`, string(m.Values[models.KeyOpenAIAPIKey]))
	assert.JSONEq(t, `"u1"`, string(m.Values[models.KeyUserID]))
	assert.JSONEq(t, `"hi"`, string(m.Values[models.KeyCustomPrompt]))
	assert.JSONEq(t, `false`, string(m.Values[models.KeyDevMode]))
}
