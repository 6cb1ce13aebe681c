package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"screenpipe/internal/database"
	"screenpipe/internal/models"
)

// KVStore is a Store backed by a single-table SQLite file.
type KVStore struct {
	path     string
	log      *slog.Logger
	logLevel logger.LogLevel

	mu      sync.Mutex
	db      *gorm.DB
	entries map[string]string
	closed  bool
}

type Option func(*KVStore)

func WithLogger(log *slog.Logger) Option {
	return func(s *KVStore) {
		if log != nil {
			s.log = log
		}
	}
}

// WithLogLevel sets the gorm log level of the underlying connection.
func WithLogLevel(level logger.LogLevel) Option {
	return func(s *KVStore) {
		s.logLevel = level
	}
}

// Open returns a handle bound to path. Nothing touches disk until the first
// Load or Save.
func Open(path string, opts ...Option) (*KVStore, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}
	s := &KVStore{
		path:     path,
		log:      slog.Default(),
		logLevel: logger.Warn,
		entries:  map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *KVStore) Path() string {
	return s.path
}

// conn opens the database on first use. Callers hold s.mu.
func (s *KVStore) conn() (*gorm.DB, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.db != nil {
		return s.db, nil
	}
	db, err := database.Init(database.Config{
		Path:     s.path,
		LogLevel: s.logLevel,
		Logger:   s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", s.path, err)
	}
	s.db = db
	return db, nil
}

func (s *KVStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	var rows []models.StoreEntry
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	entries := make(map[string]string, len(rows))
	for _, row := range rows {
		entries[row.Key] = row.Value
	}
	s.entries = entries
	s.log.Debug("store loaded", slog.String("path", s.path), slog.Int("keys", len(entries)))
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	raw, ok := s.entries[key]
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return false, ErrClosed
	}
	if !ok || raw == "null" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, &DecodeError{Key: key, Err: err}
	}
	return true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return errors.New("key is required")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.entries[key] = string(data)
	return nil
}

func (s *KVStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}
	if len(s.entries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]models.StoreEntry, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, models.StoreEntry{Key: k, Value: s.entries[k]})
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

// Keys returns the cached keys in sorted order.
func (s *KVStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close releases the database connection. Further calls fail with ErrClosed.
func (s *KVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}
