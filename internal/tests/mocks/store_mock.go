package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"screenpipe/internal/store"
)

// StoreMock is an in-memory store.Store. Any Func field that is set replaces
// the default behaviour of that method.
type StoreMock struct {
	LoadFunc  func(ctx context.Context) error
	GetFunc   func(ctx context.Context, key string, dst any) (bool, error)
	SetFunc   func(ctx context.Context, key string, value any) error
	SaveFunc  func(ctx context.Context) error
	CloseFunc func() error

	StorePath string

	mu        sync.Mutex
	Values    map[string]json.RawMessage
	SetKeys   []string
	LoadCalls int
	SaveCalls int
}

var _ store.Store = (*StoreMock)(nil)

func NewStoreMock() *StoreMock {
	return &StoreMock{StorePath: "mock/store.bin", Values: map[string]json.RawMessage{}}
}

// Put seeds a value as if it had been persisted earlier.
func (m *StoreMock) Put(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Values == nil {
		m.Values = map[string]json.RawMessage{}
	}
	m.Values[key] = data
}

func (m *StoreMock) Load(ctx context.Context) error {
	m.mu.Lock()
	m.LoadCalls++
	m.mu.Unlock()
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return nil
}

func (m *StoreMock) Get(ctx context.Context, key string, dst any) (bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dst)
	}
	m.mu.Lock()
	raw, ok := m.Values[key]
	m.mu.Unlock()
	if !ok || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, &store.DecodeError{Key: key, Err: err}
	}
	return true, nil
}

func (m *StoreMock) Set(ctx context.Context, key string, value any) error {
	m.mu.Lock()
	m.SetKeys = append(m.SetKeys, key)
	m.mu.Unlock()
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.Put(key, value)
	return nil
}

func (m *StoreMock) Save(ctx context.Context) error {
	m.mu.Lock()
	m.SaveCalls++
	m.mu.Unlock()
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx)
	}
	return nil
}

func (m *StoreMock) Path() string {
	return m.StorePath
}

func (m *StoreMock) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
