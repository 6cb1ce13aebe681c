package store

import (
	"context"
	"fmt"
	"sync"

	"screenpipe/internal/database"
)

// PathFunc resolves the location of the store file.
type PathFunc func() (string, error)

// OpenFunc constructs a store bound to path.
type OpenFunc func(path string) (Store, error)

// Provider lazily opens a single store handle and hands the same handle to
// every caller for the rest of the process.
type Provider struct {
	mu     sync.Mutex
	path   PathFunc
	open   OpenFunc
	store  Store
	closed bool
}

type ProviderOption func(*Provider)

// WithPath binds the provider to a fixed store file.
func WithPath(path string) ProviderOption {
	return func(p *Provider) {
		p.path = func() (string, error) { return path, nil }
	}
}

// WithDataDir places the store under dir instead of the platform data dir.
func WithDataDir(dir string) ProviderOption {
	return func(p *Provider) {
		if dir == "" {
			return
		}
		p.path = func() (string, error) { return database.StorePath(dir), nil }
	}
}

func WithPathFunc(fn PathFunc) ProviderOption {
	return func(p *Provider) {
		if fn != nil {
			p.path = fn
		}
	}
}

func WithOpener(fn OpenFunc) ProviderOption {
	return func(p *Provider) {
		if fn != nil {
			p.open = fn
		}
	}
}

func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		path: database.DefaultStorePath,
		open: func(path string) (Store, error) { return Open(path) },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the shared handle, opening it on first call. A failed
// initialisation leaves the provider empty so the next call retries. After
// Close it fails with ErrClosed.
func (p *Provider) Store(ctx context.Context) (Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if p.store != nil {
		return p.store, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := p.path()
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	s, err := p.open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	p.store = s
	return s, nil
}

// Initialized reports whether a handle has been opened.
func (p *Provider) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store != nil
}

// Close releases the handle, if any. Only meant for process shutdown; the
// provider cannot be reopened.
func (p *Provider) Close() error {
	p.mu.Lock()
	s := p.store
	p.store = nil
	p.closed = true
	p.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Close()
}
