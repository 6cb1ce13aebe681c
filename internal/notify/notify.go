// Package notify delivers settings snapshots to subscribers.
//
// Observers run synchronously on the publishing goroutine, in no particular
// order. An observer may unsubscribe itself from within its callback.
package notify

import (
	"sync"

	"github.com/google/uuid"

	"screenpipe/internal/models"
)

// ChangeType is the reason a snapshot was published.
type ChangeType int

const (
	// ChangeLoad is published when the initial load finishes.
	ChangeLoad ChangeType = iota

	// ChangeUpdate is published optimistically when an update starts.
	ChangeUpdate

	// ChangeRevert is published when a failed update restores the
	// previous snapshot.
	ChangeRevert
)

func (c ChangeType) String() string {
	switch c {
	case ChangeLoad:
		return "load"
	case ChangeUpdate:
		return "update"
	case ChangeRevert:
		return "revert"
	default:
		return "unknown"
	}
}

// Change carries the snapshot before and after a publish.
type Change struct {
	Type ChangeType
	Old  models.Settings
	New  models.Settings
}

type Observer func(change Change)

type Subscription struct {
	id       uuid.UUID
	notifier *Notifier
}

// ID identifies the subscription.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Unsubscribe removes the observer. Calling it twice is harmless.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type Notifier struct {
	mu        sync.RWMutex
	observers map[uuid.UUID]Observer
}

func New() *Notifier {
	return &Notifier{observers: make(map[uuid.UUID]Observer)}
}

func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.New()
	n.observers[id] = observer
	return &Subscription{id: id, notifier: n}
}

// Notify hands change to every current observer. Each observer receives its
// own copy of the snapshots.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.observers))
	for _, o := range n.observers {
		observers = append(observers, o)
	}
	n.mu.RUnlock()

	for _, o := range observers {
		o(Change{Type: change.Type, Old: change.Old.Clone(), New: change.New.Clone()})
	}
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

func (n *Notifier) unsubscribe(id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}
