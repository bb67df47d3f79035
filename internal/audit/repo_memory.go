package audit

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory append-only repository for tests.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a snapshot of everything appended, in order.
func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByType filters the snapshot to one event type. Handy for asserting that a
// flow produced exactly the grant or approval records it should have.
func (r *MemoryRepo) ByType(t EventType) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ForGrant filters the snapshot to one grant's lifecycle.
func (r *MemoryRepo) ForGrant(grantID string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.GrantID == grantID {
			out = append(out, e)
		}
	}
	return out
}
