package rbac

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory role/approval directory useful for tests and
// local bootstrap. It is not intended for production use.
type MemoryStore struct {
	mu sync.RWMutex

	accountRoles map[string]AccountRole
	eventRoles   map[eventKey]eventAssignment
	approvals    map[eventKey]bool
}

type eventKey struct {
	subjectID string
	eventID   string
}

type eventAssignment struct {
	role EventRole
	sub  EventSubRole
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accountRoles: make(map[string]AccountRole),
		eventRoles:   make(map[eventKey]eventAssignment),
		approvals:    make(map[eventKey]bool),
	}
}

func (s *MemoryStore) AccountRole(ctx context.Context, subjectID string) (AccountRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.accountRoles[subjectID]; ok {
		return r, nil
	}
	return AccountRoleUser, nil
}

func (s *MemoryStore) EventRole(ctx context.Context, subjectID, eventID string) (EventRole, EventSubRole, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.eventRoles[eventKey{subjectID, eventID}]
	if !ok {
		return "", "", false, nil
	}
	return a.role, a.sub, true, nil
}

func (s *MemoryStore) Approved(ctx context.Context, subjectID, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approvals[eventKey{subjectID, eventID}], nil
}

func (s *MemoryStore) UpsertAccountRole(ctx context.Context, subjectID string, role AccountRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountRoles[subjectID] = role
	return nil
}

func (s *MemoryStore) UpsertEventRole(ctx context.Context, subjectID, eventID string, role EventRole, sub EventSubRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventRoles[eventKey{subjectID, eventID}] = eventAssignment{role: role, sub: sub}
	return nil
}

func (s *MemoryStore) SetApproval(ctx context.Context, subjectID, eventID string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Revocation resets the flag; the row is kept, history lives in audit.
	s.approvals[eventKey{subjectID, eventID}] = approved
	return nil
}
