package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
)

// PrincipalStore implements store.PrincipalStore on a DB.
type PrincipalStore struct {
	db   *DB
	held bool // true inside DB.Do
}

var _ store.PrincipalStore = (*PrincipalStore)(nil)

// NewPrincipalStore creates a principal store on a fresh engine.
func NewPrincipalStore() *PrincipalStore {
	return New().Stores().Principals.(*PrincipalStore)
}

// Create creates a new principal in memory.
func (s *PrincipalStore) Create(ctx context.Context, principal *models.Principal) error {
	defer s.db.lock(s.held)()

	t := &s.db.tables

	// Check if principal already exists
	if _, exists := t.principals[principal.PrincipalID]; exists {
		return store.ErrPrincipalAlreadyExists
	}

	// Check for duplicate email
	for _, p := range t.principals {
		if strings.EqualFold(p.Email, principal.Email) {
			return store.ErrPrincipalAlreadyExists
		}
	}

	// Clone to avoid external modifications
	t.principals[principal.PrincipalID] = clonePrincipal(principal)

	return nil
}

// Get retrieves a principal by ID.
func (s *PrincipalStore) Get(ctx context.Context, principalID uuid.UUID) (*models.Principal, error) {
	defer s.db.rlock(s.held)()

	principal, exists := s.db.tables.principals[principalID]
	if !exists {
		return nil, store.ErrPrincipalNotFound
	}

	return clonePrincipal(principal), nil
}

// FindOne returns the oldest principal matching the filter.
func (s *PrincipalStore) FindOne(ctx context.Context, filter store.PrincipalFilter) (*models.Principal, error) {
	defer s.db.rlock(s.held)()

	matches := s.match(filter)
	if len(matches) == 0 {
		return nil, store.ErrPrincipalNotFound
	}

	return clonePrincipal(matches[len(matches)-1]), nil
}

// List returns matching principals, newest first.
func (s *PrincipalStore) List(ctx context.Context, filter store.PrincipalFilter) ([]*models.Principal, error) {
	defer s.db.rlock(s.held)()

	matches := s.match(filter)
	result := make([]*models.Principal, 0, len(matches))
	for _, p := range matches {
		result = append(result, clonePrincipal(p))
	}

	return result, nil
}

// Update applies the patch to an existing principal.
func (s *PrincipalStore) Update(ctx context.Context, principalID uuid.UUID, patch store.PrincipalPatch) (*models.Principal, error) {
	defer s.db.lock(s.held)()

	existing, exists := s.db.tables.principals[principalID]
	if !exists {
		return nil, store.ErrPrincipalNotFound
	}

	next := clonePrincipal(existing)
	patch.Apply(next)
	next.UpdatedAt = time.Now()
	s.db.tables.principals[principalID] = next

	return clonePrincipal(next), nil
}

// Delete permanently removes a principal.
func (s *PrincipalStore) Delete(ctx context.Context, principalID uuid.UUID) error {
	defer s.db.lock(s.held)()

	if _, exists := s.db.tables.principals[principalID]; !exists {
		return store.ErrPrincipalNotFound
	}
	delete(s.db.tables.principals, principalID)

	return nil
}

// DeactivateByOrg sets every active member of the organization inactive.
func (s *PrincipalStore) DeactivateByOrg(ctx context.Context, orgID uuid.UUID) (int64, error) {
	defer s.db.lock(s.held)()

	now := time.Now()
	var n int64
	for id, p := range s.db.tables.principals {
		if !p.BelongsTo(orgID) || !p.Active {
			continue
		}
		next := clonePrincipal(p)
		next.Active = false
		next.UpdatedAt = now
		s.db.tables.principals[id] = next
		n++
	}

	return n, nil
}

// DeleteByOrg removes every member of the organization.
func (s *PrincipalStore) DeleteByOrg(ctx context.Context, orgID uuid.UUID) (int64, error) {
	defer s.db.lock(s.held)()

	var n int64
	for id, p := range s.db.tables.principals {
		if p.BelongsTo(orgID) {
			delete(s.db.tables.principals, id)
			n++
		}
	}

	return n, nil
}

// match returns matching records newest first. Callers hold the lock.
func (s *PrincipalStore) match(filter store.PrincipalFilter) []*models.Principal {
	var result []*models.Principal
	for _, p := range s.db.tables.principals {
		if filter.OrgID != nil && !p.BelongsTo(*filter.OrgID) {
			continue
		}
		if filter.Kind != nil && p.Kind != *filter.Kind {
			continue
		}
		if filter.Email != "" && !strings.EqualFold(p.Email, filter.Email) {
			continue
		}
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		result = append(result, p)
	}

	slices.SortFunc(result, func(a, b *models.Principal) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.PrincipalID.String(), a.PrincipalID.String())
	})

	return result
}

func clonePrincipal(p *models.Principal) *models.Principal {
	clone := *p
	if p.OrgID != nil {
		id := *p.OrgID
		clone.OrgID = &id
	}
	if p.CreatedBy != nil {
		id := *p.CreatedBy
		clone.CreatedBy = &id
	}
	if p.LastLoginAt != nil {
		t := *p.LastLoginAt
		clone.LastLoginAt = &t
	}
	return &clone
}
