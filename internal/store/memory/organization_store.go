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

// OrganizationStore implements store.OrganizationStore on a DB.
type OrganizationStore struct {
	db   *DB
	held bool
}

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// NewOrganizationStore creates an organization store on a fresh engine.
func NewOrganizationStore() *OrganizationStore {
	return New().Stores().Organizations.(*OrganizationStore)
}

// Create creates a new organization in memory.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	defer s.db.lock(s.held)()

	t := &s.db.tables

	// Check if organization already exists
	if _, exists := t.organizations[org.OrgID]; exists {
		return store.ErrOrganizationAlreadyExists
	}
	if s.nameTaken(org.Name, org.OrgID) {
		return store.ErrOrganizationAlreadyExists
	}

	// Clone to avoid external modifications
	t.organizations[org.OrgID] = cloneOrganization(org)

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	defer s.db.rlock(s.held)()

	org, exists := s.db.tables.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	return cloneOrganization(org), nil
}

// Lock is Get; inside DB.Do the engine lock already excludes other units.
func (s *OrganizationStore) Lock(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	return s.Get(ctx, orgID)
}

// FindOne returns the oldest organization matching the filter.
func (s *OrganizationStore) FindOne(ctx context.Context, filter store.OrganizationFilter) (*models.Organization, error) {
	defer s.db.rlock(s.held)()

	matches := s.match(filter)
	if len(matches) == 0 {
		return nil, store.ErrOrganizationNotFound
	}

	return cloneOrganization(matches[len(matches)-1]), nil
}

// List returns matching organizations, newest first.
func (s *OrganizationStore) List(ctx context.Context, filter store.OrganizationFilter) ([]*models.Organization, error) {
	defer s.db.rlock(s.held)()

	matches := s.match(filter)
	result := make([]*models.Organization, 0, len(matches))
	for _, o := range matches {
		result = append(result, cloneOrganization(o))
	}

	return result, nil
}

// Update applies the patch to an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, orgID uuid.UUID, patch store.OrganizationPatch) (*models.Organization, error) {
	defer s.db.lock(s.held)()

	existing, exists := s.db.tables.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}
	if patch.Name != nil && s.nameTaken(*patch.Name, orgID) {
		return nil, store.ErrOrganizationAlreadyExists
	}

	next := cloneOrganization(existing)
	patch.Apply(next)
	next.UpdatedAt = time.Now()
	s.db.tables.organizations[orgID] = next

	return cloneOrganization(next), nil
}

// Delete deletes an organization by ID.
func (s *OrganizationStore) Delete(ctx context.Context, orgID uuid.UUID) error {
	defer s.db.lock(s.held)()

	if _, exists := s.db.tables.organizations[orgID]; !exists {
		return store.ErrOrganizationNotFound
	}
	delete(s.db.tables.organizations, orgID)

	return nil
}

func (s *OrganizationStore) nameTaken(name string, except uuid.UUID) bool {
	for id, o := range s.db.tables.organizations {
		if id != except && strings.EqualFold(o.Name, name) {
			return true
		}
	}
	return false
}

func (s *OrganizationStore) match(filter store.OrganizationFilter) []*models.Organization {
	var result []*models.Organization
	for _, o := range s.db.tables.organizations {
		if filter.Name != "" && !strings.EqualFold(o.Name, filter.Name) {
			continue
		}
		if filter.Active != nil && o.Active != *filter.Active {
			continue
		}
		result = append(result, o)
	}

	slices.SortFunc(result, func(a, b *models.Organization) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.OrgID.String(), a.OrgID.String())
	})

	return result
}

func cloneOrganization(o *models.Organization) *models.Organization {
	clone := *o
	if o.Contact.Logo != nil {
		logo := *o.Contact.Logo
		clone.Contact.Logo = &logo
	}
	return &clone
}
