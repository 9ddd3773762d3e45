package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/inspect/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationFilter narrows FindOne and List. Zero fields match everything.
type OrganizationFilter struct {
	Name   string
	Active *bool
}

// OrganizationPatch lists the fields an update changes. Nil fields are left as is.
type OrganizationPatch struct {
	Name          *string
	PasswordHash  *string
	ContactPerson *models.ContactPerson
	Contact       *models.OrganizationContact
	Active        *bool
}

// Apply copies the set fields onto org.
func (p OrganizationPatch) Apply(org *models.Organization) {
	if p.Name != nil {
		org.Name = *p.Name
	}
	if p.PasswordHash != nil {
		org.PasswordHash = *p.PasswordHash
	}
	if p.ContactPerson != nil {
		org.ContactPerson = *p.ContactPerson
	}
	if p.Contact != nil {
		org.Contact = *p.Contact
	}
	if p.Active != nil {
		org.Active = *p.Active
	}
}

// OrganizationStore defines the interface for organization storage operations.
// Organizations represent tenants in the system, with each org containing multiple principals.
type OrganizationStore interface {
	// Create creates a new organization in the store.
	// Returns ErrOrganizationAlreadyExists if the ID or name is already taken.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// Lock retrieves an organization and holds it against concurrent units of work
	// until the current unit ends. Outside a unit it behaves like Get.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Lock(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// FindOne returns the first organization matching the filter.
	// Returns ErrOrganizationNotFound if nothing matches.
	FindOne(ctx context.Context, filter OrganizationFilter) (*models.Organization, error)

	// List returns matching organizations, most recently created first.
	List(ctx context.Context, filter OrganizationFilter) ([]*models.Organization, error)

	// Update applies the patch and returns the updated organization.
	// Returns ErrOrganizationNotFound if the organization doesn't exist, and
	// ErrOrganizationAlreadyExists if a renamed organization collides.
	Update(ctx context.Context, orgID uuid.UUID, patch OrganizationPatch) (*models.Organization, error)

	// Delete deletes an organization by ID. Members are not removed; callers delete them first.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Delete(ctx context.Context, orgID uuid.UUID) error
}
