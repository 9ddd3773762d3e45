package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/inspect/internal/models"
)

// Errors
var (
	ErrPrincipalNotFound      = errors.New("principal not found")
	ErrPrincipalAlreadyExists = errors.New("principal already exists")
)

// PrincipalFilter narrows FindOne and List. Zero fields match everything.
type PrincipalFilter struct {
	OrgID  *uuid.UUID
	Kind   *models.PrincipalKind
	Email  string // Exact match on the lower-cased address
	Active *bool
}

// PrincipalPatch lists the fields an update changes. Nil fields are left as is.
type PrincipalPatch struct {
	Name         *string
	Phone        *string
	Designation  *string
	PasswordHash *string
	Active       *bool
	LastLoginAt  *time.Time
}

// Apply copies the set fields onto p.
func (patch PrincipalPatch) Apply(p *models.Principal) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Designation != nil {
		p.Designation = *patch.Designation
	}
	if patch.PasswordHash != nil {
		p.PasswordHash = *patch.PasswordHash
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.LastLoginAt != nil {
		t := *patch.LastLoginAt
		p.LastLoginAt = &t
	}
}

// PrincipalStore defines the interface for principal storage operations.
// Principals are the system admin, org-admins and users.
type PrincipalStore interface {
	// Create creates a new principal.
	// Returns ErrPrincipalAlreadyExists if the ID or email is already taken.
	Create(ctx context.Context, principal *models.Principal) error

	// Get retrieves a principal by ID.
	// Returns ErrPrincipalNotFound if the principal doesn't exist.
	Get(ctx context.Context, principalID uuid.UUID) (*models.Principal, error)

	// FindOne returns the first principal matching the filter.
	// Returns ErrPrincipalNotFound if nothing matches.
	FindOne(ctx context.Context, filter PrincipalFilter) (*models.Principal, error)

	// List returns matching principals, most recently created first.
	List(ctx context.Context, filter PrincipalFilter) ([]*models.Principal, error)

	// Update applies the patch and returns the updated principal.
	// Returns ErrPrincipalNotFound if the principal doesn't exist.
	Update(ctx context.Context, principalID uuid.UUID, patch PrincipalPatch) (*models.Principal, error)

	// Delete permanently removes a principal.
	// Returns ErrPrincipalNotFound if the principal doesn't exist.
	Delete(ctx context.Context, principalID uuid.UUID) error

	// DeactivateByOrg sets every member of the organization inactive and returns how many changed.
	DeactivateByOrg(ctx context.Context, orgID uuid.UUID) (int64, error)

	// DeleteByOrg removes every member of the organization and returns how many were removed.
	DeleteByOrg(ctx context.Context, orgID uuid.UUID) (int64, error)
}
