package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PrincipalKind identifies which variant of principal a record is.
type PrincipalKind string

const (
	PrincipalKindSystemAdmin PrincipalKind = "admin"     // Global administrator, belongs to no organization
	PrincipalKindOrgAdmin    PrincipalKind = "org-admin" // Administrator scoped to one organization
	PrincipalKindUser        PrincipalKind = "user"      // End user scoped to one organization
)

// Valid reports whether k is one of the known principal kinds.
func (k PrincipalKind) Valid() bool {
	switch k {
	case PrincipalKindSystemAdmin, PrincipalKindOrgAdmin, PrincipalKindUser:
		return true
	}
	return false
}

// Field length limits shared by principals, organizations and inspections.
const (
	MaxNameLength        = 100
	MaxDesignationLength = 100
	MaxNotesLength       = 1000
)

var (
	ErrSystemAdminWithOrganization = errors.New("system admin must not reference an organization")
	ErrMemberWithoutOrganization   = errors.New("organization is required for non-admin principals")
	ErrUnknownPrincipalKind        = errors.New("unknown principal kind")
)

// Principal is an authenticated identity: the system admin, an org-admin or a user.
type Principal struct {
	PrincipalID  uuid.UUID     // UUIDv7
	Kind         PrincipalKind // "admin", "org-admin", "user"
	Email        string        // Unique, lower-cased
	Name         string
	Phone        string
	Designation  string
	PasswordHash string

	OrgID     *uuid.UUID // nil for the system admin, required otherwise
	CreatedBy *uuid.UUID // nil for the bootstrap admin

	Active      bool
	LastLoginAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CheckScope enforces the organization reference invariant for the principal's kind.
func (p *Principal) CheckScope() error {
	switch p.Kind {
	case PrincipalKindSystemAdmin:
		if p.OrgID != nil {
			return ErrSystemAdminWithOrganization
		}
	case PrincipalKindOrgAdmin, PrincipalKindUser:
		if p.OrgID == nil {
			return ErrMemberWithoutOrganization
		}
	default:
		return ErrUnknownPrincipalKind
	}
	return nil
}

// IsSystemAdmin returns true for the global administrator variant.
func (p *Principal) IsSystemAdmin() bool {
	return p.Kind == PrincipalKindSystemAdmin
}

// BelongsTo returns true if the principal is a member of the given organization.
func (p *Principal) BelongsTo(orgID uuid.UUID) bool {
	return p.OrgID != nil && *p.OrgID == orgID
}

// principalJSON is the public representation; the password hash is never serialized.
type principalJSON struct {
	ID          uuid.UUID     `json:"id"`
	Kind        PrincipalKind `json:"role"`
	Email       string        `json:"email"`
	Name        string        `json:"name"`
	Phone       string        `json:"phone"`
	Designation string        `json:"designation"`
	OrgID       *uuid.UUID    `json:"organizationId,omitempty"`
	CreatedBy   *uuid.UUID    `json:"createdBy,omitempty"`
	Active      bool          `json:"isActive"`
	LastLoginAt *time.Time    `json:"lastLogin"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// MarshalJSON omits the secret digest, and the organization and creator for the system admin.
func (p Principal) MarshalJSON() ([]byte, error) {
	out := principalJSON{
		ID:          p.PrincipalID,
		Kind:        p.Kind,
		Email:       p.Email,
		Name:        p.Name,
		Phone:       p.Phone,
		Designation: p.Designation,
		OrgID:       p.OrgID,
		CreatedBy:   p.CreatedBy,
		Active:      p.Active,
		LastLoginAt: p.LastLoginAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Kind == PrincipalKindSystemAdmin {
		out.OrgID = nil
		out.CreatedBy = nil
	}
	return json.Marshal(out)
}
