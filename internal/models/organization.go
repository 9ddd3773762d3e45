package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContactPerson is the individual responsible for an organization.
type ContactPerson struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// OrganizationContact holds the organization's own contact details.
type OrganizationContact struct {
	Email string  `json:"email" validate:"required,email"`
	Phone string  `json:"phone" validate:"required"`
	Logo  *string `json:"logo"` // URL of the uploaded logo, nil when absent
}

// Organization represents a tenant. Its Active flag gates every member principal.
type Organization struct {
	OrgID         uuid.UUID // UUIDv7
	Name          string    // Unique
	PasswordHash  string    // Organizations authenticate independently of their users
	ContactPerson ContactPerson
	Contact       OrganizationContact
	Active        bool
	CreatedBy     uuid.UUID // FK-less back reference to the creating principal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type organizationJSON struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"organizationname"`
	ContactPerson ContactPerson       `json:"contactPerson"`
	Contact       OrganizationContact `json:"organization"`
	Active        bool                `json:"status"`
	CreatedBy     uuid.UUID           `json:"createdBy"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// MarshalJSON never includes the secret digest.
func (o Organization) MarshalJSON() ([]byte, error) {
	return json.Marshal(organizationJSON{
		ID:            o.OrgID,
		Name:          o.Name,
		ContactPerson: o.ContactPerson,
		Contact:       o.Contact,
		Active:        o.Active,
		CreatedBy:     o.CreatedBy,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	})
}
