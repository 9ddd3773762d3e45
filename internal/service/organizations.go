package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/apperr"
	"github.com/wolfeidau/inspect/internal/auth"
	"github.com/wolfeidau/inspect/internal/lifecycle"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
	"github.com/wolfeidau/inspect/internal/validate"
)

// Organizations manages tenants and their sign-in.
type Organizations struct {
	db        store.Store
	hasher    *auth.Hasher
	tokens    TokenIssuer
	lifecycle *lifecycle.Controller
	timing    timingDigest
	now       func() time.Time
}

// NewOrganizations creates the organization service.
func NewOrganizations(db store.Store, hasher *auth.Hasher, tokens TokenIssuer, lc *lifecycle.Controller) *Organizations {
	return &Organizations{
		db:        db,
		hasher:    hasher,
		tokens:    tokens,
		lifecycle: lc,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewOrganization is a request to create a tenant.
type NewOrganization struct {
	Name          string                     `json:"organizationname" validate:"required,max=100"`
	Password      string                     `json:"password" validate:"required"`
	ContactPerson models.ContactPerson       `json:"contactPerson"`
	Contact       models.OrganizationContact `json:"organization"`
}

// CreatedOrganization carries the plaintext secret. It is returned once, on creation.
type CreatedOrganization struct {
	Organization *models.Organization `json:"organization"`
	Password     string               `json:"password"`
}

// OrganizationSession is a successful organization sign-in.
type OrganizationSession struct {
	Organization *models.Organization `json:"organization"`
	Token        string               `json:"token"`
}

// SignIn authenticates an organization by name and secret.
func (o *Organizations) SignIn(ctx context.Context, name, password string) (*OrganizationSession, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, apperr.Validation("Organization name and password are required")
	}

	org, err := o.db.Stores().Organizations.FindOne(ctx, store.OrganizationFilter{Name: name})
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			o.timing.burn(o.hasher, password)
			return nil, loginFailed(ctx, "organization", "unknown_name")
		}
		return nil, apperr.FromStore(err)
	}

	if !o.hasher.Verify(password, org.PasswordHash) {
		return nil, loginFailed(ctx, "organization", "wrong_password")
	}

	if !org.Active {
		_ = loginFailed(ctx, "organization", "inactive")
		return nil, apperr.ResourceInactive("Organization is inactive")
	}

	token, err := o.tokens.IssueForOrganization(org)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	loginSucceeded(ctx, "organization")
	log.Info().Str("org_id", org.OrgID.String()).Msg("Organization signed in")

	return &OrganizationSession{Organization: org, Token: token}, nil
}

// Create registers a new tenant and returns its plaintext secret once.
func (o *Organizations) Create(ctx context.Context, ac auth.AuthContext, in NewOrganization) (*CreatedOrganization, error) {
	if err := authorize(ctx, ac, auth.ActionCreateOrganization, auth.Resource{}); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.ContactPerson.Name = strings.TrimSpace(in.ContactPerson.Name)
	in.ContactPerson.Email = normalizeEmail(in.ContactPerson.Email)
	in.ContactPerson.Phone = strings.TrimSpace(in.ContactPerson.Phone)
	in.Contact.Email = normalizeEmail(in.Contact.Email)
	in.Contact.Phone = strings.TrimSpace(in.Contact.Phone)

	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := o.hasher.Hash(in.Password)
	if err != nil {
		if auth.IsSecretError(err) {
			return nil, apperr.Validation("Validation failed", err.Error())
		}
		return nil, apperr.Internal(err)
	}

	now := o.now()
	org := &models.Organization{
		OrgID:         uuid.Must(uuid.NewV7()),
		Name:          in.Name,
		PasswordHash:  hash,
		ContactPerson: in.ContactPerson,
		Contact:       in.Contact,
		Active:        true,
		CreatedBy:     ac.SubjectID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := o.db.Stores().Organizations.Create(ctx, org); err != nil {
		return nil, apperr.FromStore(err)
	}

	log.Info().
		Str("org_id", org.OrgID.String()).
		Str("name", org.Name).
		Str("created_by", ac.SubjectID.String()).
		Msg("Created organization")

	return &CreatedOrganization{Organization: org, Password: in.Password}, nil
}

// List returns every organization, newest first.
func (o *Organizations) List(ctx context.Context, ac auth.AuthContext) ([]*models.Organization, error) {
	if err := authorize(ctx, ac, auth.ActionListOrganizations, auth.Resource{}); err != nil {
		return nil, err
	}

	orgs, err := o.db.Stores().Organizations.List(ctx, store.OrganizationFilter{})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return orgs, nil
}

// Get returns one organization.
func (o *Organizations) Get(ctx context.Context, ac auth.AuthContext, orgID uuid.UUID) (*models.Organization, error) {
	if err := authorize(ctx, ac, auth.ActionReadOrganization, auth.Resource{OrgID: &orgID}); err != nil {
		return nil, err
	}

	org, err := o.db.Stores().Organizations.Get(ctx, orgID)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return org, nil
}

// Update applies a partial update through the lifecycle pipeline.
func (o *Organizations) Update(ctx context.Context, ac auth.AuthContext, orgID uuid.UUID, in lifecycle.OrganizationUpdate) (*lifecycle.OrganizationChange, error) {
	if err := authorize(ctx, ac, auth.ActionUpdateOrganization, auth.Resource{OrgID: &orgID}); err != nil {
		return nil, err
	}
	return o.lifecycle.UpdateOrganization(ctx, orgID, in)
}

// ToggleActive flips the organization's active flag, deactivating members when it goes inactive.
func (o *Organizations) ToggleActive(ctx context.Context, ac auth.AuthContext, orgID uuid.UUID) (*lifecycle.OrganizationChange, error) {
	if err := authorize(ctx, ac, auth.ActionToggleOrganizationActive, auth.Resource{OrgID: &orgID}); err != nil {
		return nil, err
	}
	return o.lifecycle.ToggleOrganizationActive(ctx, orgID)
}

// Delete removes the organization and its members and returns how many members went.
func (o *Organizations) Delete(ctx context.Context, ac auth.AuthContext, orgID uuid.UUID) (int64, error) {
	if err := authorize(ctx, ac, auth.ActionDeleteOrganization, auth.Resource{OrgID: &orgID}); err != nil {
		return 0, err
	}
	return o.lifecycle.DeleteOrganization(ctx, orgID)
}
