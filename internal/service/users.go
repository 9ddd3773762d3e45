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

// Users manages principals: login, creation, listing, status and profile.
type Users struct {
	db        store.Store
	hasher    *auth.Hasher
	tokens    TokenIssuer
	lifecycle *lifecycle.Controller
	timing    timingDigest
	now       func() time.Time
}

// NewUsers creates the user service.
func NewUsers(db store.Store, hasher *auth.Hasher, tokens TokenIssuer, lc *lifecycle.Controller) *Users {
	return &Users{
		db:        db,
		hasher:    hasher,
		tokens:    tokens,
		lifecycle: lc,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Session is a successful login.
type Session struct {
	User  *models.Principal `json:"user"`
	Token string            `json:"token"`
}

// NewUser is a request to create a principal.
type NewUser struct {
	Email          string               `json:"email" validate:"required,email"`
	Name           string               `json:"name" validate:"required,max=100"`
	Phone          string               `json:"phone" validate:"required"`
	Designation    string               `json:"designation" validate:"required,max=100"`
	Password       string               `json:"password" validate:"required"`
	Role           models.PrincipalKind `json:"role" validate:"omitempty,oneof=admin org-admin user"`
	OrganizationID *uuid.UUID           `json:"organizationId"`
}

func (n *NewUser) normalize() {
	n.Email = normalizeEmail(n.Email)
	n.Name = strings.TrimSpace(n.Name)
	n.Phone = strings.TrimSpace(n.Phone)
	n.Designation = strings.TrimSpace(n.Designation)
	if n.Role == "" {
		n.Role = models.PrincipalKindUser
	}
}

// CreatedUser is a new principal with a token it can use immediately.
type CreatedUser struct {
	User  *models.Principal `json:"user"`
	Token string            `json:"token"`
}

// ProfileUpdate changes the caller's own details. Nil or blank fields are left as is.
type ProfileUpdate struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Designation *string `json:"designation"`
}

// PasswordChange replaces the caller's password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// OrganizationSummary is the organization as shown on a member's profile.
type OrganizationSummary struct {
	ID            uuid.UUID                  `json:"id"`
	Name          string                     `json:"name"`
	Logo          *string                    `json:"logo"`
	Active        bool                       `json:"status"`
	ContactPerson models.ContactPerson       `json:"contactPerson"`
	Contact       models.OrganizationContact `json:"organizationContact"`
}

// CreatorSummary identifies the principal that created another.
type CreatorSummary struct {
	ID    uuid.UUID            `json:"id"`
	Name  string               `json:"name"`
	Email string               `json:"email"`
	Role  models.PrincipalKind `json:"role"`
}

// Profile is the caller's own record with its organization and creator.
type Profile struct {
	User         *models.Principal    `json:"user"`
	Organization *OrganizationSummary `json:"organization"`
	CreatedBy    *CreatorSummary      `json:"createdBy"`
}

// Login authenticates by email and password. Unknown emails and wrong passwords
// get the same answer; a deactivated account is only reported once the password matched.
func (u *Users) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	p, err := u.db.Stores().Principals.FindOne(ctx, store.PrincipalFilter{Email: email})
	if err != nil {
		if errors.Is(err, store.ErrPrincipalNotFound) {
			u.timing.burn(u.hasher, password)
			return nil, loginFailed(ctx, "user", "unknown_email")
		}
		return nil, apperr.FromStore(err)
	}

	if !u.hasher.Verify(password, p.PasswordHash) {
		return nil, loginFailed(ctx, "user", "wrong_password")
	}

	if !p.Active {
		_ = loginFailed(ctx, "user", "inactive")
		return nil, apperr.Unauthenticated("Account is deactivated. Please contact administrator.")
	}

	token, err := u.tokens.IssueFor(p)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := u.now()
	if updated, err := u.db.Stores().Principals.Update(ctx, p.PrincipalID, store.PrincipalPatch{LastLoginAt: &now}); err != nil {
		log.Warn().Err(err).Str("principal_id", p.PrincipalID.String()).Msg("Failed to record login time")
	} else {
		p = updated
	}

	loginSucceeded(ctx, "user")
	log.Info().Str("principal_id", p.PrincipalID.String()).Str("role", string(p.Kind)).Msg("User logged in")

	return &Session{User: p, Token: token}, nil
}

// Register creates a principal of any kind on the global path. Only the system admin
// may use it.
func (u *Users) Register(ctx context.Context, ac auth.AuthContext, in NewUser) (*CreatedUser, error) {
	in.normalize()

	if err := authorize(ctx, ac, auth.ActionCreatePrincipal, auth.Resource{TargetKind: in.Role}); err != nil {
		return nil, err
	}

	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if in.Role == models.PrincipalKindSystemAdmin {
		in.OrganizationID = nil
	} else {
		if in.OrganizationID == nil {
			return nil, apperr.Validation("Organization ID is required for non-admin users")
		}

		org, err := u.db.Stores().Organizations.Get(ctx, *in.OrganizationID)
		if err != nil {
			if errors.Is(err, store.ErrOrganizationNotFound) {
				return nil, apperr.Validation("Invalid organization ID")
			}
			return nil, apperr.FromStore(err)
		}
		if !org.Active {
			return nil, apperr.ResourceInactive("Cannot register user for inactive organization")
		}
	}

	return u.insert(ctx, ac, in)
}

// CreateInOrganization creates an org-admin or user inside orgID.
func (u *Users) CreateInOrganization(ctx context.Context, ac auth.AuthContext, orgID uuid.UUID, in NewUser) (*CreatedUser, error) {
	in.normalize()
	in.OrganizationID = &orgID

	res := auth.Resource{OrgID: &orgID, TargetKind: in.Role}

	org, err := u.db.Stores().Organizations.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			// Scope is decided before existence is revealed.
			if err := authorize(ctx, ac, auth.ActionCreatePrincipal, res); err != nil {
				return nil, err
			}
		}
		return nil, apperr.FromStore(err)
	}

	res.OrgActive = &org.Active
	if err := authorize(ctx, ac, auth.ActionCreatePrincipal, res); err != nil {
		return nil, err
	}

	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	return u.insert(ctx, ac, in)
}

// insert hashes the password and creates the principal. The organization is locked
// and rechecked so a concurrent deactivation cannot leave an active member behind.
func (u *Users) insert(ctx context.Context, ac auth.AuthContext, in NewUser) (*CreatedUser, error) {
	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		if auth.IsSecretError(err) {
			return nil, apperr.Validation("Validation failed", err.Error())
		}
		return nil, apperr.Internal(err)
	}

	now := u.now()
	creator := ac.SubjectID
	p := &models.Principal{
		PrincipalID:  uuid.Must(uuid.NewV7()),
		Kind:         in.Role,
		Email:        in.Email,
		Name:         in.Name,
		Phone:        in.Phone,
		Designation:  in.Designation,
		PasswordHash: hash,
		OrgID:        in.OrganizationID,
		CreatedBy:    &creator,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.CheckScope(); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	err = u.db.Do(ctx, func(s store.Stores) error {
		if p.OrgID != nil {
			org, err := s.Organizations.Lock(ctx, *p.OrgID)
			if err != nil {
				return err
			}
			if !org.Active {
				return apperr.ResourceInactive("Cannot create users in inactive organization")
			}
		}
		return s.Principals.Create(ctx, p)
	})
	if err != nil {
		return nil, apperr.FromStore(err)
	}

	token, err := u.tokens.IssueFor(p)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	log.Info().
		Str("principal_id", p.PrincipalID.String()).
		Str("role", string(p.Kind)).
		Str("created_by", creator.String()).
		Msg("Created user")

	return &CreatedUser{User: p, Token: token}, nil
}

// ListInOrganization lists the members of orgID, newest first.
func (u *Users) ListInOrganization(ctx context.Context, ac auth.AuthContext, orgID uuid.UUID) ([]*models.Principal, error) {
	if err := authorize(ctx, ac, auth.ActionListPrincipals, auth.Resource{OrgID: &orgID}); err != nil {
		return nil, err
	}

	s := u.db.Stores()
	if _, err := s.Organizations.Get(ctx, orgID); err != nil {
		return nil, apperr.FromStore(err)
	}

	members, err := s.Principals.List(ctx, store.PrincipalFilter{OrgID: &orgID})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return members, nil
}

// ToggleActive flips the active flag of a member of orgID.
func (u *Users) ToggleActive(ctx context.Context, ac auth.AuthContext, orgID, principalID uuid.UUID) (*models.Principal, error) {
	if _, err := u.member(ctx, ac, auth.ActionTogglePrincipalActive, orgID, principalID); err != nil {
		return nil, err
	}
	return u.lifecycle.TogglePrincipalActive(ctx, principalID)
}

// Delete permanently removes a member of orgID. Their inspections are kept.
func (u *Users) Delete(ctx context.Context, ac auth.AuthContext, orgID, principalID uuid.UUID) error {
	p, err := u.member(ctx, ac, auth.ActionDeletePrincipal, orgID, principalID)
	if err != nil {
		return err
	}

	if err := u.db.Stores().Principals.Delete(ctx, principalID); err != nil {
		return apperr.FromStore(err)
	}

	log.Info().
		Str("principal_id", principalID.String()).
		Str("org_id", orgID.String()).
		Str("email", p.Email).
		Msg("Deleted user")

	return nil
}

// member loads principalID for an action on orgID's membership. The caller's scope
// over orgID is checked before the principal is looked up.
func (u *Users) member(ctx context.Context, ac auth.AuthContext, action auth.Action, orgID, principalID uuid.UUID) (*models.Principal, error) {
	if err := authorize(ctx, ac, action, auth.Resource{OrgID: &orgID}); err != nil {
		return nil, err
	}

	p, err := u.db.Stores().Principals.Get(ctx, principalID)
	if err != nil {
		return nil, apperr.FromStore(err)
	}

	if err := authorize(ctx, ac, action, auth.Resource{OrgID: &orgID, TargetKind: p.Kind}); err != nil {
		return nil, err
	}

	if !p.BelongsTo(orgID) {
		return nil, apperr.NotFound("User not found")
	}

	return p, nil
}

// Profile returns the caller's own record with organization and creator summaries.
func (u *Users) Profile(ctx context.Context, ac auth.AuthContext) (*Profile, error) {
	self := ac.SubjectID
	if err := authorize(ctx, ac, auth.ActionReadPrincipal, auth.Resource{OwnerID: &self, OrgID: ac.OrgID}); err != nil {
		return nil, err
	}

	s := u.db.Stores()

	p, err := s.Principals.Get(ctx, self)
	if err != nil {
		return nil, apperr.FromStore(err)
	}

	profile := &Profile{User: p}

	if p.OrgID != nil && !p.IsSystemAdmin() {
		org, err := s.Organizations.Get(ctx, *p.OrgID)
		switch {
		case err == nil:
			profile.Organization = &OrganizationSummary{
				ID:            org.OrgID,
				Name:          org.Name,
				Logo:          org.Contact.Logo,
				Active:        org.Active,
				ContactPerson: org.ContactPerson,
				Contact:       org.Contact,
			}
		case !errors.Is(err, store.ErrOrganizationNotFound):
			return nil, apperr.FromStore(err)
		}
	}

	if p.CreatedBy != nil && !p.IsSystemAdmin() {
		creator, err := s.Principals.Get(ctx, *p.CreatedBy)
		switch {
		case err == nil:
			profile.CreatedBy = &CreatorSummary{
				ID:    creator.PrincipalID,
				Name:  creator.Name,
				Email: creator.Email,
				Role:  creator.Kind,
			}
		case !errors.Is(err, store.ErrPrincipalNotFound):
			return nil, apperr.FromStore(err)
		}
	}

	return profile, nil
}

// UpdateProfile changes the caller's name, phone and designation.
func (u *Users) UpdateProfile(ctx context.Context, ac auth.AuthContext, in ProfileUpdate) (*models.Principal, error) {
	self := ac.SubjectID
	if err := authorize(ctx, ac, auth.ActionUpdatePrincipal, auth.Resource{OwnerID: &self, OrgID: ac.OrgID}); err != nil {
		return nil, err
	}

	var (
		patch   store.PrincipalPatch
		details []string
	)

	if v := trimmed(in.Name); v != nil {
		if len([]rune(*v)) > models.MaxNameLength {
			details = append(details, "name must be at most 100 characters")
		}
		patch.Name = v
	}
	if v := trimmed(in.Phone); v != nil {
		patch.Phone = v
	}
	if v := trimmed(in.Designation); v != nil {
		if len([]rune(*v)) > models.MaxDesignationLength {
			details = append(details, "designation must be at most 100 characters")
		}
		patch.Designation = v
	}

	if len(details) > 0 {
		return nil, apperr.Validation("Validation failed", details...)
	}

	p, err := u.db.Stores().Principals.Update(ctx, self, patch)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return p, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (u *Users) ChangePassword(ctx context.Context, ac auth.AuthContext, in PasswordChange) error {
	self := ac.SubjectID
	if err := authorize(ctx, ac, auth.ActionUpdatePrincipal, auth.Resource{OwnerID: &self, OrgID: ac.OrgID}); err != nil {
		return err
	}

	if in.CurrentPassword == "" || in.NewPassword == "" {
		return apperr.Validation("Current password and new password are required")
	}
	if err := auth.CheckSecret(in.NewPassword); err != nil {
		return apperr.Validation("Validation failed", err.Error())
	}

	p, err := u.db.Stores().Principals.Get(ctx, self)
	if err != nil {
		return apperr.FromStore(err)
	}

	if !u.hasher.Verify(in.CurrentPassword, p.PasswordHash) {
		return apperr.Validation("Current password is incorrect")
	}

	hash, err := u.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if _, err := u.db.Stores().Principals.Update(ctx, self, store.PrincipalPatch{PasswordHash: &hash}); err != nil {
		return apperr.FromStore(err)
	}

	log.Info().Str("principal_id", self.String()).Msg("Changed password")

	return nil
}

// trimmed returns nil for nil or blank values.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
