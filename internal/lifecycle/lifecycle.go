// Package lifecycle owns the state changes that must propagate from an organization
// to its members. Every operation runs as one store.UnitOfWork.
package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/apperr"
	"github.com/wolfeidau/inspect/internal/auth"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
	"github.com/wolfeidau/inspect/internal/telemetry"
	"github.com/wolfeidau/inspect/internal/validate"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Controller applies organization and principal status changes with their cascades.
// Callers authorize the triggering action; the cascade writes are never authorized
// individually.
type Controller struct {
	uow    store.UnitOfWork
	hasher *auth.Hasher
	now    func() time.Time
}

// NewController creates a controller running its units on uow.
func NewController(uow store.UnitOfWork, hasher *auth.Hasher) *Controller {
	return &Controller{
		uow:    uow,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// OrganizationChange is the outcome of an organization write.
type OrganizationChange struct {
	Organization *models.Organization
	Deactivated  int64 // Members forced inactive by the cascade
}

// OrganizationUpdate is a partial update. Nil fields are left unchanged.
type OrganizationUpdate struct {
	Name          *string
	Password      *string // Plaintext; hashed before persisting
	ContactPerson *models.ContactPerson
	Contact       *models.OrganizationContact
	Active        *bool
}

// ToggleOrganizationActive flips the organization's active flag. Deactivation forces
// every member inactive in the same unit; reactivation leaves members as they are.
func (c *Controller) ToggleOrganizationActive(ctx context.Context, orgID uuid.UUID) (*OrganizationChange, error) {
	var change *OrganizationChange

	err := c.run(ctx, "toggle_organization", func(s store.Stores) error {
		org, err := s.Organizations.Lock(ctx, orgID)
		if err != nil {
			return err
		}

		active := !org.Active
		change, err = c.applyOrganization(ctx, s, org, store.OrganizationPatch{Active: &active})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("org_id", orgID.String()).
		Bool("active", change.Organization.Active).
		Int64("deactivated", change.Deactivated).
		Msg("Toggled organization status")

	return change, nil
}

// UpdateOrganization validates the update, hashes a changed secret, then persists it
// in one unit that cascades if the active flag goes from true to false.
func (c *Controller) UpdateOrganization(ctx context.Context, orgID uuid.UUID, update OrganizationUpdate) (*OrganizationChange, error) {
	patch, err := c.organizationPatch(update)
	if err != nil {
		return nil, err
	}

	var change *OrganizationChange

	err = c.run(ctx, "update_organization", func(s store.Stores) error {
		org, err := s.Organizations.Lock(ctx, orgID)
		if err != nil {
			return err
		}

		change, err = c.applyOrganization(ctx, s, org, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("org_id", orgID.String()).
		Int64("deactivated", change.Deactivated).
		Msg("Updated organization")

	return change, nil
}

// DeleteOrganization removes every member, then the organization, and returns the
// number of members removed. Inspections are kept as historical records.
func (c *Controller) DeleteOrganization(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var removed int64

	err := c.run(ctx, "delete_organization", func(s store.Stores) error {
		if _, err := s.Organizations.Lock(ctx, orgID); err != nil {
			return err
		}

		n, err := s.Principals.DeleteByOrg(ctx, orgID)
		if err != nil {
			return err
		}

		if err := s.Organizations.Delete(ctx, orgID); err != nil {
			return err
		}

		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	m := telemetry.GetMetrics()
	m.OrganizationsDeleted.Add(ctx, 1)
	m.PrincipalsCascaded.Add(ctx, removed, metric.WithAttributes(attribute.String("op", "delete")))

	log.Info().
		Str("org_id", orgID.String()).
		Int64("members_deleted", removed).
		Msg("Deleted organization")

	return removed, nil
}

// TogglePrincipalActive flips one principal's active flag. The system admin cannot be
// toggled, and a member of an inactive organization cannot be reactivated.
func (c *Controller) TogglePrincipalActive(ctx context.Context, principalID uuid.UUID) (*models.Principal, error) {
	var updated *models.Principal

	err := c.run(ctx, "toggle_principal", func(s store.Stores) error {
		p, err := s.Principals.Get(ctx, principalID)
		if err != nil {
			return err
		}

		if p.IsSystemAdmin() {
			return apperr.Forbidden("Cannot modify admin users")
		}

		active := !p.Active
		if active && p.OrgID != nil {
			// Serializes with a concurrent organization cascade.
			org, err := s.Organizations.Lock(ctx, *p.OrgID)
			if err != nil {
				return err
			}
			if !org.Active {
				return apperr.ResourceInactive("Cannot activate users in inactive organization")
			}
		}

		updated, err = s.Principals.Update(ctx, principalID, store.PrincipalPatch{Active: &active})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("principal_id", principalID.String()).
		Bool("active", updated.Active).
		Msg("Toggled user status")

	return updated, nil
}

// applyOrganization persists patch and runs the deactivation cascade when the
// organization goes from active to inactive.
func (c *Controller) applyOrganization(ctx context.Context, s store.Stores, current *models.Organization, patch store.OrganizationPatch) (*OrganizationChange, error) {
	updated, err := s.Organizations.Update(ctx, current.OrgID, patch)
	if err != nil {
		return nil, err
	}

	change := &OrganizationChange{Organization: updated}

	if current.Active && !updated.Active {
		n, err := s.Principals.DeactivateByOrg(ctx, current.OrgID)
		if err != nil {
			return nil, err
		}
		change.Deactivated = n

		m := telemetry.GetMetrics()
		m.CascadesTotal.Add(ctx, 1)
		m.PrincipalsCascaded.Add(ctx, n, metric.WithAttributes(attribute.String("op", "deactivate")))
	}

	return change, nil
}

// organizationPatch validates an update and converts it to a store patch.
func (c *Controller) organizationPatch(update OrganizationUpdate) (store.OrganizationPatch, error) {
	var details []string

	patch := store.OrganizationPatch{
		ContactPerson: update.ContactPerson,
		Contact:       update.Contact,
		Active:        update.Active,
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		switch {
		case name == "":
			details = append(details, "organizationname is required")
		case len([]rune(name)) > models.MaxNameLength:
			details = append(details, "organizationname must be at most 100 characters")
		}
		patch.Name = &name
	}

	if update.ContactPerson != nil {
		if err := validate.Struct(update.ContactPerson); err != nil {
			return patch, err
		}
	}
	if update.Contact != nil {
		if err := validate.Struct(update.Contact); err != nil {
			return patch, err
		}
	}

	if update.Password != nil {
		if err := auth.CheckSecret(*update.Password); err != nil {
			details = append(details, err.Error())
		}
	}

	if len(details) > 0 {
		return patch, apperr.Validation("Validation failed", details...)
	}

	if update.Password != nil {
		hash, err := c.hasher.Hash(*update.Password)
		if err != nil {
			return patch, apperr.Internal(err)
		}
		patch.PasswordHash = &hash
	}

	return patch, nil
}

// run executes fn as one unit of work, recording its duration and translating failures.
func (c *Controller) run(ctx context.Context, op string, fn func(store.Stores) error) error {
	started := c.now()

	err := c.uow.Do(ctx, fn)

	telemetry.GetMetrics().LifecycleUnitDuration.Record(ctx,
		float64(c.now().Sub(started).Milliseconds()),
		metric.WithAttributes(attribute.String("op", op), attribute.Bool("ok", err == nil)))

	if err != nil {
		log.Error().Err(err).Str("op", op).Msg("Lifecycle unit failed")
		return translate(err)
	}
	return nil
}

// translate maps unit failures. Anything the stores don't classify is treated as a
// storage failure and reported transient.
func translate(err error) error {
	err = apperr.FromStore(err)
	if apperr.KindOf(err) == apperr.KindInternal {
		return apperr.Transient(err)
	}
	return err
}
