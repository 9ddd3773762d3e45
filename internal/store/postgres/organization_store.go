package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
)

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	conn
}

var _ store.OrganizationStore = (*OrganizationStore)(nil)

const organizationColumns = `
	org_id, name, password_hash,
	contact_person_name, contact_person_email, contact_person_phone,
	contact_email, contact_phone, logo_url,
	active, created_by, created_at, updated_at`

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var o models.Organization
	err := row.Scan(
		&o.OrgID,
		&o.Name,
		&o.PasswordHash,
		&o.ContactPerson.Name,
		&o.ContactPerson.Email,
		&o.ContactPerson.Phone,
		&o.Contact.Email,
		&o.Contact.Phone,
		&o.Contact.Logo,
		&o.Active,
		&o.CreatedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create creates a new organization in the database.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO organizations (` + organizationColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := s.q.Exec(ctx, query,
		org.OrgID,
		org.Name,
		org.PasswordHash,
		org.ContactPerson.Name,
		org.ContactPerson.Email,
		org.ContactPerson.Phone,
		org.Contact.Email,
		org.Contact.Phone,
		org.Contact.Logo,
		org.Active,
		org.CreatedBy,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		err = mapPostgresError(err)
		if errors.Is(err, store.ErrOrganizationAlreadyExists) {
			return err
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}

	log.Debug().
		Str("org_id", org.OrgID.String()).
		Str("name", org.Name).
		Msg("Created organization")

	return nil
}

func (s *OrganizationStore) getOne(ctx context.Context, query string, args ...any) (*models.Organization, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	org, err := scanOrganization(s.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}

	return org, nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	return s.getOne(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE org_id = $1`, orgID)
}

// Lock reads the organization row with FOR UPDATE so concurrent units touching
// the same organization are serialized.
func (s *OrganizationStore) Lock(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	return s.getOne(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE org_id = $1 FOR UPDATE`, orgID)
}

func organizationWhere(filter store.OrganizationFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.Name != "" {
		args = append(args, filter.Name)
		clauses = append(clauses, fmt.Sprintf("lower(name) = lower($%d)", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// FindOne returns the oldest organization matching the filter.
func (s *OrganizationStore) FindOne(ctx context.Context, filter store.OrganizationFilter) (*models.Organization, error) {
	where, args := organizationWhere(filter)
	return s.getOne(ctx, `SELECT `+organizationColumns+` FROM organizations`+where+` ORDER BY created_at, org_id LIMIT 1`, args...)
}

// List returns matching organizations, newest first.
func (s *OrganizationStore) List(ctx context.Context, filter store.OrganizationFilter) ([]*models.Organization, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := organizationWhere(filter)
	query := `SELECT ` + organizationColumns + ` FROM organizations` + where + ` ORDER BY created_at DESC, org_id DESC`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	orgs := make([]*models.Organization, 0)
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", mapPostgresError(err))
	}

	return orgs, nil
}

// Update applies the patch in a single statement; nil fields keep their stored value.
func (s *OrganizationStore) Update(ctx context.Context, orgID uuid.UUID, patch store.OrganizationPatch) (*models.Organization, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var cpName, cpEmail, cpPhone *string
	if cp := patch.ContactPerson; cp != nil {
		cpName, cpEmail, cpPhone = &cp.Name, &cp.Email, &cp.Phone
	}

	var email, phone, logo *string
	if c := patch.Contact; c != nil {
		email, phone, logo = &c.Email, &c.Phone, c.Logo
	}

	query := `
		UPDATE organizations SET
			name                 = COALESCE($2, name),
			password_hash        = COALESCE($3, password_hash),
			contact_person_name  = COALESCE($4, contact_person_name),
			contact_person_email = COALESCE($5, contact_person_email),
			contact_person_phone = COALESCE($6, contact_person_phone),
			contact_email        = COALESCE($7, contact_email),
			contact_phone        = COALESCE($8, contact_phone),
			logo_url             = CASE WHEN $9::boolean THEN $10 ELSE logo_url END,
			active               = COALESCE($11, active),
			updated_at           = $12
		WHERE org_id = $1
		RETURNING ` + organizationColumns

	org, err := scanOrganization(s.q.QueryRow(ctx, query,
		orgID,
		patch.Name,
		patch.PasswordHash,
		cpName,
		cpEmail,
		cpPhone,
		email,
		phone,
		patch.Contact != nil,
		logo,
		patch.Active,
		time.Now(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		err = mapPostgresError(err)
		if errors.Is(err, store.ErrOrganizationAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}

// Delete deletes an organization by ID. Members must be removed first.
func (s *OrganizationStore) Delete(ctx context.Context, orgID uuid.UUID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.q.Exec(ctx, `DELETE FROM organizations WHERE org_id = $1`, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	log.Debug().Str("org_id", orgID.String()).Msg("Deleted organization")

	return nil
}
