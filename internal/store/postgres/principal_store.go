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

// PrincipalStore implements store.PrincipalStore using PostgreSQL.
type PrincipalStore struct {
	conn
}

var _ store.PrincipalStore = (*PrincipalStore)(nil)

const principalColumns = `
	principal_id, kind, email, name, phone, designation, password_hash,
	org_id, created_by, active, last_login_at, created_at, updated_at`

func scanPrincipal(row pgx.Row) (*models.Principal, error) {
	var p models.Principal
	err := row.Scan(
		&p.PrincipalID,
		&p.Kind,
		&p.Email,
		&p.Name,
		&p.Phone,
		&p.Designation,
		&p.PasswordHash,
		&p.OrgID,
		&p.CreatedBy,
		&p.Active,
		&p.LastLoginAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new principal in the database.
func (s *PrincipalStore) Create(ctx context.Context, principal *models.Principal) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO principals (` + principalColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := s.q.Exec(ctx, query,
		principal.PrincipalID,
		principal.Kind,
		strings.ToLower(principal.Email),
		principal.Name,
		principal.Phone,
		principal.Designation,
		principal.PasswordHash,
		principal.OrgID,
		principal.CreatedBy,
		principal.Active,
		principal.LastLoginAt,
		principal.CreatedAt,
		principal.UpdatedAt,
	)
	if err != nil {
		err = mapPostgresError(err)
		if errors.Is(err, store.ErrPrincipalAlreadyExists) || errors.Is(err, store.ErrOrganizationNotFound) {
			return err
		}
		return fmt.Errorf("failed to create principal: %w", err)
	}

	log.Debug().
		Str("principal_id", principal.PrincipalID.String()).
		Str("kind", string(principal.Kind)).
		Msg("Created principal")

	return nil
}

// Get retrieves a principal by ID.
func (s *PrincipalStore) Get(ctx context.Context, principalID uuid.UUID) (*models.Principal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + principalColumns + ` FROM principals WHERE principal_id = $1`

	p, err := scanPrincipal(s.q.QueryRow(ctx, query, principalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to get principal: %w", mapPostgresError(err))
	}

	return p, nil
}

// principalWhere renders the filter as a WHERE clause and its arguments.
func principalWhere(filter store.PrincipalFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.OrgID != nil {
		add("org_id = $%d", *filter.OrgID)
	}
	if filter.Kind != nil {
		add("kind = $%d", string(*filter.Kind))
	}
	if filter.Email != "" {
		add("lower(email) = lower($%d)", filter.Email)
	}
	if filter.Active != nil {
		add("active = $%d", *filter.Active)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// FindOne returns the oldest principal matching the filter.
func (s *PrincipalStore) FindOne(ctx context.Context, filter store.PrincipalFilter) (*models.Principal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := principalWhere(filter)
	query := `SELECT ` + principalColumns + ` FROM principals` + where + ` ORDER BY created_at, principal_id LIMIT 1`

	p, err := scanPrincipal(s.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to find principal: %w", mapPostgresError(err))
	}

	return p, nil
}

// List returns matching principals, newest first.
func (s *PrincipalStore) List(ctx context.Context, filter store.PrincipalFilter) ([]*models.Principal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := principalWhere(filter)
	query := `SELECT ` + principalColumns + ` FROM principals` + where + ` ORDER BY created_at DESC, principal_id DESC`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list principals: %w", mapPostgresError(err))
	}
	defer rows.Close()

	principals := make([]*models.Principal, 0)
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan principal: %w", err)
		}
		principals = append(principals, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating principals: %w", mapPostgresError(err))
	}

	return principals, nil
}

// Update applies the patch in a single statement; nil fields keep their stored value.
func (s *PrincipalStore) Update(ctx context.Context, principalID uuid.UUID, patch store.PrincipalPatch) (*models.Principal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE principals SET
			name          = COALESCE($2, name),
			phone         = COALESCE($3, phone),
			designation   = COALESCE($4, designation),
			password_hash = COALESCE($5, password_hash),
			active        = COALESCE($6, active),
			last_login_at = COALESCE($7, last_login_at),
			updated_at    = $8
		WHERE principal_id = $1
		RETURNING ` + principalColumns

	p, err := scanPrincipal(s.q.QueryRow(ctx, query,
		principalID,
		patch.Name,
		patch.Phone,
		patch.Designation,
		patch.PasswordHash,
		patch.Active,
		patch.LastLoginAt,
		time.Now(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to update principal: %w", mapPostgresError(err))
	}

	return p, nil
}

// Delete permanently removes a principal.
func (s *PrincipalStore) Delete(ctx context.Context, principalID uuid.UUID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.q.Exec(ctx, `DELETE FROM principals WHERE principal_id = $1`, principalID)
	if err != nil {
		return fmt.Errorf("failed to delete principal: %w", mapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrPrincipalNotFound
	}

	log.Debug().Str("principal_id", principalID.String()).Msg("Deleted principal")

	return nil
}

// DeactivateByOrg sets every active member of the organization inactive.
func (s *PrincipalStore) DeactivateByOrg(ctx context.Context, orgID uuid.UUID) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.q.Exec(ctx, `
		UPDATE principals SET active = FALSE, updated_at = $2
		WHERE org_id = $1 AND active
	`, orgID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate members: %w", mapPostgresError(err))
	}

	return tag.RowsAffected(), nil
}

// DeleteByOrg removes every member of the organization.
func (s *PrincipalStore) DeleteByOrg(ctx context.Context, orgID uuid.UUID) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.q.Exec(ctx, `DELETE FROM principals WHERE org_id = $1`, orgID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete members: %w", mapPostgresError(err))
	}

	return tag.RowsAffected(), nil
}
