package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
)

// InspectionStore implements store.InspectionStore using PostgreSQL.
// Room condition groups are stored as JSONB documents.
type InspectionStore struct {
	conn
}

var _ store.InspectionStore = (*InspectionStore)(nil)

const inspectionColumns = `
	inspection_id, owner_id, org_id, inspector_id,
	room1, room2, kitchen, notes, overall_rating,
	inspected_at, created_at, updated_at`

func scanInspection(row pgx.Row) (*models.Inspection, error) {
	var in models.Inspection
	err := row.Scan(
		&in.InspectionID,
		&in.OwnerID,
		&in.OrgID,
		&in.InspectorID,
		&in.Room1,
		&in.Room2,
		&in.Kitchen,
		&in.Notes,
		&in.OverallRating,
		&in.InspectedAt,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// Create stores a new inspection.
func (s *InspectionStore) Create(ctx context.Context, in *models.Inspection) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO inspections (` + inspectionColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := s.q.Exec(ctx, query,
		in.InspectionID,
		in.OwnerID,
		in.OrgID,
		in.InspectorID,
		in.Room1,
		in.Room2,
		in.Kitchen,
		in.Notes,
		string(in.OverallRating),
		in.InspectedAt,
		in.CreatedAt,
		in.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inspection: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves an inspection by ID.
func (s *InspectionStore) Get(ctx context.Context, inspectionID uuid.UUID) (*models.Inspection, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + inspectionColumns + ` FROM inspections WHERE inspection_id = $1`

	in, err := scanInspection(s.q.QueryRow(ctx, query, inspectionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrInspectionNotFound
		}
		return nil, fmt.Errorf("failed to get inspection: %w", mapPostgresError(err))
	}

	return in, nil
}

// List returns matching inspections, most recent inspection date first.
func (s *InspectionStore) List(ctx context.Context, filter store.InspectionFilter) ([]*models.Inspection, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		clauses []string
		args    []any
	)
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.OrgID != nil {
		args = append(args, *filter.OrgID)
		clauses = append(clauses, fmt.Sprintf("org_id = $%d", len(args)))
	}

	query := `SELECT ` + inspectionColumns + ` FROM inspections`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY inspected_at DESC, inspection_id DESC`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", mapPostgresError(err))
	}
	defer rows.Close()

	inspections := make([]*models.Inspection, 0)
	for rows.Next() {
		in, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		inspections = append(inspections, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inspections: %w", mapPostgresError(err))
	}

	return inspections, nil
}
