package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/inspect/internal/models"
)

var ErrInspectionNotFound = errors.New("inspection not found")

// InspectionFilter narrows List. Zero fields match everything.
type InspectionFilter struct {
	OwnerID *uuid.UUID
	OrgID   *uuid.UUID
}

// InspectionStore persists inspection records. Records are append-only.
type InspectionStore interface {
	// Create stores a new inspection.
	Create(ctx context.Context, inspection *models.Inspection) error

	// Get retrieves an inspection by ID.
	// Returns ErrInspectionNotFound if the inspection doesn't exist.
	Get(ctx context.Context, inspectionID uuid.UUID) (*models.Inspection, error)

	// List returns matching inspections, most recent inspection date first.
	List(ctx context.Context, filter InspectionFilter) ([]*models.Inspection, error)
}
