package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
)

// InspectionStore implements store.InspectionStore on a DB.
type InspectionStore struct {
	db   *DB
	held bool
}

var _ store.InspectionStore = (*InspectionStore)(nil)

// Create stores a new inspection.
func (s *InspectionStore) Create(ctx context.Context, inspection *models.Inspection) error {
	defer s.db.lock(s.held)()

	s.db.tables.inspections[inspection.InspectionID] = cloneInspection(inspection)

	return nil
}

// Get retrieves an inspection by ID.
func (s *InspectionStore) Get(ctx context.Context, inspectionID uuid.UUID) (*models.Inspection, error) {
	defer s.db.rlock(s.held)()

	in, exists := s.db.tables.inspections[inspectionID]
	if !exists {
		return nil, store.ErrInspectionNotFound
	}

	return cloneInspection(in), nil
}

// List returns matching inspections, most recent inspection date first.
func (s *InspectionStore) List(ctx context.Context, filter store.InspectionFilter) ([]*models.Inspection, error) {
	defer s.db.rlock(s.held)()

	result := make([]*models.Inspection, 0)
	for _, in := range s.db.tables.inspections {
		if filter.OwnerID != nil && in.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.OrgID != nil && in.OrgID != *filter.OrgID {
			continue
		}
		result = append(result, cloneInspection(in))
	}

	slices.SortFunc(result, func(a, b *models.Inspection) int {
		if c := b.InspectedAt.Compare(a.InspectedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.InspectionID.String(), a.InspectionID.String())
	})

	return result, nil
}

func cloneImages(im models.RoomImages) models.RoomImages {
	return models.RoomImages{
		Floor:  slices.Clone(im.Floor),
		Wall:   slices.Clone(im.Wall),
		Switch: slices.Clone(im.Switch),
		Window: slices.Clone(im.Window),
		Door:   slices.Clone(im.Door),
	}
}

func cloneInspection(in *models.Inspection) *models.Inspection {
	clone := *in
	clone.Room1.Images = cloneImages(in.Room1.Images)
	clone.Room2.Images = cloneImages(in.Room2.Images)
	clone.Kitchen.Images = cloneImages(in.Kitchen.Images)
	clone.Kitchen.StoveImages = slices.Clone(in.Kitchen.StoveImages)
	return &clone
}
