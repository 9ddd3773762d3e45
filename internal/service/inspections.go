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
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/rating"
	"github.com/wolfeidau/inspect/internal/store"
	"github.com/wolfeidau/inspect/internal/telemetry"
	"github.com/wolfeidau/inspect/internal/validate"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Inspections records and reads inspections. Records are append-only.
type Inspections struct {
	db  store.Store
	now func() time.Time
}

// NewInspections creates the inspection service.
func NewInspections(db store.Store) *Inspections {
	return &Inspections{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// NewInspection is a request to record an inspection. Any client supplied overall
// rating is not part of the request; it is always derived.
type NewInspection struct {
	OwnerID     *uuid.UUID               `json:"userId"` // Defaults to the caller
	Room1       models.RoomConditions    `json:"room1"`
	Room2       models.RoomConditions    `json:"room2"`
	Kitchen     models.KitchenConditions `json:"kitchen"`
	Notes       string                   `json:"notes" validate:"max=1000"`
	InspectedAt *time.Time               `json:"inspectionDate"`
}

// Create validates the request, fills defaults, derives the rating and stores it.
// The caller is always the inspector.
func (s *Inspections) Create(ctx context.Context, ac auth.AuthContext, in NewInspection) (*models.Inspection, error) {
	ownerID := ac.SubjectID
	if in.OwnerID != nil {
		ownerID = *in.OwnerID
	}

	owner, err := s.owner(ctx, ac, ownerID)
	if err != nil {
		return nil, err
	}

	in.Notes = strings.TrimSpace(in.Notes)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	in.Room1.ApplyDefaults()
	in.Room2.ApplyDefaults()
	in.Kitchen.ApplyDefaults()

	now := s.now()
	inspectedAt := now
	if in.InspectedAt != nil {
		inspectedAt = in.InspectedAt.UTC()
	}

	inspection := &models.Inspection{
		InspectionID: uuid.Must(uuid.NewV7()),
		OwnerID:      owner.PrincipalID,
		OrgID:        *owner.OrgID,
		InspectorID:  ac.SubjectID,
		Room1:        in.Room1,
		Room2:        in.Room2,
		Kitchen:      in.Kitchen,
		Notes:        in.Notes,
		InspectedAt:  inspectedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	inspection.OverallRating = rating.ForInspection(inspection)

	if err := s.db.Stores().Inspections.Create(ctx, inspection); err != nil {
		return nil, apperr.FromStore(err)
	}

	telemetry.GetMetrics().InspectionsCreatedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("rating", string(inspection.OverallRating))))

	log.Info().
		Str("inspection_id", inspection.InspectionID.String()).
		Str("owner_id", inspection.OwnerID.String()).
		Str("org_id", inspection.OrgID.String()).
		Str("rating", string(inspection.OverallRating)).
		Msg("Recorded inspection")

	return inspection, nil
}

// owner resolves and authorizes the inspection owner. Owners are active organization members.
func (s *Inspections) owner(ctx context.Context, ac auth.AuthContext, ownerID uuid.UUID) (*models.Principal, error) {
	res := auth.Resource{OwnerID: &ownerID}
	if ownerID == ac.SubjectID {
		res.OrgID = ac.OrgID
	}

	owner, err := s.db.Stores().Principals.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrPrincipalNotFound) {
			if err := authorize(ctx, ac, auth.ActionCreateInspection, res); err != nil {
				return nil, err
			}
		}
		return nil, apperr.FromStore(err)
	}

	res.OrgID = owner.OrgID
	if err := authorize(ctx, ac, auth.ActionCreateInspection, res); err != nil {
		return nil, err
	}

	if owner.IsSystemAdmin() || owner.OrgID == nil {
		return nil, apperr.Validation("Inspection owner must be an organization member")
	}
	if !owner.Active {
		return nil, apperr.ResourceInactive("Inspection owner is deactivated")
	}

	return owner, nil
}

// ListMine returns the caller's inspections, most recent first.
func (s *Inspections) ListMine(ctx context.Context, ac auth.AuthContext) ([]*models.Inspection, error) {
	self := ac.SubjectID
	if err := authorize(ctx, ac, auth.ActionListInspectionsByOwner, auth.Resource{OwnerID: &self, OrgID: ac.OrgID}); err != nil {
		return nil, err
	}

	out, err := s.db.Stores().Inspections.List(ctx, store.InspectionFilter{OwnerID: &self})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return out, nil
}

// Get returns one inspection to its owner or to an administrator of its organization.
func (s *Inspections) Get(ctx context.Context, ac auth.AuthContext, inspectionID uuid.UUID) (*models.Inspection, error) {
	if !ac.Authenticated() {
		return nil, auth.Authorize(ac, auth.ActionReadInspection, auth.Resource{}).Err()
	}

	inspection, err := s.db.Stores().Inspections.Get(ctx, inspectionID)
	if err != nil {
		return nil, apperr.FromStore(err)
	}

	res := auth.Resource{OwnerID: &inspection.OwnerID, OrgID: &inspection.OrgID}
	if err := authorize(ctx, ac, auth.ActionReadInspection, res); err != nil {
		return nil, err
	}

	return inspection, nil
}

// ListByOrganization returns every inspection recorded in orgID, most recent first.
func (s *Inspections) ListByOrganization(ctx context.Context, ac auth.AuthContext, orgID uuid.UUID) ([]*models.Inspection, error) {
	if err := authorize(ctx, ac, auth.ActionListInspectionsByOrganization, auth.Resource{OrgID: &orgID}); err != nil {
		return nil, err
	}

	st := s.db.Stores()
	if _, err := st.Organizations.Get(ctx, orgID); err != nil {
		return nil, apperr.FromStore(err)
	}

	out, err := st.Inspections.List(ctx, store.InspectionFilter{OrgID: &orgID})
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return out, nil
}
