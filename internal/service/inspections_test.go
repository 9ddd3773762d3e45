package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/inspect/internal/apperr"
	"github.com/wolfeidau/inspect/internal/auth"
	"github.com/wolfeidau/inspect/internal/models"
)

func TestInspections_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	acme := f.createOrganization(t, "acme")
	user := f.createMember(t, acme, models.PrincipalKindUser)

	t.Run("defaults are applied and the rating derived", func(t *testing.T) {
		in, err := f.inspections.Create(ctx, as(user), NewInspection{Notes: "  move-in  "})
		require.NoError(t, err)

		require.Equal(t, user.PrincipalID, in.OwnerID)
		require.Equal(t, user.PrincipalID, in.InspectorID)
		require.Equal(t, acme.OrgID, in.OrgID)
		require.Equal(t, "move-in", in.Notes)
		require.Equal(t, models.ConditionFair, in.Room1.Floor)
		require.Equal(t, models.ConditionWorking, in.Kitchen.Stove)
		require.NotNil(t, in.Room2.Images.Door)
		require.NotNil(t, in.Kitchen.StoveImages)
		require.Equal(t, models.RatingFair, in.OverallRating)
		require.False(t, in.InspectedAt.IsZero())
	})

	t.Run("adverse conditions drive the rating", func(t *testing.T) {
		in, err := f.inspections.Create(ctx, as(user), NewInspection{
			Room1: models.RoomConditions{
				Floor:  models.ConditionDamaged,
				Wall:   models.ConditionPoor,
				Switch: models.ConditionNotWorking,
				Door:   models.ConditionNotLocking,
			},
			Kitchen: models.KitchenConditions{Stove: models.ConditionMissing},
		})
		require.NoError(t, err)
		require.Equal(t, models.RatingPoor, in.OverallRating)
	})

	t.Run("out of set condition is rejected", func(t *testing.T) {
		_, err := f.inspections.Create(ctx, as(user), NewInspection{
			Kitchen: models.KitchenConditions{Stove: models.ConditionExcellent},
		})
		requireKind(t, err, apperr.KindValidation)
	})

	t.Run("notes are limited", func(t *testing.T) {
		_, err := f.inspections.Create(ctx, as(user), NewInspection{Notes: strings.Repeat("é", 1001)})
		requireKind(t, err, apperr.KindValidation)

		_, err = f.inspections.Create(ctx, as(user), NewInspection{Notes: strings.Repeat("é", 1000)})
		require.NoError(t, err)
	})

	t.Run("inspection date is kept", func(t *testing.T) {
		when := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
		in, err := f.inspections.Create(ctx, as(user), NewInspection{InspectedAt: &when})
		require.NoError(t, err)
		require.True(t, when.Equal(in.InspectedAt))
	})
}

func TestInspections_CreateOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	acme := f.createOrganization(t, "acme")
	globex := f.createOrganization(t, "globex")
	acmeAdmin := f.createMember(t, acme, models.PrincipalKindOrgAdmin)
	acmeUser := f.createMember(t, acme, models.PrincipalKindUser)
	acmeOther := f.createMember(t, acme, models.PrincipalKindUser)
	globexAdmin := f.createMember(t, globex, models.PrincipalKindOrgAdmin)

	missing := uuid.Must(uuid.NewV7())

	tests := []struct {
		name   string
		caller auth.AuthContext
		owner  *uuid.UUID
		want   apperr.Kind
		ok     bool
	}{
		{name: "org admin for a member", caller: as(acmeAdmin), owner: &acmeUser.PrincipalID, ok: true},
		{name: "system admin for a member", caller: as(f.admin), owner: &acmeUser.PrincipalID, ok: true},
		{name: "org admin for itself", caller: as(acmeAdmin), ok: true},
		{name: "system admin for itself", caller: as(f.admin), want: apperr.KindForbidden},
		{name: "system admin naming itself", caller: as(f.admin), owner: &f.admin.PrincipalID, want: apperr.KindForbidden},
		{name: "user for another user", caller: as(acmeUser), owner: &acmeOther.PrincipalID, want: apperr.KindForbidden},
		{name: "org admin of another organization", caller: as(globexAdmin), owner: &acmeUser.PrincipalID, want: apperr.KindForbidden},
		{name: "org admin naming an unknown owner", caller: as(globexAdmin), owner: &missing, want: apperr.KindForbidden},
		{name: "system admin naming an unknown owner", caller: as(f.admin), owner: &missing, want: apperr.KindNotFound},
		{name: "organization subject", caller: asOrganization(acme), want: apperr.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := f.inspections.Create(ctx, tt.caller, NewInspection{OwnerID: tt.owner})
			if !tt.ok {
				requireKind(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.caller.SubjectID, in.InspectorID)
			require.Equal(t, acme.OrgID, in.OrgID)
		})
	}

	t.Run("deactivated owner", func(t *testing.T) {
		_, err := f.users.ToggleActive(ctx, as(acmeAdmin), acme.OrgID, acmeOther.PrincipalID)
		require.NoError(t, err)

		_, err = f.inspections.Create(ctx, as(acmeAdmin), NewInspection{OwnerID: &acmeOther.PrincipalID})
		requireKind(t, err, apperr.KindResourceInactive)
	})
}

func TestInspections_Read(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	acme := f.createOrganization(t, "acme")
	globex := f.createOrganization(t, "globex")
	acmeAdmin := f.createMember(t, acme, models.PrincipalKindOrgAdmin)
	acmeUser := f.createMember(t, acme, models.PrincipalKindUser)
	acmeOther := f.createMember(t, acme, models.PrincipalKindUser)
	globexAdmin := f.createMember(t, globex, models.PrincipalKindOrgAdmin)

	older := time.Now().UTC().Add(-48 * time.Hour)
	first, err := f.inspections.Create(ctx, as(acmeUser), NewInspection{InspectedAt: &older})
	require.NoError(t, err)
	second, err := f.inspections.Create(ctx, as(acmeUser), NewInspection{})
	require.NoError(t, err)
	_, err = f.inspections.Create(ctx, as(acmeOther), NewInspection{})
	require.NoError(t, err)

	t.Run("list mine is newest first", func(t *testing.T) {
		mine, err := f.inspections.ListMine(ctx, as(acmeUser))
		require.NoError(t, err)
		require.Len(t, mine, 2)
		require.Equal(t, second.InspectionID, mine[0].InspectionID)
		require.Equal(t, first.InspectionID, mine[1].InspectionID)
	})

	t.Run("get", func(t *testing.T) {
		tests := []struct {
			name   string
			caller auth.AuthContext
			id     uuid.UUID
			want   apperr.Kind
			ok     bool
		}{
			{name: "owner", caller: as(acmeUser), id: first.InspectionID, ok: true},
			{name: "org admin of the organization", caller: as(acmeAdmin), id: first.InspectionID, ok: true},
			{name: "system admin", caller: as(f.admin), id: first.InspectionID, ok: true},
			{name: "another user in the organization", caller: as(acmeOther), id: first.InspectionID, want: apperr.KindForbidden},
			{name: "org admin of another organization", caller: as(globexAdmin), id: first.InspectionID, want: apperr.KindForbidden},
			{name: "unknown inspection", caller: as(acmeUser), id: uuid.Must(uuid.NewV7()), want: apperr.KindNotFound},
			{name: "anonymous", caller: auth.AuthContext{}, id: first.InspectionID, want: apperr.KindUnauthenticated},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in, err := f.inspections.Get(ctx, tt.caller, tt.id)
				if !tt.ok {
					requireKind(t, err, tt.want)
					return
				}
				require.NoError(t, err)
				require.Equal(t, tt.id, in.InspectionID)
			})
		}
	})

	t.Run("list by organization", func(t *testing.T) {
		all, err := f.inspections.ListByOrganization(ctx, as(acmeAdmin), acme.OrgID)
		require.NoError(t, err)
		require.Len(t, all, 3)

		_, err = f.inspections.ListByOrganization(ctx, as(globexAdmin), acme.OrgID)
		requireKind(t, err, apperr.KindForbidden)

		_, err = f.inspections.ListByOrganization(ctx, as(acmeUser), acme.OrgID)
		requireKind(t, err, apperr.KindForbidden)

		_, err = f.inspections.ListByOrganization(ctx, as(f.admin), uuid.Must(uuid.NewV7()))
		requireKind(t, err, apperr.KindNotFound)
	})

	t.Run("records outlive their owner", func(t *testing.T) {
		require.NoError(t, f.users.Delete(ctx, as(acmeAdmin), acme.OrgID, acmeUser.PrincipalID))

		in, err := f.inspections.Get(ctx, as(acmeAdmin), first.InspectionID)
		require.NoError(t, err)
		require.Equal(t, acmeUser.PrincipalID, in.OwnerID)
	})
}
