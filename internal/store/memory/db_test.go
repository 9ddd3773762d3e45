package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
)

func TestDB_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("commits all writes", func(t *testing.T) {
		db := New()
		org := newOrganization("acme", time.Now())

		err := db.Do(ctx, func(s store.Stores) error {
			if err := s.Organizations.Create(ctx, org); err != nil {
				return err
			}
			return s.Principals.Create(ctx, newMember(t, org.OrgID, "a@acme.test", models.PrincipalKindUser, time.Now()))
		})
		require.NoError(t, err)

		members, err := db.Stores().Principals.List(ctx, store.PrincipalFilter{OrgID: &org.OrgID})
		require.NoError(t, err)
		require.Len(t, members, 1)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := New()
		org := newOrganization("acme", time.Now())
		require.NoError(t, db.Stores().Organizations.Create(ctx, org))
		member := newMember(t, org.OrgID, "a@acme.test", models.PrincipalKindUser, time.Now())
		require.NoError(t, db.Stores().Principals.Create(ctx, member))

		boom := errors.New("boom")
		err := db.Do(ctx, func(s store.Stores) error {
			inactive := false
			if _, err := s.Organizations.Update(ctx, org.OrgID, store.OrganizationPatch{Active: &inactive}); err != nil {
				return err
			}
			if _, err := s.Principals.DeactivateByOrg(ctx, org.OrgID); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		gotOrg, err := db.Stores().Organizations.Get(ctx, org.OrgID)
		require.NoError(t, err)
		require.True(t, gotOrg.Active)

		gotMember, err := db.Stores().Principals.Get(ctx, member.PrincipalID)
		require.NoError(t, err)
		require.True(t, gotMember.Active)
	})

	t.Run("cancelled context does not run", func(t *testing.T) {
		db := New()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		called := false
		err := db.Do(cctx, func(store.Stores) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
		require.False(t, called)
	})

	t.Run("units are serialized", func(t *testing.T) {
		db := New()
		org := newOrganization("acme", time.Now())
		require.NoError(t, db.Stores().Organizations.Create(ctx, org))

		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = db.Do(ctx, func(s store.Stores) error {
					return s.Principals.Create(ctx, &models.Principal{
						PrincipalID: uuid.Must(uuid.NewV7()),
						Kind:        models.PrincipalKindUser,
						Email:       uuid.NewString() + "@acme.test",
						OrgID:       &org.OrgID,
						Active:      i%2 == 0,
					})
				})
			}()
		}
		wg.Wait()

		n, err := db.Stores().Principals.DeleteByOrg(ctx, org.OrgID)
		require.NoError(t, err)
		require.Equal(t, int64(20), n)
	})
}

func TestInspectionStore(t *testing.T) {
	ctx := context.Background()
	db := New()
	s := db.Stores().Inspections

	owner := uuid.Must(uuid.NewV7())
	orgID := uuid.Must(uuid.NewV7())
	base := time.Now().Add(-24 * time.Hour)

	older := &models.Inspection{InspectionID: uuid.Must(uuid.NewV7()), OwnerID: owner, OrgID: orgID, InspectedAt: base}
	newer := &models.Inspection{InspectionID: uuid.Must(uuid.NewV7()), OwnerID: owner, OrgID: orgID, InspectedAt: base.Add(time.Hour)}
	newer.Room1.Images.Floor = []string{"https://img.test/floor.jpg"}
	other := &models.Inspection{InspectionID: uuid.Must(uuid.NewV7()), OwnerID: uuid.Must(uuid.NewV7()), OrgID: orgID, InspectedAt: base.Add(2 * time.Hour)}

	for _, in := range []*models.Inspection{older, newer, other} {
		require.NoError(t, s.Create(ctx, in))
	}

	mine, err := s.List(ctx, store.InspectionFilter{OwnerID: &owner})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, newer.InspectionID, mine[0].InspectionID)
	require.Equal(t, older.InspectionID, mine[1].InspectionID)

	byOrg, err := s.List(ctx, store.InspectionFilter{OrgID: &orgID})
	require.NoError(t, err)
	require.Len(t, byOrg, 3)
	require.Equal(t, other.InspectionID, byOrg[0].InspectionID)

	got, err := s.Get(ctx, newer.InspectionID)
	require.NoError(t, err)
	got.Room1.Images.Floor[0] = "mutated"

	again, err := s.Get(ctx, newer.InspectionID)
	require.NoError(t, err)
	require.Equal(t, "https://img.test/floor.jpg", again.Room1.Images.Floor[0])

	_, err = s.Get(ctx, uuid.Must(uuid.NewV7()))
	require.ErrorIs(t, err, store.ErrInspectionNotFound)
}
