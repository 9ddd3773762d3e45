package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
)

func newOrganization(name string, createdAt time.Time) *models.Organization {
	return &models.Organization{
		OrgID:        uuid.Must(uuid.NewV7()),
		Name:         name,
		PasswordHash: "hash",
		ContactPerson: models.ContactPerson{
			Name:  "Pat",
			Email: "pat@" + name + ".test",
			Phone: "+61000",
		},
		Contact:   models.OrganizationContact{Email: "ops@" + name + ".test", Phone: "+61001"},
		Active:    true,
		CreatedBy: uuid.Must(uuid.NewV7()),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOrganizationStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		st := NewOrganizationStore()
		org := newOrganization("acme", time.Now())
		require.NoError(t, st.Create(ctx, org))

		got, err := st.Get(ctx, org.OrgID)
		require.NoError(t, err)
		require.Equal(t, "acme", got.Name)
		require.True(t, got.Active)
	})

	t.Run("duplicate name returns error", func(t *testing.T) {
		st := NewOrganizationStore()
		require.NoError(t, st.Create(ctx, newOrganization("acme", time.Now())))
		require.ErrorIs(t, st.Create(ctx, newOrganization("ACME", time.Now())), store.ErrOrganizationAlreadyExists)
	})

	t.Run("get missing", func(t *testing.T) {
		st := NewOrganizationStore()
		_, err := st.Get(ctx, uuid.Must(uuid.NewV7()))
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})
}

func TestOrganizationStore_ListAndFind(t *testing.T) {
	ctx := context.Background()
	st := NewOrganizationStore()

	base := time.Now().Add(-time.Hour)
	older := newOrganization("older", base)
	newer := newOrganization("newer", base.Add(time.Minute))
	newer.Active = false
	require.NoError(t, st.Create(ctx, older))
	require.NoError(t, st.Create(ctx, newer))

	all, err := st.List(ctx, store.OrganizationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, newer.OrgID, all[0].OrgID)

	active := true
	onlyActive, err := st.List(ctx, store.OrganizationFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	require.Equal(t, older.OrgID, onlyActive[0].OrgID)

	found, err := st.FindOne(ctx, store.OrganizationFilter{Name: "Newer"})
	require.NoError(t, err)
	require.Equal(t, newer.OrgID, found.OrgID)

	_, err = st.FindOne(ctx, store.OrganizationFilter{Name: "missing"})
	require.ErrorIs(t, err, store.ErrOrganizationNotFound)
}

func TestOrganizationStore_Update(t *testing.T) {
	ctx := context.Background()
	st := NewOrganizationStore()

	acme := newOrganization("acme", time.Now())
	globex := newOrganization("globex", time.Now())
	require.NoError(t, st.Create(ctx, acme))
	require.NoError(t, st.Create(ctx, globex))

	active := false
	got, err := st.Update(ctx, acme.OrgID, store.OrganizationPatch{Active: &active})
	require.NoError(t, err)
	require.False(t, got.Active)

	taken := "globex"
	_, err = st.Update(ctx, acme.OrgID, store.OrganizationPatch{Name: &taken})
	require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)

	same := "acme"
	_, err = st.Update(ctx, acme.OrgID, store.OrganizationPatch{Name: &same})
	require.NoError(t, err)

	_, err = st.Update(ctx, uuid.Must(uuid.NewV7()), store.OrganizationPatch{Active: &active})
	require.ErrorIs(t, err, store.ErrOrganizationNotFound)
}

func TestOrganizationStore_Delete(t *testing.T) {
	ctx := context.Background()
	st := NewOrganizationStore()
	org := newOrganization("acme", time.Now())
	require.NoError(t, st.Create(ctx, org))

	require.NoError(t, st.Delete(ctx, org.OrgID))
	require.ErrorIs(t, st.Delete(ctx, org.OrgID), store.ErrOrganizationNotFound)
}
