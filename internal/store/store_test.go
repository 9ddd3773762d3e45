package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/inspect/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestPrincipalPatchApply(t *testing.T) {
	orgID := uuid.Must(uuid.NewV7())
	base := models.Principal{
		PrincipalID: uuid.Must(uuid.NewV7()),
		Kind:        models.PrincipalKindUser,
		Email:       "jo@example.com",
		Name:        "Jo",
		Phone:       "+100",
		OrgID:       &orgID,
		Active:      true,
	}

	t.Run("empty patch changes nothing", func(t *testing.T) {
		p := base
		PrincipalPatch{}.Apply(&p)
		require.Equal(t, base, p)
	})

	t.Run("set fields are copied", func(t *testing.T) {
		p := base
		now := time.Now().UTC()
		PrincipalPatch{
			Name:        ptr("Joanne"),
			Designation: ptr("Inspector"),
			Active:      ptr(false),
			LastLoginAt: &now,
		}.Apply(&p)

		require.Equal(t, "Joanne", p.Name)
		require.Equal(t, "Inspector", p.Designation)
		require.Equal(t, "+100", p.Phone)
		require.False(t, p.Active)
		require.NotNil(t, p.LastLoginAt)
		require.Equal(t, now, *p.LastLoginAt)
		require.Equal(t, base.Email, p.Email)
	})
}

func TestOrganizationPatchApply(t *testing.T) {
	org := models.Organization{
		Name:         "acme",
		PasswordHash: "old",
		Active:       true,
		Contact:      models.OrganizationContact{Email: "ops@acme.test", Phone: "1"},
	}

	logo := "https://cdn.acme.test/logo.png"
	OrganizationPatch{
		PasswordHash: ptr("new"),
		Contact:      &models.OrganizationContact{Email: "ops@acme.test", Phone: "2", Logo: &logo},
		Active:       ptr(false),
	}.Apply(&org)

	require.Equal(t, "acme", org.Name)
	require.Equal(t, "new", org.PasswordHash)
	require.Equal(t, "2", org.Contact.Phone)
	require.Equal(t, &logo, org.Contact.Logo)
	require.False(t, org.Active)
}
