package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/inspect/internal/auth"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
	"github.com/wolfeidau/inspect/internal/store/memory"
	"golang.org/x/crypto/bcrypt"
)

func newHasher(t *testing.T) *auth.Hasher {
	t.Helper()
	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return hasher
}

func TestEnsureSystemAdmin(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	hasher := newHasher(t)

	res, err := EnsureSystemAdmin(ctx, db, hasher, Config{})
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, DefaultAdminEmail, res.Email)

	admin, err := db.Stores().Principals.FindOne(ctx, store.PrincipalFilter{Email: DefaultAdminEmail})
	require.NoError(t, err)
	require.Equal(t, models.PrincipalKindSystemAdmin, admin.Kind)
	require.Nil(t, admin.OrgID)
	require.True(t, admin.Active)
	require.True(t, hasher.Verify(DefaultAdminPassword, admin.PasswordHash))

	// A second run leaves the existing admin alone
	res, err = EnsureSystemAdmin(ctx, db, hasher, Config{Email: "other@inspect.test", Password: "different-secret"})
	require.NoError(t, err)
	require.False(t, res.Created)
	require.Equal(t, DefaultAdminEmail, res.Email)

	kind := models.PrincipalKindSystemAdmin
	admins, err := db.Stores().Principals.List(ctx, store.PrincipalFilter{Kind: &kind})
	require.NoError(t, err)
	require.Len(t, admins, 1)
}

func TestEnsureSystemAdmin_overrides(t *testing.T) {
	ctx := context.Background()
	db := memory.New()

	res, err := EnsureSystemAdmin(ctx, db, newHasher(t), Config{
		Email:    "  Root@Example.TEST ",
		Name:     "Root",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, "root@example.test", res.Email)

	admin, err := db.Stores().Principals.FindOne(ctx, store.PrincipalFilter{Email: "root@example.test"})
	require.NoError(t, err)
	require.Equal(t, "Root", admin.Name)
	require.Equal(t, DefaultAdminPhone, admin.Phone)
}

func TestEnsureSystemAdmin_invalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "bad email", cfg: Config{Email: "not-an-email"}},
		{name: "short password", cfg: Config{Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := memory.New()

			_, err := EnsureSystemAdmin(context.Background(), db, newHasher(t), tt.cfg)
			require.Error(t, err)

			_, err = db.Stores().Principals.FindOne(context.Background(), store.PrincipalFilter{})
			require.ErrorIs(t, err, store.ErrPrincipalNotFound)
		})
	}
}
