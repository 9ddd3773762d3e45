package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/inspect/internal/apperr"
	"github.com/wolfeidau/inspect/internal/auth"
	"github.com/wolfeidau/inspect/internal/lifecycle"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store/memory"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secret123"

type fixture struct {
	db          *memory.DB
	hasher      *auth.Hasher
	resolver    *auth.Resolver
	users       *Users
	orgs        *Organizations
	inspections *Inspections
	admin       *models.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := memory.New()

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	tokens, err := auth.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)

	resolver := auth.NewResolver(tokens, db.Stores())
	t.Cleanup(resolver.Wait)

	lc := lifecycle.NewController(db, hasher)

	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	now := time.Now().UTC()
	admin := &models.Principal{
		PrincipalID:  uuid.Must(uuid.NewV7()),
		Kind:         models.PrincipalKindSystemAdmin,
		Email:        "admin@inspect.test",
		Name:         "System Administrator",
		Phone:        "+1234567890",
		Designation:  "System Administrator",
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.Stores().Principals.Create(context.Background(), admin))

	return &fixture{
		db:          db,
		hasher:      hasher,
		resolver:    resolver,
		users:       NewUsers(db, hasher, resolver, lc),
		orgs:        NewOrganizations(db, hasher, resolver, lc),
		inspections: NewInspections(db),
		admin:       admin,
	}
}

// as builds the AuthContext the resolver would produce for p.
func as(p *models.Principal) auth.AuthContext {
	return auth.AuthContext{
		Kind:      auth.SubjectKindOf(p.Kind),
		SubjectID: p.PrincipalID,
		OrgID:     p.OrgID,
		Principal: p,
	}
}

func asOrganization(org *models.Organization) auth.AuthContext {
	id := org.OrgID
	return auth.AuthContext{
		Kind:         auth.SubjectOrganization,
		SubjectID:    org.OrgID,
		OrgID:        &id,
		Organization: org,
	}
}

func (f *fixture) createOrganization(t *testing.T, name string) *models.Organization {
	t.Helper()
	created, err := f.orgs.Create(context.Background(), as(f.admin), NewOrganization{
		Name:     name,
		Password: testPassword,
		ContactPerson: models.ContactPerson{
			Name:  "Contact " + name,
			Email: "contact@" + name + ".test",
			Phone: "+61400000000",
		},
		Contact: models.OrganizationContact{
			Email: "office@" + name + ".test",
			Phone: "+61200000000",
		},
	})
	require.NoError(t, err)
	return created.Organization
}

func newUser(email string, role models.PrincipalKind) NewUser {
	return NewUser{
		Email:       email,
		Name:        "Name of " + email,
		Phone:       "+61411111111",
		Designation: "Tenant",
		Password:    testPassword,
		Role:        role,
	}
}

func (f *fixture) createMember(t *testing.T, org *models.Organization, role models.PrincipalKind) *models.Principal {
	t.Helper()
	email := fmt.Sprintf("%s-%s@%s.test", role, uuid.NewString()[:8], org.Name)
	created, err := f.users.CreateInOrganization(context.Background(), as(f.admin), org.OrgID, newUser(email, role))
	require.NoError(t, err)
	return created.User
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}
