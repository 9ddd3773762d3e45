package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/inspect/internal/models"
)

// AuthContext is the resolved identity of a request. It is built once by the
// Resolver and passed explicitly to every service call.
type AuthContext struct {
	Kind SubjectKind

	// SubjectID is the principal ID, or the organization ID for organization subjects.
	SubjectID uuid.UUID

	// OrgID is the subject's organization. Nil for the system admin.
	OrgID *uuid.UUID

	Principal    *models.Principal    // Nil for organization subjects
	Organization *models.Organization // Set for organization subjects only
}

// Authenticated reports whether a subject was resolved.
func (ac AuthContext) Authenticated() bool {
	return ac.Kind != "" && ac.SubjectID != uuid.Nil
}

// IsSystemAdmin reports whether the subject is the global administrator.
func (ac AuthContext) IsSystemAdmin() bool {
	return ac.Kind == SubjectSystemAdmin
}

// InOrganization reports whether the subject is scoped to orgID.
func (ac AuthContext) InOrganization(orgID uuid.UUID) bool {
	return ac.OrgID != nil && *ac.OrgID == orgID
}

type contextKey int

const (
	authContextKey contextKey = iota
)

// WithAuthContext returns a copy of ctx carrying ac.
func WithAuthContext(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// FromContext extracts the resolved identity from the request context.
// Returns false if the request was not authenticated.
func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey).(AuthContext)
	return ac, ok
}
