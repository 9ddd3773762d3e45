package auth

import (
	"slices"

	"github.com/google/uuid"
	"github.com/wolfeidau/inspect/internal/apperr"
	"github.com/wolfeidau/inspect/internal/models"
)

// Action is an operation a subject asks to perform.
type Action string

const (
	ActionCreatePrincipal               Action = "principal:create"
	ActionReadPrincipal                 Action = "principal:read"
	ActionListPrincipals                Action = "principal:list"
	ActionUpdatePrincipal               Action = "principal:update"
	ActionTogglePrincipalActive         Action = "principal:toggle"
	ActionDeletePrincipal               Action = "principal:delete"
	ActionCreateOrganization            Action = "organization:create"
	ActionReadOrganization              Action = "organization:read"
	ActionListOrganizations             Action = "organization:list"
	ActionUpdateOrganization            Action = "organization:update"
	ActionToggleOrganizationActive      Action = "organization:toggle"
	ActionDeleteOrganization            Action = "organization:delete"
	ActionCreateInspection              Action = "inspection:create"
	ActionReadInspection                Action = "inspection:read"
	ActionListInspectionsByOwner        Action = "inspection:list-owner"
	ActionListInspectionsByOrganization Action = "inspection:list-organization"
)

// Resource describes the target of an action as far as the request makes it known.
type Resource struct {
	// OrgID is the organization the target lives in. On principal creation a
	// non-nil OrgID means the organization-scoped path.
	OrgID *uuid.UUID

	// OwnerID is the principal the target belongs to: the principal itself, or an inspection's owner.
	OwnerID *uuid.UUID

	// TargetKind is the kind of principal being created, toggled or deleted.
	TargetKind models.PrincipalKind

	// OrgActive is the target organization's active flag, when loaded.
	OrgActive *bool
}

// DenyReason says why a decision denied.
type DenyReason int

const (
	DenyNone DenyReason = iota
	DenyUnauthenticated
	DenyForbidden
	DenyResourceInactive
	DenyNotFound
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Message string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason DenyReason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// Err converts a denial to the error taxonomy. Allowed decisions return nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case DenyUnauthenticated:
		return apperr.Unauthenticated(d.Message)
	case DenyResourceInactive:
		return apperr.ResourceInactive(d.Message)
	case DenyNotFound:
		return apperr.NotFound(d.Message)
	default:
		return apperr.Forbidden(d.Message)
	}
}

// orgAdminActions may be performed by an org-admin inside its own organization.
var orgAdminActions = []Action{
	ActionCreatePrincipal,
	ActionReadPrincipal,
	ActionListPrincipals,
	ActionTogglePrincipalActive,
	ActionDeletePrincipal,
	ActionReadOrganization,
	ActionCreateInspection,
	ActionReadInspection,
	ActionListInspectionsByOwner,
	ActionListInspectionsByOrganization,
}

// selfActions may be performed by any principal on resources it owns.
var selfActions = []Action{
	ActionReadPrincipal,
	ActionUpdatePrincipal,
	ActionCreateInspection,
	ActionReadInspection,
	ActionListInspectionsByOwner,
}

const insufficientScope = "Access denied: insufficient role or scope"

// Authorize decides whether ac may perform action on res. It is pure: it reads
// nothing but its arguments and is safe for concurrent use.
func Authorize(ac AuthContext, action Action, res Resource) Decision {
	if !ac.Authenticated() {
		return deny(DenyUnauthenticated, "Not authorized, no token")
	}

	switch action {
	case ActionCreatePrincipal:
		if res.OrgID != nil && res.TargetKind == models.PrincipalKindSystemAdmin {
			return deny(DenyForbidden, "Cannot create admin users through organization")
		}
		if res.OrgActive != nil && !*res.OrgActive {
			return deny(DenyResourceInactive, "Cannot create users in inactive organization")
		}
	case ActionTogglePrincipalActive, ActionDeletePrincipal:
		if res.TargetKind == models.PrincipalKindSystemAdmin {
			return deny(DenyForbidden, "Cannot modify admin users")
		}
	}

	owns := res.OwnerID != nil && *res.OwnerID == ac.SubjectID
	inOrg := res.OrgID != nil && ac.InOrganization(*res.OrgID)

	switch ac.Kind {
	case SubjectSystemAdmin:
		if action == ActionCreateInspection && (res.OwnerID == nil || owns) {
			return deny(DenyForbidden, "Administrators cannot own inspections")
		}
		return allow()

	case SubjectOrgAdmin:
		if owns && slices.Contains(selfActions, action) {
			return allow()
		}
		if inOrg && slices.Contains(orgAdminActions, action) {
			return allow()
		}

	case SubjectUser:
		if owns && slices.Contains(selfActions, action) {
			return allow()
		}
		if action == ActionReadOrganization && inOrg {
			return allow()
		}

	case SubjectOrganization:
		if action == ActionReadOrganization && res.OrgID != nil && *res.OrgID == ac.SubjectID {
			return allow()
		}
	}

	return deny(DenyForbidden, insufficientScope)
}
