package authz

// Package authz implements the admin-authorization resolution core: a state
// container that tracks the current identity, resolves its role against the
// role store, and a pure guard that projects the combined state into a
// rendering decision. All remote failures are converted into state here and
// never propagated to callers.

import (
	"context"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
)

// Status is the lifecycle state of a role resolution.
type Status string

const (
	// StatusUninitialized means no identity signal has been received yet.
	StatusUninitialized Status = "uninitialized"
	// StatusNotAuthenticated means the identity is absent; the role stays unresolved.
	StatusNotAuthenticated Status = "not_authenticated"
	// StatusChecking means a role lookup is in flight for the current identity.
	StatusChecking Status = "checking"
	// StatusAuthorized means the identity holds the admin role.
	StatusAuthorized Status = "authorized"
	// StatusDenied means the role resolved but does not grant access.
	StatusDenied Status = "denied"
	// StatusError means the lookup failed; a retry may succeed.
	StatusError Status = "error"
)

// DenialCode distinguishes the two non-retryable denial shapes so the UI can
// offer "request access" instead of "retry".
type DenialCode string

const (
	// DenialNone is set when the resolution is not in the denied state.
	DenialNone DenialCode = ""
	// DenialInsufficientRole means a role record exists but is not admin.
	DenialInsufficientRole DenialCode = "insufficient_role"
	// DenialNoRoleRecord means no role record exists for the identity.
	DenialNoRoleRecord DenialCode = "no_role_record"
)

// Snapshot is the authorization state tuple observed by guards and handlers.
// It is ephemeral: rebuilt from scratch for each session and recomputed
// whenever the identity changes.
type Snapshot struct {
	Identity        *domainauth.Identity
	IdentityLoading bool
	Status          Status
	Role            domainauth.Role // set only after a successful lookup
	Denial          DenialCode
	Err             string // human-readable detail for denied/error states
}

// CheckResult is the outcome of a single remote role lookup.
// Found is false when the identity has no role record at all; that case must
// surface as a distinct denial rather than silently defaulting to any role.
type CheckResult struct {
	Role  domainauth.Role
	Found bool
}

// RoleChecker performs exactly one remote role lookup for an identity.
// Implementations must be read-only: a check never mutates stored data.
type RoleChecker interface {
	CheckRole(ctx context.Context, identity domainauth.Identity) (CheckResult, error)
}

// RoleCheckerFunc adapts a function to the RoleChecker interface.
type RoleCheckerFunc func(ctx context.Context, identity domainauth.Identity) (CheckResult, error)

func (f RoleCheckerFunc) CheckRole(ctx context.Context, identity domainauth.Identity) (CheckResult, error) {
	return f(ctx, identity)
}
