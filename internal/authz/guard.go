package authz

// Outcome is the rendering decision for a guarded route.
type Outcome string

const (
	// OutcomeLoading means the identity or role resolution is still pending.
	OutcomeLoading Outcome = "loading"
	// OutcomeSignInRequired means no identity is present.
	OutcomeSignInRequired Outcome = "sign_in_required"
	// OutcomeAccessError means the role lookup failed; retry may succeed.
	OutcomeAccessError Outcome = "access_error"
	// OutcomeAccessDenied means the identity is not authorized; retrying
	// without an external role change will not help.
	OutcomeAccessDenied Outcome = "access_denied"
	// OutcomeContent means the protected content may be rendered.
	OutcomeContent Outcome = "content"
)

// Decide projects an authorization snapshot into exactly one outcome.
// It is a pure function of its input: identical snapshots always yield
// identical outcomes, independent of call order or prior history.
//
// Decision order, first match wins:
//  1. identity still loading, or a role lookup in flight -> loading
//  2. identity absent -> sign-in required
//  3. lookup failed (not a known denial) -> access error, retryable
//  4. role not authorized -> access denied, non-retryable
//  5. otherwise -> content
func Decide(snap Snapshot) Outcome {
	if snap.IdentityLoading || snap.Status == StatusChecking {
		return OutcomeLoading
	}
	if snap.Identity == nil {
		return OutcomeSignInRequired
	}
	if snap.Status == StatusUninitialized {
		// Identity known but no check has been issued yet.
		return OutcomeLoading
	}
	if snap.Status == StatusError {
		return OutcomeAccessError
	}
	if snap.Status != StatusAuthorized {
		return OutcomeAccessDenied
	}
	return OutcomeContent
}
