package authz

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
)

const defaultCheckTimeout = 10 * time.Second

// Messages surfaced in the denied states. The insufficient-privilege message
// includes the identity's email and id for user-facing diagnostics.
const msgNoRoleRecord = "no role record; contact an administrator"

// ResolverOptions groups dependencies for Resolver.
type ResolverOptions struct {
	Checker RoleChecker
	// CheckTimeout bounds each remote lookup; an expired lookup transitions
	// the resolver to the error state instead of staying in checking forever.
	CheckTimeout time.Duration
	Logger       *slog.Logger
}

// Resolver owns the AuthorizationState for one session. It observes identity
// transitions via SetIdentity, issues one remote role lookup per transition,
// and applies only the most recently issued lookup's result (stale responses
// are discarded). All methods are safe for concurrent use.
type Resolver struct {
	checker RoleChecker
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	snap Snapshot
	// generation identifies the most recently issued lookup. A completed
	// lookup whose generation no longer matches is stale and is dropped.
	generation uint64
	// settled is closed whenever the resolver leaves the checking state.
	settled chan struct{}

	subs   map[int]func(Snapshot)
	nextID int
	// notifyQueue holds pending subscriber deliveries in transition order. A
	// single drain goroutine (tracked by notifying) empties it, so subscribers
	// always observe transitions in the order they were applied.
	notifyQueue []notification
	notifying   bool
}

type notification struct {
	snap Snapshot
	fns  []func(Snapshot)
}

// NewResolver constructs a Resolver in the uninitialized state.
func NewResolver(opts ResolverOptions) *Resolver {
	timeout := opts.CheckTimeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	settled := make(chan struct{})
	close(settled)
	return &Resolver{
		checker: opts.Checker,
		timeout: timeout,
		logger:  logger,
		snap:    Snapshot{Status: StatusUninitialized, IdentityLoading: true},
		settled: settled,
		subs:    make(map[int]func(Snapshot)),
	}
}

// State returns the current authorization snapshot.
func (r *Resolver) State() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Subscribe registers fn to be called after every state transition and
// returns a cancel function. The callback runs without the resolver lock.
func (r *Resolver) Subscribe(fn func(Snapshot)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// SetIdentity feeds an identity transition into the resolver. A nil identity
// moves the resolver to the not-authenticated state and invalidates any
// in-flight lookup; a non-nil identity starts a fresh role check, superseding
// any lookup still in flight.
func (r *Resolver) SetIdentity(identity *domainauth.Identity) {
	r.mu.Lock()
	r.generation++
	if identity == nil {
		snap := Snapshot{Status: StatusNotAuthenticated}
		r.applyLocked(snap)
		r.mu.Unlock()
		return
	}
	id := *identity
	gen := r.beginCheckLocked(id)
	r.mu.Unlock()

	go r.runCheck(gen, id)
}

// Recheck re-issues the role lookup for the current identity. It is the
// manual retry affordance after a denied or error state. A recheck while a
// lookup is in flight supersedes it; only the newest response is applied.
func (r *Resolver) Recheck() {
	r.mu.Lock()
	if r.snap.Identity == nil {
		r.mu.Unlock()
		return
	}
	r.generation++
	id := *r.snap.Identity
	gen := r.beginCheckLocked(id)
	r.mu.Unlock()

	go r.runCheck(gen, id)
}

// WaitSettled blocks until the resolver is out of the checking state or the
// context is done, and returns the snapshot current at that moment.
func (r *Resolver) WaitSettled(ctx context.Context) (Snapshot, error) {
	for {
		r.mu.Lock()
		snap := r.snap
		settled := r.settled
		r.mu.Unlock()

		if snap.Status != StatusChecking {
			return snap, nil
		}
		select {
		case <-settled:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// beginCheckLocked transitions to checking for the given identity and returns
// the generation the caller's lookup must present when applying its result.
func (r *Resolver) beginCheckLocked(identity domainauth.Identity) uint64 {
	id := identity
	r.applyLocked(Snapshot{
		Identity: &id,
		Status:   StatusChecking,
	})
	return r.generation
}

func (r *Resolver) runCheck(gen uint64, identity domainauth.Identity) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	result, err := r.checker.CheckRole(ctx, identity)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		// A newer lookup was issued or the identity changed while this one
		// was in flight; its result must not be applied.
		return
	}

	id := identity
	switch {
	case err != nil:
		r.logger.Warn("role check failed", "user_id", identity.ID, "error", err)
		r.applyLocked(Snapshot{
			Identity: &id,
			Status:   StatusError,
			Err:      err.Error(),
		})
	case !result.Found:
		r.applyLocked(Snapshot{
			Identity: &id,
			Status:   StatusDenied,
			Denial:   DenialNoRoleRecord,
			Err:      msgNoRoleRecord,
		})
	case result.Role == domainauth.RoleAdmin:
		r.applyLocked(Snapshot{
			Identity: &id,
			Status:   StatusAuthorized,
			Role:     result.Role,
		})
	default:
		r.applyLocked(Snapshot{
			Identity: &id,
			Status:   StatusDenied,
			Role:     result.Role,
			Denial:   DenialInsufficientRole,
			Err:      fmt.Sprintf("insufficient privileges for %s (%s)", identity.Email, identity.ID),
		})
	}
}

// applyLocked installs the snapshot, signals waiters when leaving the
// checking state, and notifies subscribers. Caller must hold r.mu.
func (r *Resolver) applyLocked(snap Snapshot) {
	wasChecking := r.snap.Status == StatusChecking
	r.snap = snap

	if snap.Status == StatusChecking {
		if !wasChecking {
			r.settled = make(chan struct{})
		}
	} else if wasChecking {
		close(r.settled)
	}

	if len(r.subs) == 0 {
		return
	}
	fns := make([]func(Snapshot), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.notifyQueue = append(r.notifyQueue, notification{snap: snap, fns: fns})
	if !r.notifying {
		r.notifying = true
		go r.drainNotifications()
	}
}

// drainNotifications delivers queued transitions one at a time, outside the
// lock, preserving the order applyLocked enqueued them in.
func (r *Resolver) drainNotifications() {
	for {
		r.mu.Lock()
		if len(r.notifyQueue) == 0 {
			r.notifying = false
			r.mu.Unlock()
			return
		}
		n := r.notifyQueue[0]
		r.notifyQueue = r.notifyQueue[1:]
		r.mu.Unlock()

		for _, fn := range n.fns {
			fn(n.snap)
		}
	}
}
