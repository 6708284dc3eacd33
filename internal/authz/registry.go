package authz

import (
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
)

// Registry holds one Resolver per active session so that the authorization
// state survives across requests within a session but is rebuilt from scratch
// for each new session. Nothing is persisted: a restart clears all state.
type Registry struct {
	checker RoleChecker
	timeout time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	resolvers map[string]*Resolver
}

// RegistryOptions groups dependencies for Registry.
type RegistryOptions struct {
	Checker      RoleChecker
	CheckTimeout time.Duration
	Logger       *slog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry(opts RegistryOptions) *Registry {
	return &Registry{
		checker:   opts.Checker,
		timeout:   opts.CheckTimeout,
		logger:    opts.Logger,
		resolvers: make(map[string]*Resolver),
	}
}

// ResolverFor returns the resolver for the session, creating it and feeding
// the session identity on first sight. Expired sessions are dropped and
// treated as absent.
func (g *Registry) ResolverFor(session *domainauth.Session) *Resolver {
	if session == nil {
		return nil
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		g.Drop(session.ID)
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.resolvers[session.ID]
	if !ok {
		r = NewResolver(ResolverOptions{
			Checker:      g.checker,
			CheckTimeout: g.timeout,
			Logger:       g.logger,
		})
		g.observeTransitions(session.ID, r)
		// Feed the identity before publishing the resolver, so no other
		// request can observe it in the uninitialized state.
		identity := session.Identity()
		r.SetIdentity(&identity)
		g.resolvers[session.ID] = r
	}
	return r
}

// observeTransitions logs every authorization state change for the session.
// The subscription lives as long as the resolver does.
func (g *Registry) observeTransitions(sessionID string, r *Resolver) {
	if g.logger == nil {
		return
	}
	r.Subscribe(func(snap Snapshot) {
		g.logger.Info("authorization state changed",
			"session_id", sessionID,
			"status", string(snap.Status),
			"role", string(snap.Role),
			"denial", string(snap.Denial),
		)
	})
}

// Drop removes the resolver for a session, resetting its role state. Called
// on sign-out so a later sign-in starts from a clean resolution.
func (g *Registry) Drop(sessionID string) {
	g.mu.Lock()
	r, ok := g.resolvers[sessionID]
	if ok {
		delete(g.resolvers, sessionID)
	}
	g.mu.Unlock()
	if ok {
		// Invalidate any in-flight lookup for the dropped session.
		r.SetIdentity(nil)
	}
}

// Len reports the number of live resolvers, for metrics and tests.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.resolvers)
}
