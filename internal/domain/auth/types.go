package auth

// Package auth contains domain-level types for identity and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role records a visitor's authorization level.
// Kept in string form for easy persistence and JSON transport.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is a supported value.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// Identity represents the authenticated visitor returned by the identity
// provider. Adapters map provider-specific claims into this shape. The role
// is deliberately absent: authorization is resolved against the role store
// on every page load, never cached alongside the identity.
type Identity struct {
	ID        string // stable identifier from the provider (sub claim)
	Email     string
	Name      string    // display name, optional
	ExpiresAt time.Time // absolute expiry from the provider token
}

// Session is the server-side record persisted for a signed-in visitor.
// ID is an opaque session identifier (random UUID).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity reconstructs the identity carried by the session.
func (s Session) Identity() Identity {
	return Identity{
		ID:        s.UserID,
		Email:     s.Email,
		Name:      s.Name,
		ExpiresAt: s.ExpiresAt,
	}
}

// RoleAssignment is the persisted mapping from an identity to its role.
// Exactly one row exists per identity; the role is flipped, never deleted.
type RoleAssignment struct {
	UserID    string    `json:"user_id"    db:"user_id"`
	Role      Role      `json:"role"       db:"role"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
