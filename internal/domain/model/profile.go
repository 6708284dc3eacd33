package model

import (
	"time"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
)

// Profile is the locally stored record of a visitor known to the identity
// provider. Rows are upserted at login; the provider remains the source of
// truth for email and name.
type Profile struct {
	ID        string    `json:"id"         db:"id"`
	Email     string    `json:"email"      db:"email"`
	FullName  string    `json:"full_name"  db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserAccount is a profile joined with its role assignment, as shown in the
// admin user manager. Role defaults to user when no assignment row exists.
type UserAccount struct {
	Profile
	Role domainauth.Role `json:"role" db:"role"`
}
