package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// emailPattern mirrors the permissive check used by the signup form: one "@"
// with a dot somewhere in the domain part. Real validation happens when the
// confirmation email is dispatched.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Subscriber is a newsletter signup.
type Subscriber struct {
	ID           string    `json:"id"            db:"id"`
	Email        string    `json:"email"         db:"email"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}

// SubscribeRequest represents a newsletter signup.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// Validate checks and normalizes the signup email (trimmed, lowercased).
func (r *SubscribeRequest) Validate() error {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if email == "" {
		return errors.New("email is required")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email address")
	}
	r.Email = email
	return nil
}
