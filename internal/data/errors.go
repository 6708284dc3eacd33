package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already exists")
	ErrProfileNotFound  = errors.New("profile not found")

	// ErrRoleRecordNotFound distinguishes "no role assignment row" from a
	// failed query; the authorization core maps it to a distinct denial.
	ErrRoleRecordNotFound = errors.New("role record not found")

	// ErrAlreadySubscribed is returned when the signup email already exists.
	ErrAlreadySubscribed = errors.New("email already subscribed")
)
