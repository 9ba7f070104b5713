// Package usecase implements the business logic for the users feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when no user exists for the given ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrConcurrentUpdate is returned when a write matched no rows because
	// the record was deleted or altered between read and write.
	ErrConcurrentUpdate = errors.New("user was modified concurrently")

	// ErrDuplicateRecord is returned when a write violates the unique
	// email/username indexes. With the handler-level uniqueness checks in
	// place this only happens on a write race.
	ErrDuplicateRecord = errors.New("email or username already in use")
)
