// Package repository defines the MySQL persistence layer and the error
// values it shares with higher layers.  Services translate these into
// domain errors; handlers never see them directly.
package repository

import "errors"

// ErrNotFound is returned when no user matches the lookup key.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting a user whose e-mail (or
// customer id) is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrStaleResetCode is returned by CompletePasswordReset when the
// conditional update matched no row: the code was consumed or replaced by a
// concurrent request, or it expired in between.
var ErrStaleResetCode = errors.New("verification code no longer valid")
