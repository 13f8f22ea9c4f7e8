// Package repository implements the database access layer for the scouting
// report service. This file defines sentinel errors shared across
// repositories so that handlers can translate failures into the right HTTP
// status without inspecting SQL details.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a row does not exist or is outside the
// caller's visibility scope. For reports the two cases are deliberately
// indistinguishable: confirming that a record exists in another group would
// leak information.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an email address that is
// already taken.
var ErrEmailExists = errors.New("email already registered")

// ErrGroupNameExists is returned when creating or renaming a team to a name
// that is already taken.
var ErrGroupNameExists = errors.New("team name already exists")

// ErrGroupNotFound is returned when a referenced group does not exist.
var ErrGroupNotFound = errors.New("group not found")

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
