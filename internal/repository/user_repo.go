// Package repository implements database access layer for the scouting
// report service. This file handles user account management, authentication
// queries, and the admin approval workflow.
package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jleboube/12U-form/internal/database"
	"github.com/jleboube/12U-form/internal/models"
)

// UserRepository handles user-related database operations: account creation
// at registration, credential lookups for login, and the approve/deny
// lifecycle driven from the admin console.
type UserRepository struct{}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = `u.id, u.email, u.password_hash, u.first_name, u.last_name,
		       u.group_id, u.is_approved, u.is_admin, u.is_active, u.created_at,
		       COALESCE(g.name, '') AS group_name`

// FindActiveByEmail retrieves an active user by email, joined with the group
// name. The lookup is case-insensitive; emails are stored lowercased but the
// comparison folds anyway as a safety net against legacy rows.
//
// Returns ErrNotFound when no active account matches. Inactive accounts are
// invisible to authentication.
func (r *UserRepository) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN groups g ON u.group_id = g.id
		WHERE lower(u.email) = $1 AND u.is_active = true
	`

	return r.scanUser(database.DB.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// FindActiveByID retrieves an active user by primary key, joined with the
// group name. Used by the auth-check endpoint to refresh the session's
// approval and admin flags.
//
// Returns ErrNotFound when the row is gone or deactivated, which callers
// treat as a dead session.
func (r *UserRepository) FindActiveByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN groups g ON u.group_id = g.id
		WHERE u.id = $1 AND u.is_active = true
	`

	return r.scanUser(database.DB.QueryRow(ctx, query, id))
}

func (r *UserRepository) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.GroupID, &user.IsApproved, &user.IsAdmin, &user.IsActive, &user.CreatedAt,
		&user.GroupName,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether any account (active or not) already uses the
// email address. Registration checks this before inserting so the client gets
// a clean duplicate-email message instead of a constraint error.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var id int
	err := database.DB.QueryRow(ctx,
		`SELECT id FROM users WHERE lower(email) = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&id)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a new user. Email is stored lowercased; the password must be
// pre-hashed with bcrypt. IsApproved is taken from the struct; registration
// sets it according to the group's public-registration flag.
//
// Returns ErrEmailExists on a unique-constraint violation (covers the race
// between EmailExists and the insert). Populates user.ID and user.CreatedAt.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, group_id, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := database.DB.QueryRow(ctx, query,
		strings.ToLower(strings.TrimSpace(user.Email)), user.PasswordHash,
		user.FirstName, user.LastName, user.GroupID, user.IsApproved,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.IsActive = true
	return nil
}

// ListPending retrieves registrations awaiting an admin decision, newest
// first, joined with group names for the approval queue.
func (r *UserRepository) ListPending(ctx context.Context) ([]models.PendingUser, error) {
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.created_at, COALESCE(g.name, '') AS group_name
		FROM users u
		LEFT JOIN groups g ON u.group_id = g.id
		WHERE u.is_approved = false AND u.is_active = true
		ORDER BY u.created_at DESC
	`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []models.PendingUser
	for rows.Next() {
		var p models.PendingUser
		if err := rows.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.CreatedAt, &p.GroupName); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// Approve flips is_approved for a pending user. The change becomes effective
// for an existing session the next time the client hits the auth-check
// endpoint, which refreshes the snapshot.
//
// Returns ErrNotFound when no row was updated.
func (r *UserRepository) Approve(ctx context.Context, userID int) error {
	tag, err := database.DB.Exec(ctx,
		`UPDATE users SET is_approved = true WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes a user row. This is a hard delete used when an
// admin denies a registration; the credentials stop working immediately and
// the action cannot be undone.
//
// Returns ErrNotFound when no row was deleted.
func (r *UserRepository) Delete(ctx context.Context, userID int) error {
	tag, err := database.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByGroup retrieves the active members of a group for the admin team
// roster, ordered by last then first name.
func (r *UserRepository) ListByGroup(ctx context.Context, groupID int) ([]models.TeamMember, error) {
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.is_approved, u.is_admin, u.created_at
		FROM users u
		WHERE u.group_id = $1 AND u.is_active = true
		ORDER BY u.last_name, u.first_name
	`

	rows, err := database.DB.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.ID, &m.Email, &m.FirstName, &m.LastName, &m.IsApproved, &m.IsAdmin, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
