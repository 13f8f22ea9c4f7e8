// Package repository implements database access layer for the scouting
// report service. This file handles group (team) management.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jleboube/12U-form/internal/database"
	"github.com/jleboube/12U-form/internal/models"
)

// GroupRepository handles team-related database operations: the public
// listing shown on the registration form and the admin-side team management.
type GroupRepository struct{}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository() *GroupRepository {
	return &GroupRepository{}
}

// ListPublic retrieves the unauthenticated team directory ordered by name.
// It exposes whether each team requires a registration code but never the
// code itself.
func (r *GroupRepository) ListPublic(ctx context.Context) ([]models.PublicGroup, error) {
	query := `
		SELECT id, name, COALESCE(description, ''),
		       CASE WHEN registration_code IS NOT NULL THEN true ELSE false END AS requires_code
		FROM groups
		ORDER BY name
	`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.PublicGroup
	for rows.Next() {
		var g models.PublicGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.RequiresCode); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// FindByID retrieves a group with its registration settings. Registration
// uses this to validate the selected team and its code requirement.
//
// Returns ErrGroupNotFound when the id does not resolve.
func (r *GroupRepository) FindByID(ctx context.Context, id int) (*models.Group, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), registration_code, allow_public_registration, created_at
		FROM groups
		WHERE id = $1
	`

	var g models.Group
	err := database.DB.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Description, &g.RegistrationCode, &g.AllowPublicRegistration, &g.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListWithMemberCounts retrieves all teams with their member counts for the
// admin console. Only active, approved users count as members.
func (r *GroupRepository) ListWithMemberCounts(ctx context.Context) ([]models.GroupWithMembers, error) {
	query := `
		SELECT g.id, g.name, COALESCE(g.description, ''), g.registration_code,
		       g.allow_public_registration, g.created_at,
		       COUNT(u.id) AS member_count
		FROM groups g
		LEFT JOIN users u ON g.id = u.group_id AND u.is_active = true AND u.is_approved = true
		GROUP BY g.id, g.name, g.description, g.registration_code, g.allow_public_registration, g.created_at
		ORDER BY g.name
	`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.GroupWithMembers
	for rows.Next() {
		var g models.GroupWithMembers
		err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.RegistrationCode,
			&g.AllowPublicRegistration, &g.CreatedAt, &g.MemberCount)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Create inserts a new team. A nil RegistrationCode leaves the team open.
//
// Returns ErrGroupNameExists on a unique-constraint violation. Populates
// group.ID and group.CreatedAt.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (name, description, registration_code, allow_public_registration)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := database.DB.QueryRow(ctx, query,
		group.Name, group.Description, group.RegistrationCode, group.AllowPublicRegistration,
	).Scan(&group.ID, &group.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrGroupNameExists
		}
		return err
	}
	return nil
}

// Update overwrites a team's settings in place: name, description,
// registration code, and the public-registration flag.
//
// Returns ErrGroupNotFound when no row was updated and ErrGroupNameExists
// when renaming collides with another team.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	query := `
		UPDATE groups
		SET name = $1, description = $2, registration_code = $3, allow_public_registration = $4
		WHERE id = $5
	`

	tag, err := database.DB.Exec(ctx, query,
		group.Name, group.Description, group.RegistrationCode, group.AllowPublicRegistration, group.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrGroupNameExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}
