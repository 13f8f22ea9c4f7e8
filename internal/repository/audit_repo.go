// Package repository provides data access layer for the scouting report
// service. This file implements the audit repository for administrative
// oversight logging.
package repository

import (
	"context"

	"github.com/jleboube/12U-form/internal/database"
	"github.com/jleboube/12U-form/internal/models"
)

// AuditRepository handles the append-only audit trail. Admin actions
// (approval decisions, denials, team changes) are recorded here, including
// destructive ones like denying a registration, which deletes the user row.
//
// Entries are never modified or deleted once created.
type AuditRepository struct{}

// NewAuditRepository creates and returns a new AuditRepository instance.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Log creates a new audit entry. ActorID may be nil for system actions.
// Populates entry.ID and entry.CreatedAt with database-generated values.
//
// Common action types: "APPROVE_USER", "DENY_USER", "CREATE_TEAM",
// "UPDATE_TEAM".
func (r *AuditRepository) Log(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (actor_id, action, object_id, detail, ip_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return database.DB.QueryRow(ctx, query,
		entry.ActorID, entry.Action, entry.ObjectID, entry.Detail, entry.IPAddress,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListRecent retrieves the newest audit entries, most recent first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	query := `
		SELECT id, actor_id, action, object_id, detail, ip_address, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := database.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.ObjectID, &e.Detail, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
