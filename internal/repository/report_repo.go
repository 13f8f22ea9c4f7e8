// Package repository implements database access layer for the scouting
// report service. This file handles scouting report CRUD with group-scoped
// visibility.
package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jleboube/12U-form/internal/database"
	"github.com/jleboube/12U-form/internal/models"
	"github.com/jleboube/12U-form/internal/schema"
)

// ReportRepository handles scouting report persistence. Column lists, bound
// parameter positions and the update set clause all come from the schema
// package, so create and update can never disagree about the record shape.
//
// Visibility rule: a requester sees a report when it belongs to their group
// or when its group_id is NULL (legacy global reports). There is no
// cross-group access, admins included; a miss is reported as ErrNotFound
// rather than a permission error so existence is never confirmed to
// unauthorized callers.
type ReportRepository struct{}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

// List retrieves report summaries visible to the group, newest first, joined
// with the creator's name.
func (r *ReportRepository) List(ctx context.Context, groupID int) ([]models.ReportSummary, error) {
	query := `
		SELECT sr.id, sr.player_name, sr.primary_position, sr.team, sr.scout_date, sr.created_at,
		       u.first_name, u.last_name
		FROM scouting_reports sr
		LEFT JOIN users u ON sr.user_id = u.id
		WHERE sr.group_id = $1 OR sr.group_id IS NULL
		ORDER BY sr.created_at DESC
	`

	rows, err := database.DB.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.ReportSummary
	for rows.Next() {
		var s models.ReportSummary
		err := rows.Scan(&s.ID, &s.PlayerName, &s.PrimaryPosition, &s.Team, &s.ScoutDate,
			&s.CreatedAt, &s.FirstName, &s.LastName)
		if err != nil {
			return nil, err
		}
		reports = append(reports, s)
	}
	return reports, rows.Err()
}

// reportColumns are the non-schema columns returned ahead of the field values.
var reportColumns = []string{"id", "user_id", "group_id", "created_at", "updated_at"}

// Get retrieves the full record under the visibility rule. The result is a
// flat map keyed by column name: id/user_id/group_id/timestamps plus every
// schema field, with NULLs preserved as nulls so the client round-trips
// omitted values faithfully.
func (r *ReportRepository) Get(ctx context.Context, id, groupID int) (map[string]interface{}, error) {
	query := `
		SELECT id, user_id, group_id, created_at, updated_at, ` + schema.ColumnList() + `
		FROM scouting_reports
		WHERE id = $1 AND (group_id = $2 OR group_id IS NULL)
	`

	n := len(reportColumns) + schema.NumFields()
	values := make([]interface{}, n)
	dest := make([]interface{}, n)
	for i := range values {
		dest[i] = &values[i]
	}

	err := database.DB.QueryRow(ctx, query, id, groupID).Scan(dest...)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	record := make(map[string]interface{}, n)
	for i, col := range reportColumns {
		record[col] = values[i]
	}
	for i, f := range schema.Report {
		record[f.Name] = values[len(reportColumns)+i]
	}
	return record, nil
}

// Create inserts a new report and returns the generated id. userID and
// groupID come from the caller's session, never from the payload, which fixes
// the ownership and visibility scope of the report for its lifetime. values
// must be in schema order (see schema.Normalize).
func (r *ReportRepository) Create(ctx context.Context, userID, groupID int, values []interface{}) (int, error) {
	query := `
		INSERT INTO scouting_reports (` + schema.InsertColumns() + `)
		VALUES (` + schema.InsertPlaceholders() + `)
		RETURNING id
	`

	args := make([]interface{}, 0, len(values)+2)
	args = append(args, userID, groupID)
	args = append(args, values...)

	var id int
	if err := database.DB.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Update overwrites every schema field of a visible report (full replace,
// not a patch) and bumps updated_at. user_id and group_id are immutable
// after creation.
//
// The visibility check and the mutation are two statements. A report deleted
// between them simply updates zero rows and comes back as ErrNotFound; the
// race is accepted rather than locked since reports are single-group
// resources and the outcome is harmless.
func (r *ReportRepository) Update(ctx context.Context, id, groupID int, values []interface{}) error {
	checkQuery := `
		SELECT id FROM scouting_reports
		WHERE id = $1 AND (group_id = $2 OR group_id IS NULL)
	`

	var existing int
	err := database.DB.QueryRow(ctx, checkQuery, id, groupID).Scan(&existing)
	if err == pgx.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	query := `
		UPDATE scouting_reports SET
			` + schema.UpdateSetClause() + `,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $` + strconv.Itoa(schema.NumFields()+1) + `
	`

	args := make([]interface{}, 0, len(values)+1)
	args = append(args, values...)
	args = append(args, id)

	tag, err := database.DB.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a visible report permanently.
//
// Returns ErrNotFound when nothing matched, whether the report never existed
// or belongs to another group.
func (r *ReportRepository) Delete(ctx context.Context, id, groupID int) error {
	query := `
		DELETE FROM scouting_reports
		WHERE id = $1 AND (group_id = $2 OR group_id IS NULL)
	`

	tag, err := database.DB.Exec(ctx, query, id, groupID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
