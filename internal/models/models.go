// Package models defines the domain entities and data transfer objects for
// the scouting report service. It includes database models mapped to
// PostgreSQL tables, request DTOs for JSON input, and the public projections
// returned to clients.
package models

import "time"

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents an account scoped to a single group (team).
// Accounts start unapproved unless their group allows public registration;
// only approved users may touch reports, and only admins manage teams.
//
// Database Table: users
// Security Note: PasswordHash must never be exposed in API responses or logs
type User struct {
	ID           int       `db:"id"`            // Primary key, auto-increment
	Email        string    `db:"email"`         // Unique (case-insensitive), used for login
	PasswordHash string    `db:"password_hash"` // bcrypt hashed password
	FirstName    string    `db:"first_name"`    // Given name
	LastName     string    `db:"last_name"`     // Family name
	GroupID      int       `db:"group_id"`      // Owning group, required
	GroupName    string    `db:"group_name"`    // Joined from groups for display
	IsApproved   bool      `db:"is_approved"`   // Admin approval gate for report access
	IsAdmin      bool      `db:"is_admin"`      // Registration/team management rights
	IsActive     bool      `db:"is_active"`     // Soft-delete flag
	CreatedAt    time.Time `db:"created_at"`    // Account creation timestamp
}

// PendingUser is a registration awaiting an admin decision, joined with the
// group name for the approval queue display.
type PendingUser struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	GroupName string    `json:"group_name"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntry is an append-only record of a significant action, kept for
// administrative oversight. Entries are never modified or deleted.
//
// Database Table: audit_log
type AuditEntry struct {
	ID        int       `db:"id" json:"id"`
	ActorID   *int      `db:"actor_id" json:"actor_id"`   // User who performed the action (nil for system actions)
	Action    string    `db:"action" json:"action"`       // e.g. "APPROVE_USER", "CREATE_TEAM"
	ObjectID  *int      `db:"object_id" json:"object_id"` // ID of the affected row, when there is one
	Detail    string    `db:"detail" json:"detail"`       // Human-readable summary
	IPAddress string    `db:"ip_address" json:"ip_address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Audit actions recorded by the admin console.
const (
	AuditApproveUser = "APPROVE_USER"
	AuditDenyUser    = "DENY_USER"
	AuditCreateTeam  = "CREATE_TEAM"
	AuditUpdateTeam  = "UPDATE_TEAM"
)

// ============================================================================
// Public Projections (API Output)
// ============================================================================

// UserProfile is the client-facing view of a user. It carries the identity
// snapshot the front-end needs and nothing sensitive.
type UserProfile struct {
	ID         int    `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	GroupID    int    `json:"groupId"`
	GroupName  string `json:"groupName"`
	IsApproved bool   `json:"isApproved"`
	IsAdmin    bool   `json:"isAdmin"`
}

// Profile returns the public projection of a user.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		GroupID:    u.GroupID,
		GroupName:  u.GroupName,
		IsApproved: u.IsApproved,
		IsAdmin:    u.IsAdmin,
	}
}

// ReportSummary is the list projection of a scouting report: enough to render
// the report roster without shipping all seventy evaluation fields.
type ReportSummary struct {
	ID              int        `json:"id"`
	PlayerName      *string    `json:"player_name"`
	PrimaryPosition *string    `json:"primary_position"`
	Team            *string    `json:"team"`
	ScoutDate       *time.Time `json:"scout_date"`
	CreatedAt       time.Time  `json:"created_at"`
	FirstName       *string    `json:"first_name"` // creator, joined from users
	LastName        *string    `json:"last_name"`
}

// ============================================================================
// Request DTOs (JSON Input)
// ============================================================================

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries a self-registration submission. RegistrationCode is
// only consulted when the target group requires one.
type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	GroupID          int    `json:"groupId"`
	RegistrationCode string `json:"registrationCode"`
}

// ApprovalRequest carries an admin's decision on a pending registration.
// Approved=false permanently deletes the account.
type ApprovalRequest struct {
	Approved bool `json:"approved"`
}

// TeamRequest carries team creation and update submissions.
type TeamRequest struct {
	Name                    string `json:"name"`
	Description             string `json:"description"`
	RegistrationCode        string `json:"registrationCode"`
	AllowPublicRegistration bool   `json:"allowPublicRegistration"`
}
