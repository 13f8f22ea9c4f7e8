// Package models defines data structures for the scouting report service.
// This file contains the Group (team) models.
package models

import "time"

// Group represents a team: the tenant boundary of the system. A group owns
// its users and scopes report visibility. A non-nil RegistrationCode gates
// self-registration; AllowPublicRegistration approves new members
// automatically instead of queueing them for an admin.
//
// Database: groups table
type Group struct {
	ID                      int       `db:"id" json:"id"`                                               // Primary key, auto-increment
	Name                    string    `db:"name" json:"name"`                                           // Unique team name
	Description             string    `db:"description" json:"description"`                             // Optional description
	RegistrationCode        *string   `db:"registration_code" json:"registration_code"`                 // Shared secret, nil when open
	AllowPublicRegistration bool      `db:"allow_public_registration" json:"allow_public_registration"` // Auto-approve new members
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
}

// RequiresCode reports whether self-registration into this group needs the
// shared registration code.
func (g *Group) RequiresCode() bool {
	return g.RegistrationCode != nil && *g.RegistrationCode != ""
}

// PublicGroup is the unauthenticated projection served to the registration
// form. It reveals whether a code is required but never the code itself.
type PublicGroup struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	RequiresCode bool   `json:"requires_code"`
}

// GroupWithMembers extends Group with a member count for the admin team list.
// The count covers active, approved users only.
type GroupWithMembers struct {
	Group
	MemberCount int `db:"member_count" json:"member_count"`
}

// TeamMember is the admin view of a group member.
type TeamMember struct {
	ID         int       `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsApproved bool      `json:"is_approved"`
	IsAdmin    bool      `json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
}
