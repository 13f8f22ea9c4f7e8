// Package security provides centralized security configuration and
// utilities: structured security logging, login rate limiting, account
// lockout, and input validation.
package security

import (
	"time"
)

// SecurityConfig holds all security-related configuration values.
type SecurityConfig struct {
	// Password storage
	BcryptCost int // cost factor for bcrypt hashing

	// Session management
	SessionTTL        time.Duration // server-side session lifetime
	SessionCookieName string        // name of the session cookie

	// Brute force protection
	LoginRateLimit          int           // max login attempts per minute per IP
	RegisterRateLimit       int           // max registrations per hour per IP
	ReportWriteRateLimit    int           // max report writes per minute per user
	AccountLockoutThreshold int           // failed attempts before account lockout
	AccountLockoutDuration  time.Duration // how long the lockout lasts

	// Input validation
	MinPasswordLength int // minimum password length at registration
	MaxEmailLength    int // maximum characters in an email address
	MaxNameLength     int // maximum characters in a name field
	MaxFieldLength    int // maximum characters in a free-text report field

	// Monitoring
	AlertThresholdFailures int // failed logins from one IP before alerting
}

// DefaultSecurityConfig returns the recommended defaults. The six-character
// password minimum is the service's long-standing registration contract;
// everything else follows common hardening guidance.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		BcryptCost: 12,

		SessionTTL:        24 * time.Hour,
		SessionCookieName: "scout_session",

		LoginRateLimit:          5,
		RegisterRateLimit:       10,
		ReportWriteRateLimit:    30,
		AccountLockoutThreshold: 10,
		AccountLockoutDuration:  30 * time.Minute,

		MinPasswordLength: 6,
		MaxEmailLength:    255,
		MaxNameLength:     100,
		MaxFieldLength:    10000,

		AlertThresholdFailures: 5,
	}
}
