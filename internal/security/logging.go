// Package security provides structured security logging.
// All output is single-line JSON so it can be shipped to a log aggregator
// without extra parsing.
package security

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// LogLevel classifies a log entry.
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARNING"
	LogLevelError    LogLevel = "ERROR"
	LogLevelCritical LogLevel = "CRITICAL"
	LogLevelSecurity LogLevel = "SECURITY"
)

// SecurityEventType identifies the kind of security-relevant action logged.
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventLoginPending       SecurityEventType = "LOGIN_PENDING_APPROVAL"
	EventLogout             SecurityEventType = "LOGOUT"
	EventAccountLocked      SecurityEventType = "ACCOUNT_LOCKED"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventSessionExpired     SecurityEventType = "SESSION_EXPIRED"
	EventRegistration       SecurityEventType = "REGISTRATION"
	EventRegistrationCode   SecurityEventType = "REGISTRATION_CODE_REJECTED"
	EventUserApproved       SecurityEventType = "USER_APPROVED"
	EventUserDenied         SecurityEventType = "USER_DENIED"
	EventTeamCreate         SecurityEventType = "TEAM_CREATE"
	EventTeamUpdate         SecurityEventType = "TEAM_UPDATE"
)

// LogEntry is the JSON shape of every log line. Optional fields are omitted
// when empty so routine entries stay short.
type LogEntry struct {
	Timestamp  time.Time              `json:"timestamp"`
	Level      LogLevel               `json:"level"`
	Message    string                 `json:"message"`
	EventType  SecurityEventType      `json:"event_type,omitempty"`
	ActorID    *int                   `json:"actor_id,omitempty"`
	ActorEmail string                 `json:"actor_email,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	Method     string                 `json:"method,omitempty"`
	Path       string                 `json:"path,omitempty"`
	Status     int                    `json:"status,omitempty"`
	LatencyMS  int64                  `json:"latency_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// Logger writes structured JSON log entries.
type Logger struct {
	output *log.Logger
}

// NewLogger creates a logger writing to stdout.
func NewLogger() *Logger {
	return &Logger{
		output: log.New(os.Stdout, "", 0),
	}
}

func (l *Logger) write(entry LogEntry) {
	entry.Timestamp = time.Now().UTC()
	b, err := json.Marshal(entry)
	if err != nil {
		// Marshal can only fail on exotic Extra values; fall back to plain text
		// rather than dropping the entry.
		l.output.Printf(`{"timestamp":%q,"level":"ERROR","message":"log marshal failed: %v"}`,
			entry.Timestamp.Format(time.RFC3339), err)
		return
	}
	l.output.Println(string(b))
}

// Info logs an informational message.
func (l *Logger) Info(message string) {
	l.write(LogEntry{Level: LogLevelInfo, Message: message})
}

// Warn logs a warning message.
func (l *Logger) Warn(message string) {
	l.write(LogEntry{Level: LogLevelWarning, Message: message})
}

// Error logs an error with its underlying cause. The diagnostic detail stays
// server-side; callers return a generic message to the client.
func (l *Logger) Error(message string, err error) {
	entry := LogEntry{Level: LogLevelError, Message: message}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// Critical logs a failure that requires operator attention.
func (l *Logger) Critical(message string, err error) {
	entry := LogEntry{Level: LogLevelCritical, Message: message}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// SecurityEvent logs a security-relevant action with actor context.
// actorID may be nil when the actor is unknown (e.g. a failed login).
func (l *Logger) SecurityEvent(event SecurityEventType, actorID *int, actorEmail, ipAddress, userAgent string, extra map[string]interface{}) {
	l.write(LogEntry{
		Level:      LogLevelSecurity,
		Message:    string(event),
		EventType:  event,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Extra:      extra,
	})
}

// HTTPRequest logs one handled request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMS int64, ipAddress, userAgent string) {
	l.write(LogEntry{
		Level:     LogLevelInfo,
		Message:   fmt.Sprintf("%s %s -> %d (%dms)", method, path, status, latencyMS),
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMS: latencyMS,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
}

// Alerter delivers out-of-band alerts for suspicious activity. Implementations
// might post to email or a chat webhook; a nil Alerter disables alerting.
type Alerter interface {
	SendAlert(ctx context.Context, severity, title, message string) error
}

// SecurityMonitor watches failed-login volume per source IP and raises an
// alert once a threshold is crossed. Counters reset periodically so a slow
// trickle of typos does not accumulate into an alert.
type SecurityMonitor struct {
	logger  *Logger
	config  *SecurityConfig
	alerter Alerter

	mu           sync.Mutex
	failedLogins map[string]int
	lastReset    time.Time
}

// NewSecurityMonitor creates a monitor. alerter may be nil.
func NewSecurityMonitor(logger *Logger, config *SecurityConfig, alerter Alerter) *SecurityMonitor {
	return &SecurityMonitor{
		logger:       logger,
		config:       config,
		alerter:      alerter,
		failedLogins: make(map[string]int),
		lastReset:    time.Now(),
	}
}

// MonitorLoginFailure records a failed login from an IP and alerts when the
// configured threshold is reached.
func (m *SecurityMonitor) MonitorLoginFailure(ipAddress string) {
	m.mu.Lock()
	m.failedLogins[ipAddress]++
	count := m.failedLogins[ipAddress]
	m.mu.Unlock()

	if count >= m.config.AlertThresholdFailures && m.alerter != nil {
		msg := fmt.Sprintf("%d failed login attempts from %s", count, ipAddress)
		if err := m.alerter.SendAlert(context.Background(), "HIGH", "Repeated login failures", msg); err != nil {
			m.logger.Error("failed to send security alert", err)
		}
	}
}

// ResetCounters clears the per-IP failure counters when the reset interval
// has elapsed. Called opportunistically; it is cheap to invoke often.
func (m *SecurityMonitor) ResetCounters() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastReset) < time.Hour {
		return
	}
	m.failedLogins = make(map[string]int)
	m.lastReset = time.Now()
}
