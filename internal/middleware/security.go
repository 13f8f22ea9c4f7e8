package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jleboube/12U-form/internal/security"
)

// SecurityMiddleware bundles request hardening: login throttling, account
// lockout, request logging and response headers.
type SecurityMiddleware struct {
	logger          *security.Logger
	config          *security.SecurityConfig
	rateLimiter     *security.RateLimiter
	accountLockout  *security.AccountLockout
	securityMonitor *security.SecurityMonitor
}

// NewSecurityMiddleware wires the security components together. alerter may
// be nil when no alert channel is configured.
func NewSecurityMiddleware(logger *security.Logger, config *security.SecurityConfig, alerter security.Alerter) *SecurityMiddleware {
	return &SecurityMiddleware{
		logger:          logger,
		config:          config,
		rateLimiter:     security.NewRateLimiter(config.LoginRateLimit, time.Minute/time.Duration(config.LoginRateLimit)),
		accountLockout:  security.NewAccountLockout(config.AccountLockoutThreshold, config.AccountLockoutDuration),
		securityMonitor: security.NewSecurityMonitor(logger, config, alerter),
	}
}

// LoginRateLimit checks whether a login attempt from this IP and account may
// proceed. Returns a client-safe error when throttled or locked out.
func (sm *SecurityMiddleware) LoginRateLimit(email, ipAddress string) error {
	if !sm.rateLimiter.Allow(ipAddress) {
		sm.logger.SecurityEvent(security.EventRateLimitExceeded, nil, email, ipAddress, "",
			map[string]interface{}{
				"endpoint": "/api/auth/login",
				"limit":    sm.config.LoginRateLimit,
			})
		return fmt.Errorf("too many login attempts, please try again later")
	}

	if sm.accountLockout.IsLocked(email) {
		remaining := sm.accountLockout.LockoutRemaining(email)
		sm.logger.SecurityEvent(security.EventAccountLocked, nil, email, ipAddress, "",
			map[string]interface{}{
				"locked_for": remaining.String(),
			})
		return fmt.Errorf("account is temporarily locked, try again in %d minutes", int(remaining.Minutes())+1)
	}

	return nil
}

// RecordLoginFailure tracks a failed login for lockout and alerting.
func (sm *SecurityMiddleware) RecordLoginFailure(email, ipAddress string) {
	locked := sm.accountLockout.RecordFailedAttempt(email)

	sm.logger.SecurityEvent(security.EventLoginFailure, nil, email, ipAddress, "",
		map[string]interface{}{
			"locked": locked,
		})

	sm.securityMonitor.MonitorLoginFailure(ipAddress)
	sm.securityMonitor.ResetCounters()
}

// RecordLoginSuccess clears lockout state after a successful login.
func (sm *SecurityMiddleware) RecordLoginSuccess(email, ipAddress string, userID int) {
	sm.accountLockout.ResetAttempts(email)

	sm.logger.SecurityEvent(security.EventLoginSuccess, &userID, email, ipAddress, "", nil)
}

// RateLimit limits an endpoint per client. Authenticated requests are keyed
// by user ID so users behind a shared NAT do not throttle each other.
func (sm *SecurityMiddleware) RateLimit(limiter *security.RateLimiter, endpointName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.IP()
		if identity := IdentityFrom(c); identity != nil {
			identifier = "user_" + strconv.Itoa(identity.UserID)
		}

		if !limiter.Allow(identifier) {
			sm.logger.SecurityEvent(security.EventRateLimitExceeded, nil, "", c.IP(), c.Get("User-Agent"),
				map[string]interface{}{
					"endpoint":   endpointName,
					"identifier": identifier,
				})

			retryAfter := int(limiter.RetryAfter(identifier).Seconds()) + 1
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later",
			})
		}

		return c.Next()
	}
}

// RequestLogger logs every request, and raises a security event when a
// request is denied with 401 or 403.
func (sm *SecurityMiddleware) RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		sm.logger.HTTPRequest(
			c.Method(),
			c.Path(),
			status,
			time.Since(start).Milliseconds(),
			c.IP(),
			c.Get("User-Agent"),
		)

		if status == fiber.StatusUnauthorized || status == fiber.StatusForbidden {
			var actorID *int
			var actorEmail string
			if identity := IdentityFrom(c); identity != nil {
				actorID = &identity.UserID
				actorEmail = identity.Email
			}

			sm.logger.SecurityEvent(security.EventUnauthorizedAccess, actorID, actorEmail, c.IP(), c.Get("User-Agent"),
				map[string]interface{}{
					"method": c.Method(),
					"path":   c.Path(),
					"status": status,
				})
		}

		return err
	}
}

// SecureHeaders sets standard security response headers.
func (sm *SecurityMiddleware) SecureHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'; connect-src 'self'; frame-ancestors 'none'")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		return c.Next()
	}
}
