package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jleboube/12U-form/internal/security"
)

func newSecurityMiddleware() *SecurityMiddleware {
	logger := security.NewLogger()
	config := security.DefaultSecurityConfig()
	return NewSecurityMiddleware(logger, config, nil)
}

func TestSecureHeaders(t *testing.T) {
	app := fiber.New()
	sm := newSecurityMiddleware()

	app.Use(sm.SecureHeaders())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("success")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	headers := map[string]string{
		"Content-Security-Policy":   "default-src 'self'",
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"Strict-Transport-Security": "max-age=31536000",
		"Referrer-Policy":           "strict-origin-when-cross-origin",
	}

	for header, expectedValue := range headers {
		actual := resp.Header.Get(header)
		if !strings.Contains(actual, expectedValue) {
			t.Errorf("Header %s: expected to contain %q, got %q", header, expectedValue, actual)
		}
	}
}

func TestRateLimit(t *testing.T) {
	app := fiber.New()
	sm := newSecurityMiddleware()

	limiter := security.NewRateLimiter(3, 1*time.Second)

	app.Use(sm.RateLimit(limiter, "test"))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("success")
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		if err != nil {
			t.Fatalf("Request %d failed: %v", i+1, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("Request %d: expected 200 OK, got %d", i+1, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("Expected 429 Too Many Requests, got %d", resp.StatusCode)
	}

	if resp.Header.Get("Retry-After") == "" {
		t.Error("Expected Retry-After header to be set")
	}
}

func TestRateLimit_PerUserIdentifier(t *testing.T) {
	app := fiber.New()
	sm := newSecurityMiddleware()

	limiter := security.NewRateLimiter(1, time.Minute)

	// Two authenticated users share one IP but get separate buckets.
	userID := 0
	app.Use(func(c *fiber.Ctx) error {
		userID++
		c.Locals(identityKey, &Identity{UserID: userID, IsApproved: true})
		return c.Next()
	})
	app.Use(sm.RateLimit(limiter, "test"))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("success")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		if err != nil {
			t.Fatalf("Request %d failed: %v", i+1, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("Request %d: expected 200 OK, got %d", i+1, resp.StatusCode)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	app := fiber.New()
	sm := newSecurityMiddleware()

	app.Use(sm.RequestLogger())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("success")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected 200 OK, got %d", resp.StatusCode)
	}
}

func TestLoginRateLimit(t *testing.T) {
	logger := security.NewLogger()
	config := security.DefaultSecurityConfig()
	config.LoginRateLimit = 3
	sm := NewSecurityMiddleware(logger, config, nil)

	email := "test@example.com"
	ip := "192.168.1.100"

	for i := 0; i < 3; i++ {
		if err := sm.LoginRateLimit(email, ip); err != nil {
			t.Errorf("Attempt %d should be allowed, got error: %v", i+1, err)
		}
	}

	if err := sm.LoginRateLimit(email, ip); err == nil {
		t.Error("4th attempt should be denied")
	}
}

func TestLoginRateLimit_AccountLockout(t *testing.T) {
	logger := security.NewLogger()
	config := security.DefaultSecurityConfig()
	config.LoginRateLimit = 100
	config.AccountLockoutThreshold = 3
	sm := NewSecurityMiddleware(logger, config, nil)

	email := "test@example.com"

	// Failures from different IPs still lock the account itself.
	sm.RecordLoginFailure(email, "10.0.0.1")
	sm.RecordLoginFailure(email, "10.0.0.2")
	sm.RecordLoginFailure(email, "10.0.0.3")

	if err := sm.LoginRateLimit(email, "10.0.0.4"); err == nil {
		t.Error("Locked account should be rejected")
	}

	// A different account is unaffected.
	if err := sm.LoginRateLimit("other@example.com", "10.0.0.5"); err != nil {
		t.Errorf("Other account should be allowed, got: %v", err)
	}
}

func TestRecordLoginSuccess_ResetsLockout(t *testing.T) {
	logger := security.NewLogger()
	config := security.DefaultSecurityConfig()
	config.LoginRateLimit = 100
	config.AccountLockoutThreshold = 3
	sm := NewSecurityMiddleware(logger, config, nil)

	email := "test@example.com"
	ip := "192.168.1.100"

	sm.RecordLoginFailure(email, ip)
	sm.RecordLoginFailure(email, ip)
	sm.RecordLoginSuccess(email, ip, 123)

	// Counter was reset, so two more failures must not lock.
	sm.RecordLoginFailure(email, ip)
	sm.RecordLoginFailure(email, ip)

	if err := sm.LoginRateLimit(email, ip); err != nil {
		t.Errorf("Account should not be locked after reset, got: %v", err)
	}
}

func BenchmarkSecureHeaders(b *testing.B) {
	app := fiber.New()
	sm := newSecurityMiddleware()

	app.Use(sm.SecureHeaders())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("success")
	})

	req := httptest.NewRequest("GET", "/test", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		app.Test(req)
	}
}
