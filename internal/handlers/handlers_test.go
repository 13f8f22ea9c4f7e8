// Package handlers_test exercises the HTTP layer end to end: real fiber
// routing and sessions, with the database mocked through pgxmock.
package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/jleboube/12U-form/internal/database"
	"github.com/jleboube/12U-form/internal/security"
)

// setupMock swaps the package-level pool for a pgxmock pool for the duration
// of a test.
func setupMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	oldDB := database.DB
	database.DB = mock
	t.Cleanup(func() { database.DB = oldDB })

	return mock
}

// testSecurityConfig lowers the bcrypt cost so registration tests stay fast.
func testSecurityConfig() *security.SecurityConfig {
	cfg := security.DefaultSecurityConfig()
	cfg.BcryptCost = 4
	return cfg
}

// sessionCookies seeds a session through a throwaway route and returns the
// cookies carrying it.
func sessionCookies(t *testing.T, app *fiber.App, store *session.Store, values map[string]interface{}) []string {
	t.Helper()

	app.Get("/session-mock", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		for k, v := range values {
			sess.Set(k, v)
		}
		if err := sess.Save(); err != nil {
			return err
		}
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/session-mock", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var cookies []string
	for _, cookie := range resp.Cookies() {
		cookies = append(cookies, cookie.Name+"="+cookie.Value)
	}
	return cookies
}

// approvedCoach is the session snapshot of an ordinary approved member.
func approvedCoach() map[string]interface{} {
	return map[string]interface{}{
		"userId":     3,
		"email":      "coach@example.com",
		"groupId":    2,
		"groupName":  "Thunder 12U",
		"isApproved": true,
		"isAdmin":    false,
	}
}

// teamAdmin is the session snapshot of an admin.
func teamAdmin() map[string]interface{} {
	return map[string]interface{}{
		"userId":     1,
		"email":      "admin@example.com",
		"groupId":    2,
		"groupName":  "Thunder 12U",
		"isApproved": true,
		"isAdmin":    true,
	}
}

// jsonRequest builds a request with a JSON body and optional session cookies.
func jsonRequest(t *testing.T, method, path string, body interface{}, cookies []string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.Header.Add("Cookie", c)
	}
	return req
}

// decodeBody parses a JSON response body into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// decodeList parses a JSON array response body. Listing endpoints return bare
// arrays, never null.
func decodeList(t *testing.T, resp *http.Response) []interface{} {
	t.Helper()

	var body []interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
