package handlers_test

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jleboube/12U-form/internal/handlers"
	"github.com/jleboube/12U-form/internal/middleware"
	"github.com/jleboube/12U-form/internal/schema"
	"github.com/jleboube/12U-form/internal/security"
)

func newReportApp(t *testing.T) (*fiber.App, *session.Store) {
	t.Helper()

	app := fiber.New()
	store := session.New()
	logger := security.NewLogger()
	h := handlers.NewReportHandler(logger)

	reports := app.Group("/api/reports", middleware.AuthRequired(store), middleware.ApprovedOnly())
	reports.Get("/", h.List)
	reports.Post("/", h.Create)
	reports.Get("/:id", h.Get)
	reports.Put("/:id", h.Update)
	reports.Delete("/:id", h.Delete)

	return app, store
}

// reportRow builds the full row Get scans, with every schema field NULL
// except the overrides.
func reportRow(id, userID int, groupID interface{}, ts time.Time, overrides map[string]interface{}) ([]string, []interface{}) {
	cols := []string{"id", "user_id", "group_id", "created_at", "updated_at"}
	vals := []interface{}{id, userID, groupID, ts, ts}
	for _, f := range schema.Report {
		cols = append(cols, f.Name)
		vals = append(vals, overrides[f.Name])
	}
	return cols, vals
}

// createArgs builds the bound arguments Create sends: user id, group id,
// then every schema field with the overrides applied.
func createArgs(userID, groupID int, overrides map[string]interface{}) []interface{} {
	args := []interface{}{userID, groupID}
	for _, f := range schema.Report {
		args = append(args, overrides[f.Name])
	}
	return args
}

func TestReportList(t *testing.T) {
	app, store := newReportApp(t)
	mock := setupMock(t)
	cookies := sessionCookies(t, app, store, approvedCoach())

	testTime := time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC)
	player := "Casey Jones"
	rows := pgxmock.NewRows([]string{"id", "player_name", "primary_position", "team", "scout_date", "created_at", "first_name", "last_name"}).
		AddRow(7, &player, (*string)(nil), (*string)(nil), (*time.Time)(nil), testTime, (*string)(nil), (*string)(nil))

	mock.ExpectQuery("SELECT (.+) FROM scouting_reports sr").
		WithArgs(2).
		WillReturnRows(rows)

	resp, err := app.Test(jsonRequest(t, "GET", "/api/reports/", nil, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	reports := decodeList(t, resp)
	require.Len(t, reports, 1)
	first := reports[0].(map[string]interface{})
	assert.Equal(t, "Casey Jones", first["player_name"])
	assert.Nil(t, first["primary_position"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportList_EmptyIsArray(t *testing.T) {
	app, store := newReportApp(t)
	mock := setupMock(t)
	cookies := sessionCookies(t, app, store, approvedCoach())

	mock.ExpectQuery("SELECT (.+) FROM scouting_reports sr").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "player_name", "primary_position", "team", "scout_date", "created_at", "first_name", "last_name"}))

	resp, err := app.Test(jsonRequest(t, "GET", "/api/reports/", nil, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	reports := decodeList(t, resp)
	assert.Empty(t, reports)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportGet(t *testing.T) {
	app, store := newReportApp(t)
	mock := setupMock(t)
	cookies := sessionCookies(t, app, store, approvedCoach())

	testTime := time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC)
	cols, vals := reportRow(7, 3, 2, testTime, map[string]interface{}{
		"player_name": "Casey Jones",
		"age":         int64(11),
	})

	mock.ExpectQuery("SELECT (.+) FROM scouting_reports").
		WithArgs(7, 2).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(vals...))

	resp, err := app.Test(jsonRequest(t, "GET", "/api/reports/7", nil, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "Casey Jones", body["player_name"])
	assert.Equal(t, float64(11), body["age"])
	assert.Contains(t, body, "fastball_mph")
	assert.Nil(t, body["fastball_mph"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportGet_NotFound(t *testing.T) {
	app, store := newReportApp(t)
	mock := setupMock(t)
	cookies := sessionCookies(t, app, store, approvedCoach())

	mock.ExpectQuery("SELECT (.+) FROM scouting_reports").
		WithArgs(404, 2).
		WillReturnError(pgx.ErrNoRows)

	resp, err := app.Test(jsonRequest(t, "GET", "/api/reports/404", nil, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Report not found", body["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportGet_BadID(t *testing.T) {
	app, store := newReportApp(t)
	setupMock(t) // no queries expected
	cookies := sessionCookies(t, app, store, approvedCoach())

	resp, err := app.Test(jsonRequest(t, "GET", "/api/reports/abc", nil, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReportCreate(t *testing.T) {
	app, store := newReportApp(t)
	mock := setupMock(t)
	cookies := sessionCookies(t, app, store, approvedCoach())

	args := createArgs(3, 2, map[string]interface{}{
		"player_name": "Casey Jones",
		"age":         int64(11),
	})

	mock.ExpectQuery("INSERT INTO scouting_reports").
		WithArgs(args...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(42))

	resp, err := app.Test(jsonRequest(t, "POST", "/api/reports/", map[string]interface{}{
		"player_name": "Casey Jones",
		"age":         11,
		"unknown_key": "ignored",
	}, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Report created successfully", body["message"])
	assert.Equal(t, float64(42), body["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCreate_BadFieldValue(t *testing.T) {
	app, store := newReportApp(t)
	mock := setupMock(t)
	cookies := sessionCookies(t, app, store, approvedCoach())

	resp, err := app.Test(jsonRequest(t, "POST", "/api/reports/", map[string]interface{}{
		"age": "eleven",
	}, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "age", body["field"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportUpdate(t *testing.T) {
	app, store := newReportApp(t)
	mock := setupMock(t)
	cookies := sessionCookies(t, app, store, approvedCoach())

	mock.ExpectQuery("SELECT id FROM scouting_reports").
		WithArgs(7, 2).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(7))

	args := createArgs(0, 0, map[string]interface{}{"player_name": "Casey Jones"})[2:]
	args = append(args, 7)

	mock.ExpectExec("UPDATE scouting_reports SET").
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/reports/7", map[string]interface{}{
		"player_name": "Casey Jones",
	}, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Report updated successfully", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportUpdate_OtherGroup(t *testing.T) {
	app, store := newReportApp(t)
	mock := setupMock(t)
	cookies := sessionCookies(t, app, store, approvedCoach())

	mock.ExpectQuery("SELECT id FROM scouting_reports").
		WithArgs(7, 2).
		WillReturnError(pgx.ErrNoRows)

	resp, err := app.Test(jsonRequest(t, "PUT", "/api/reports/7", map[string]interface{}{}, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Report not found or access denied", body["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportDelete(t *testing.T) {
	app, store := newReportApp(t)
	mock := setupMock(t)
	cookies := sessionCookies(t, app, store, approvedCoach())

	mock.ExpectExec("DELETE FROM scouting_reports").
		WithArgs(7, 2).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	resp, err := app.Test(jsonRequest(t, "DELETE", "/api/reports/7", nil, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Report deleted successfully", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportDelete_NotFound(t *testing.T) {
	app, store := newReportApp(t)
	mock := setupMock(t)
	cookies := sessionCookies(t, app, store, approvedCoach())

	mock.ExpectExec("DELETE FROM scouting_reports").
		WithArgs(404, 2).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	resp, err := app.Test(jsonRequest(t, "DELETE", "/api/reports/404", nil, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Report not found or access denied", body["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Pending accounts can log in to check status but must not reach reports.
func TestReports_PendingAccountBlocked(t *testing.T) {
	app, store := newReportApp(t)
	setupMock(t) // no queries expected

	values := approvedCoach()
	values["isApproved"] = false
	cookies := sessionCookies(t, app, store, values)

	resp, err := app.Test(jsonRequest(t, "GET", "/api/reports/", nil, cookies))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Account pending approval", body["error"])
	assert.Equal(t, true, body["pending_approval"])
}
