package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jleboube/12U-form/internal/middleware"
	"github.com/jleboube/12U-form/internal/models"
	"github.com/jleboube/12U-form/internal/repository"
	"github.com/jleboube/12U-form/internal/schema"
	"github.com/jleboube/12U-form/internal/security"
)

// ReportHandler serves the scouting report CRUD endpoints. Every operation is
// scoped to the caller's team: reports belonging to another team are
// indistinguishable from reports that do not exist.
type ReportHandler struct {
	reportRepo *repository.ReportRepository
	logger     *security.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(logger *security.Logger) *ReportHandler {
	return &ReportHandler{
		reportRepo: repository.NewReportRepository(),
		logger:     logger,
	}
}

// List returns summaries of the reports visible to the caller's team, newest
// first.
//
// GET /api/reports
func (h *ReportHandler) List(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)

	reports, err := h.reportRepo.List(c.Context(), identity.GroupID)
	if err != nil {
		h.logger.Error("failed to list reports", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load reports",
		})
	}
	if reports == nil {
		reports = []models.ReportSummary{}
	}

	return c.JSON(reports)
}

// Get returns one full report, all scouting fields included.
//
// GET /api/reports/:id
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Report not found",
		})
	}

	report, err := h.reportRepo.Get(c.Context(), id, identity.GroupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Report not found",
			})
		}
		h.logger.Error("failed to load report", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load report",
		})
	}

	return c.JSON(report)
}

// Create stores a new report owned by the caller and their team. Unknown
// payload keys are ignored; typed fields that do not parse are rejected with
// a field-specific message.
//
// POST /api/reports
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)

	values, ok := h.normalizeBody(c)
	if !ok {
		return nil // normalizeBody already wrote the response
	}

	id, err := h.reportRepo.Create(c.Context(), identity.UserID, identity.GroupID, values)
	if err != nil {
		h.logger.Error("failed to create report", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Report created successfully",
		"id":      id,
	})
}

// Update overwrites every scouting field of a visible report. Fields absent
// from the payload are cleared, matching the full-form submit the client
// sends.
//
// PUT /api/reports/:id
func (h *ReportHandler) Update(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Report not found or access denied",
		})
	}

	values, ok := h.normalizeBody(c)
	if !ok {
		return nil
	}

	if err := h.reportRepo.Update(c.Context(), id, identity.GroupID, values); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Report not found or access denied",
			})
		}
		h.logger.Error("failed to update report", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update report",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Report updated successfully",
	})
}

// Delete removes a visible report.
//
// DELETE /api/reports/:id
func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Report not found or access denied",
		})
	}

	if err := h.reportRepo.Delete(c.Context(), id, identity.GroupID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Report not found or access denied",
			})
		}
		h.logger.Error("failed to delete report", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete report",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Report deleted successfully",
	})
}

// normalizeBody decodes the JSON payload and binds it to the report schema.
// On failure it writes the 400 response and returns ok=false.
func (h *ReportHandler) normalizeBody(c *fiber.Ctx) ([]interface{}, bool) {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
		return nil, false
	}

	values, err := schema.Normalize(payload)
	if err != nil {
		var ferr *schema.FieldError
		if errors.As(err, &ferr) {
			c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": ferr.Error(),
				"field": ferr.Field,
			})
			return nil, false
		}
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
		return nil, false
	}

	return values, true
}
