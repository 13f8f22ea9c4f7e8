package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jleboube/12U-form/internal/cache"
	"github.com/jleboube/12U-form/internal/models"
	"github.com/jleboube/12U-form/internal/repository"
	"github.com/jleboube/12U-form/internal/security"
)

// groupsCacheKey holds the public team directory; admin team writes
// invalidate it.
const groupsCacheKey = "groups:list"

const groupsCacheTTL = 5 * time.Minute

// GroupHandler serves the public team directory shown on the registration
// form.
type GroupHandler struct {
	groupRepo *repository.GroupRepository
	cache     *cache.Cache
	logger    *security.Logger
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(c *cache.Cache, logger *security.Logger) *GroupHandler {
	return &GroupHandler{
		groupRepo: repository.NewGroupRepository(),
		cache:     c,
		logger:    logger,
	}
}

// List returns every team with its id, name, description and whether joining
// requires a registration code. The code itself is never exposed. This
// endpoint is public so the registration form can populate its team picker.
//
// GET /api/groups
func (h *GroupHandler) List(c *fiber.Ctx) error {
	var groups []models.PublicGroup
	if h.cache.GetJSON(c.Context(), groupsCacheKey, &groups) {
		return c.JSON(groups)
	}

	groups, err := h.groupRepo.ListPublic(c.Context())
	if err != nil {
		h.logger.Error("failed to list groups", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load teams",
		})
	}
	if groups == nil {
		groups = []models.PublicGroup{}
	}

	h.cache.SetJSON(c.Context(), groupsCacheKey, groups, groupsCacheTTL)

	return c.JSON(groups)
}
