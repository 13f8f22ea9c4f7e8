package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jleboube/12U-form/internal/cache"
	"github.com/jleboube/12U-form/internal/middleware"
	"github.com/jleboube/12U-form/internal/models"
	"github.com/jleboube/12U-form/internal/repository"
	"github.com/jleboube/12U-form/internal/security"
)

// AdminHandler handles the admin console endpoints: the registration
// approval queue and team management. Every route here sits behind the
// AdminOnly guard.
type AdminHandler struct {
	userRepo  *repository.UserRepository
	groupRepo *repository.GroupRepository
	auditRepo *repository.AuditRepository
	validator *security.ValidationService
	cache     *cache.Cache
	logger    *security.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(config *security.SecurityConfig, c *cache.Cache, logger *security.Logger) *AdminHandler {
	return &AdminHandler{
		userRepo:  repository.NewUserRepository(),
		groupRepo: repository.NewGroupRepository(),
		auditRepo: repository.NewAuditRepository(),
		validator: security.NewValidationService(config),
		cache:     c,
		logger:    logger,
	}
}

// PendingUsers returns registrations awaiting an admin decision, newest
// first.
//
// GET /api/admin/pending-users
func (h *AdminHandler) PendingUsers(c *fiber.Ctx) error {
	users, err := h.userRepo.ListPending(c.Context())
	if err != nil {
		h.logger.Error("failed to list pending users", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load pending users",
		})
	}
	if users == nil {
		users = []models.PendingUser{}
	}

	return c.JSON(users)
}

// DecideUser resolves a pending registration. Approval flips the account
// live; denial deletes the row outright so the email can register again. Both
// outcomes are written to the audit log.
//
// POST /api/admin/approve-user/:id
func (h *AdminHandler) DecideUser(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)

	userID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var req models.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Approved {
		err = h.userRepo.Approve(c.Context(), userID)
	} else {
		err = h.userRepo.Delete(c.Context(), userID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("failed to decide pending user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process approval",
		})
	}

	action := models.AuditApproveUser
	event := security.EventUserApproved
	message := "User approved successfully"
	if !req.Approved {
		action = models.AuditDenyUser
		event = security.EventUserDenied
		message = "User registration denied and removed"
	}

	h.audit(c, identity, action, &userID, "")
	h.logger.SecurityEvent(event, &identity.UserID, identity.Email, c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"target_user_id": userID})

	return c.JSON(fiber.Map{"message": message})
}

// ListTeams returns all teams with member counts for the admin console. The
// registration code is included here so an admin can share it.
//
// GET /api/admin/teams
func (h *AdminHandler) ListTeams(c *fiber.Ctx) error {
	groups, err := h.groupRepo.ListWithMemberCounts(c.Context())
	if err != nil {
		h.logger.Error("failed to list teams", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load teams",
		})
	}
	if groups == nil {
		groups = []models.GroupWithMembers{}
	}

	return c.JSON(groups)
}

// CreateTeam adds a team. Names are unique across the service.
//
// POST /api/admin/teams
func (h *AdminHandler) CreateTeam(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)

	req, group, ok := h.parseTeamRequest(c)
	if !ok {
		return nil
	}

	if err := h.groupRepo.Create(c.Context(), group); err != nil {
		if errors.Is(err, repository.ErrGroupNameExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Team name already exists",
			})
		}
		h.logger.Error("failed to create team", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create team",
		})
	}

	h.cache.Delete(c.Context(), groupsCacheKey)
	h.audit(c, identity, models.AuditCreateTeam, &group.ID, req.Name)
	h.logger.SecurityEvent(security.EventTeamCreate, &identity.UserID, identity.Email, c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"group_id": group.ID, "name": group.Name})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Team created successfully",
		"team":    group,
	})
}

// UpdateTeam overwrites a team's name, description and registration
// settings. Clearing the registration code reopens the team to codeless
// signup (subject to the public-registration flag).
//
// PUT /api/admin/teams/:id
func (h *AdminHandler) UpdateTeam(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)

	groupID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team not found",
		})
	}

	req, group, ok := h.parseTeamRequest(c)
	if !ok {
		return nil
	}
	group.ID = groupID

	if err := h.groupRepo.Update(c.Context(), group); err != nil {
		switch {
		case errors.Is(err, repository.ErrGroupNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Team not found",
			})
		case errors.Is(err, repository.ErrGroupNameExists):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Team name already exists",
			})
		default:
			h.logger.Error("failed to update team", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update team",
			})
		}
	}

	h.cache.Delete(c.Context(), groupsCacheKey)
	h.audit(c, identity, models.AuditUpdateTeam, &groupID, req.Name)
	h.logger.SecurityEvent(security.EventTeamUpdate, &identity.UserID, identity.Email, c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"group_id": groupID, "name": group.Name})

	return c.JSON(fiber.Map{
		"message": "Team updated successfully",
	})
}

// TeamMembers returns the active roster of one team.
//
// GET /api/admin/teams/:id/members
func (h *AdminHandler) TeamMembers(c *fiber.Ctx) error {
	groupID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team not found",
		})
	}

	if _, err := h.groupRepo.FindByID(c.Context(), groupID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Team not found",
			})
		}
		h.logger.Error("failed to load team", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load team members",
		})
	}

	members, err := h.userRepo.ListByGroup(c.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to list team members", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load team members",
		})
	}
	if members == nil {
		members = []models.TeamMember{}
	}

	return c.JSON(members)
}

// AuditLog returns the most recent audit entries, newest first.
//
// GET /api/admin/audit-log
func (h *AdminHandler) AuditLog(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	entries, err := h.auditRepo.ListRecent(c.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list audit entries", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load audit log",
		})
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}

	return c.JSON(entries)
}

// parseTeamRequest decodes and validates the create/update team payload. On
// failure it writes the 400 response and returns ok=false.
func (h *AdminHandler) parseTeamRequest(c *fiber.Ctx) (*models.TeamRequest, *models.Group, bool) {
	var req models.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
		return nil, nil, false
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Team name is required",
		})
		return nil, nil, false
	}
	if err := h.validator.ValidateTeamName(req.Name); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
		return nil, nil, false
	}

	group := &models.Group{
		Name:                    req.Name,
		Description:             strings.TrimSpace(req.Description),
		AllowPublicRegistration: req.AllowPublicRegistration,
	}
	if code := strings.TrimSpace(req.RegistrationCode); code != "" {
		group.RegistrationCode = &code
	}

	return &req, group, true
}

func (h *AdminHandler) audit(c *fiber.Ctx, identity *middleware.Identity, action string, objectID *int, detail string) {
	entry := &models.AuditEntry{
		ActorID:   &identity.UserID,
		Action:    action,
		ObjectID:  objectID,
		Detail:    detail,
		IPAddress: c.IP(),
	}
	if err := h.auditRepo.Log(c.Context(), entry); err != nil {
		h.logger.Error("failed to write audit entry", err)
	}
}
