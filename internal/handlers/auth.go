// Package handlers implements the HTTP layer of the scouting report API.
// This file covers login, registration, logout and the session check.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/jleboube/12U-form/internal/middleware"
	"github.com/jleboube/12U-form/internal/models"
	"github.com/jleboube/12U-form/internal/repository"
	"github.com/jleboube/12U-form/internal/security"
	"github.com/jleboube/12U-form/internal/services"
)

// AuthHandler handles authentication endpoints and session lifecycle.
type AuthHandler struct {
	store       *session.Store
	authService *services.AuthService
	userRepo    *repository.UserRepository
	secMW       *middleware.SecurityMiddleware
	logger      *security.Logger
}

// NewAuthHandler creates an AuthHandler with its service dependencies.
func NewAuthHandler(store *session.Store, config *security.SecurityConfig, secMW *middleware.SecurityMiddleware, logger *security.Logger) *AuthHandler {
	return &AuthHandler{
		store:       store,
		authService: services.NewAuthService(config),
		userRepo:    repository.NewUserRepository(),
		secMW:       secMW,
		logger:      logger,
	}
}

// Login authenticates credentials and establishes a session.
//
// POST /api/auth/login
//
// Responds 401 with the same message for unknown emails and wrong passwords,
// 403 when the account is still awaiting approval, and 429 when the caller
// is throttled or the account is locked out.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	if err := h.secMW.LoginRateLimit(req.Email, c.IP()); err != nil {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user, err := h.authService.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			h.secMW.RecordLoginFailure(req.Email, c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		case errors.Is(err, services.ErrPendingApproval):
			h.logger.SecurityEvent(security.EventLoginPending, &user.ID, user.Email, c.IP(), c.Get("User-Agent"), nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "Account pending approval",
				"message": "Your account is waiting for admin approval. Please contact your team administrator.",
			})
		default:
			h.logger.Error("login failed", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Login failed",
			})
		}
	}

	sess, err := h.store.Get(c)
	if err != nil {
		h.logger.Error("session create failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	// Fresh session ID on login prevents session fixation.
	if err := sess.Regenerate(); err != nil {
		h.logger.Error("session regenerate failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	setSessionUser(sess, user)
	if err := sess.Save(); err != nil {
		h.logger.Error("session save failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	h.secMW.RecordLoginSuccess(user.Email, c.IP(), user.ID)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user.Profile(),
	})
}

// Register creates an account tied to a team. Teams that gate registration
// behind a code reject mismatches with requiresCode so the client can prompt
// for it.
//
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.authService.Register(c.Context(), &req)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": verr.Message,
			})
		case errors.Is(err, repository.ErrEmailExists):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Email already registered",
			})
		case errors.Is(err, repository.ErrGroupNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid team selected",
			})
		case errors.Is(err, services.ErrRegistrationCode):
			h.logger.SecurityEvent(security.EventRegistrationCode, nil, req.Email, c.IP(), c.Get("User-Agent"),
				map[string]interface{}{"group_id": req.GroupID})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":        "Invalid registration code for this team",
				"requiresCode": true,
			})
		default:
			h.logger.Error("registration failed", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Registration failed",
			})
		}
	}

	h.logger.SecurityEvent(security.EventRegistration, &user.ID, user.Email, c.IP(), c.Get("User-Agent"),
		map[string]interface{}{
			"group_id": user.GroupID,
			"approved": user.IsApproved,
		})

	message := "Registration successful! You can now login."
	if !user.IsApproved {
		message = "Registration successful! Your account is pending admin approval."
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":          message,
		"user":             user.Profile(),
		"requiresApproval": !user.IsApproved,
	})
}

// Logout destroys the session. Idempotent: a request without a session still
// succeeds.
//
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err == nil {
		if userID, ok := sess.Get("userId").(int); ok {
			email, _ := sess.Get("email").(string)
			h.logger.SecurityEvent(security.EventLogout, &userID, email, c.IP(), c.Get("User-Agent"), nil)
		}
		if err := sess.Destroy(); err != nil {
			h.logger.Error("session destroy failed", err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "Logout successful",
	})
}

// Me re-validates the session against the database and returns the current
// profile. Approval and admin flags are refreshed from the user row, so an
// admin decision takes effect on the next check without re-login. A session
// whose user no longer exists is destroyed.
//
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	user, err := h.userRepo.FindActiveByID(c.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if sess, serr := h.store.Get(c); serr == nil {
				sess.Destroy()
			}
			h.logger.SecurityEvent(security.EventSessionExpired, &identity.UserID, identity.Email, c.IP(), c.Get("User-Agent"), nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		h.logger.Error("auth check failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Authentication check failed",
		})
	}

	// Keep the session in step with the database.
	if sess, serr := h.store.Get(c); serr == nil {
		setSessionUser(sess, user)
		if err := sess.Save(); err != nil {
			h.logger.Error("session refresh failed", err)
		}
	}

	return c.JSON(fiber.Map{
		"user": user.Profile(),
	})
}

func setSessionUser(sess *session.Session, user *models.User) {
	sess.Set("userId", user.ID)
	sess.Set("email", user.Email)
	sess.Set("groupId", user.GroupID)
	sess.Set("groupName", user.GroupName)
	sess.Set("isApproved", user.IsApproved)
	sess.Set("isAdmin", user.IsAdmin)
}
