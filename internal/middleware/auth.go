// Package middleware provides HTTP middleware for authentication,
// authorization and request hardening.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// identityKey is the c.Locals key holding the request Identity.
const identityKey = "identity"

// Identity is the per-request snapshot of the authenticated user, built once
// from the session by AuthRequired. Guards and handlers read this snapshot
// instead of touching the session again, so a request sees one consistent
// view of the user even if the session changes mid-flight.
type Identity struct {
	UserID     int
	Email      string
	GroupID    int
	GroupName  string
	IsApproved bool
	IsAdmin    bool
}

// IdentityFrom returns the Identity set by AuthRequired, or nil when the
// request is unauthenticated.
func IdentityFrom(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(identityKey).(*Identity)
	return id
}

// AuthRequired ensures the request carries a valid session with a logged-in
// user, and stores an Identity snapshot in the context for downstream guards
// and handlers.
//
// Example:
//
//	api := app.Group("/api/reports", middleware.AuthRequired(store), middleware.ApprovedOnly())
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return unauthenticated(c)
		}

		userID, ok := sess.Get("userId").(int)
		if !ok {
			return unauthenticated(c)
		}

		identity := &Identity{UserID: userID}
		identity.Email, _ = sess.Get("email").(string)
		identity.GroupID, _ = sess.Get("groupId").(int)
		identity.GroupName, _ = sess.Get("groupName").(string)
		identity.IsApproved, _ = sess.Get("isApproved").(bool)
		identity.IsAdmin, _ = sess.Get("isAdmin").(bool)

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// ApprovedOnly rejects users whose registration has not been approved yet.
// Must run after AuthRequired.
func ApprovedOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := IdentityFrom(c)
		if identity == nil {
			return unauthenticated(c)
		}
		if !identity.IsApproved {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":            "Account pending approval",
				"pending_approval": true,
			})
		}
		return c.Next()
	}
}

// AdminOnly restricts a route to administrators. Must run after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := IdentityFrom(c)
		if identity == nil {
			return unauthenticated(c)
		}
		if !identity.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Authentication required",
	})
}
