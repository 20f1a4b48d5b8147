package staffcontext

import "github.com/gofiber/fiber/v2"

const ContextKey = "STAFF_CONTEXT"

// StaffContext carries the authenticated staff user and, crucially, the
// tenant (gym) every downstream query must be scoped to. Handlers never
// accept a gym id from the request payload.
type StaffContext struct {
	UserID     string `json:"user_id"`
	GymID      string `json:"gym_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// Get retrieves the staff context from the fiber context.
// Returns an anonymous context if none is set.
func Get(c *fiber.Ctx) StaffContext {
	if ctx := c.Locals(ContextKey); ctx != nil {
		return ctx.(StaffContext)
	}
	return StaffContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current request carries an authenticated staff session.
func IsLoggedIn(c *fiber.Ctx) bool {
	return Get(c).IsLoggedIn
}

// GymID returns the tenant of the authenticated staff, or empty string.
func GymID(c *fiber.Ctx) string {
	return Get(c).GymID
}

// IsOwner reports whether the current staff holds the owner role.
func IsOwner(c *fiber.Ctx) bool {
	return Get(c).Role == "owner"
}
