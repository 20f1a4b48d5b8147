package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/session"
	"github.com/activehq/activehq/internal/pkg/staffcontext"
)

// SessionKeyUserID is the session entry holding the staff user id.
const SessionKeyUserID = "USER_ID"

// StaffContextMiddleware resolves the session into a StaffContext for every
// request. The gym id placed here is the only tenant identifier the
// handlers ever use; nothing tenant-related is read from request payloads.
func StaffContextMiddleware(c *fiber.Ctx) error {
	anonymous := staffcontext.StaffContext{IsLoggedIn: false}

	store := session.GetSessionStore()
	if store == nil {
		c.Locals(staffcontext.ContextKey, anonymous)
		return c.Next()
	}

	sess, err := store.Get(c)
	if err != nil {
		c.Locals(staffcontext.ContextKey, anonymous)
		return c.Next()
	}

	userID, ok := sess.Get(SessionKeyUserID).(string)
	if !ok || userID == "" {
		c.Locals(staffcontext.ContextKey, anonymous)
		return c.Next()
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userID)
	if err != nil || !user.IsActive {
		c.Locals(staffcontext.ContextKey, anonymous)
		return c.Next()
	}

	c.Locals(staffcontext.ContextKey, staffcontext.StaffContext{
		UserID:     user.ID,
		GymID:      user.GymID,
		Name:       user.Name,
		Role:       user.Role,
		IsLoggedIn: true,
	})

	return c.Next()
}
