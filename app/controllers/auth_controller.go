package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/middleware"
	"github.com/activehq/activehq/internal/pkg/session"
	"github.com/activehq/activehq/internal/pkg/staffcontext"
)

type registerRequest struct {
	GymName   string `json:"gym_name"`
	City      string `json:"city"`
	Phone     string `json:"phone"`
	OwnerName string `json:"owner_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// HandleRegister creates a gym and its owner account in one step and logs
// the owner in.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	gym := &models.Gym{
		Name:               strings.TrimSpace(req.GymName),
		City:               strings.TrimSpace(req.City),
		Phone:              strings.TrimSpace(req.Phone),
		SubscriptionStatus: models.SubscriptionStatusTrial,
		BillingCycle:       models.BillingCycleMonthly,
		IsActive:           true,
	}
	if err := gym.Validate(); err != nil {
		return errUnprocessable(c, err.Error())
	}

	owner, err := models.CreateUser("", req.OwnerName, strings.ToLower(strings.TrimSpace(req.Email)), req.Password, models.RoleOwner)
	if err != nil {
		return errUnprocessable(c, err.Error())
	}

	repos := repository.GetGlobalRepositories()
	if existing, err := repos.User.GetByEmail(owner.Email); err == nil && existing != nil {
		return errConflict(c, "email is already registered")
	}

	if err := repos.Gym.CreateWithOwner(gym, owner); err != nil {
		log.Errorf("[Auth] Registration failed: %v", err)
		return errInternal(c, "failed to create gym")
	}

	if err := session.SetSessionValue(c, middleware.SessionKeyUserID, owner.ID); err != nil {
		log.Errorf("[Auth] Session write failed: %v", err)
		return errInternal(c, "failed to start session")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"gym":  gym,
		"user": owner,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates a staff user and starts a session.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "invalid credentials"})
		}
		return errInternal(c, "failed to load user")
	}

	if !user.IsActive || !models.CheckPasswordHash(req.Password, user.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "invalid credentials"})
	}

	if err := session.SetSessionValue(c, middleware.SessionKeyUserID, user.ID); err != nil {
		log.Errorf("[Auth] Session write failed: %v", err)
		return errInternal(c, "failed to start session")
	}

	now := c.Context().Time().UTC()
	if err := repos.User.UpdateLastLogin(user.ID, now); err != nil {
		log.Warnf("[Auth] Last-login stamp failed for %s: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

// HandleLogout destroys the caller's session.
func HandleLogout(c *fiber.Ctx) error {
	if err := session.DestroySession(c); err != nil {
		log.Warnf("[Auth] Session destroy failed: %v", err)
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

// HandleMe returns the authenticated staff user and their gym.
func HandleMe(c *fiber.Ctx) error {
	ctx := staffcontext.Get(c)

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(ctx.UserID)
	if err != nil {
		return errNotFound(c, "user not found")
	}
	gym, err := repos.Gym.GetByID(ctx.GymID)
	if err != nil {
		return errNotFound(c, "gym not found")
	}

	return c.JSON(fiber.Map{"user": user, "gym": gym})
}
