package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/staffcontext"
)

type gymRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// HandleGetGym returns the caller's gym.
func HandleGetGym(c *fiber.Ctx) error {
	gym, err := repository.GetGlobalFactory().GetGymRepository().GetByID(staffcontext.GymID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound(c, "gym not found")
		}
		return errInternal(c, "failed to load gym")
	}
	return c.JSON(gym)
}

// HandleUpdateGym edits the caller's gym. Owner only.
func HandleUpdateGym(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetGymRepository()
	gym, err := repo.GetByID(staffcontext.GymID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound(c, "gym not found")
		}
		return errInternal(c, "failed to load gym")
	}

	var req gymRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	if req.Name != "" {
		gym.Name = strings.TrimSpace(req.Name)
	}
	if req.Address != "" {
		gym.Address = req.Address
	}
	if req.City != "" {
		gym.City = strings.TrimSpace(req.City)
	}
	if req.Phone != "" {
		gym.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Email != "" {
		gym.Email = strings.TrimSpace(req.Email)
	}

	if err := gym.Validate(); err != nil {
		return errUnprocessable(c, err.Error())
	}
	if err := repo.Update(gym); err != nil {
		return errInternal(c, "failed to update gym")
	}
	return c.JSON(gym)
}

// HandleListDemoRequests lists captured sales leads, newest first. Owner
// only; there is no separate platform-admin surface yet.
func HandleListDemoRequests(c *fiber.Ctx) error {
	page, pageSize := pagination(c)

	leads, total, err := repository.GetGlobalFactory().GetDemoRequestRepository().List(page, pageSize)
	if err != nil {
		return errInternal(c, "failed to list demo requests")
	}
	return c.JSON(fiber.Map{
		"demo_requests": leads,
		"total":         total,
		"page":          page,
		"page_size":     pageSize,
	})
}
