package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/staffcontext"
)

type planRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DurationDays int    `json:"duration_days"`
	Price        string `json:"price"`
}

// HandleCreatePlan adds a plan to the caller's gym.
func HandleCreatePlan(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return errBadRequest(c, "price must be a decimal string")
	}

	plan := &models.Plan{
		GymID:        gymID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		DurationDays: req.DurationDays,
		Price:        price,
		IsActive:     true,
	}
	if err := plan.Validate(); err != nil {
		return errUnprocessable(c, err.Error())
	}

	if err := repository.GetGlobalFactory().GetPlanRepository().Create(plan); err != nil {
		return errInternal(c, "failed to create plan")
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleListPlans lists the gym's plans. ?active_only=true hides retired ones.
func HandleListPlans(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	plans, err := repository.GetGlobalFactory().GetPlanRepository().
		List(gymID, c.QueryBool("active_only", false))
	if err != nil {
		return errInternal(c, "failed to list plans")
	}
	return c.JSON(fiber.Map{"plans": plans})
}

// HandleGetPlan returns one plan.
func HandleGetPlan(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	plan, err := repository.GetGlobalFactory().GetPlanRepository().GetByID(gymID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound(c, "plan not found")
		}
		return errInternal(c, "failed to load plan")
	}
	return c.JSON(plan)
}

// HandleUpdatePlan edits a plan. Existing memberships copied price and
// duration at creation and are not affected.
func HandleUpdatePlan(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	repo := repository.GetGlobalFactory().GetPlanRepository()
	plan, err := repo.GetByID(gymID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound(c, "plan not found")
		}
		return errInternal(c, "failed to load plan")
	}

	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	if req.Name != "" {
		plan.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		plan.Description = req.Description
	}
	if req.DurationDays > 0 {
		plan.DurationDays = req.DurationDays
	}
	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			return errBadRequest(c, "price must be a decimal string")
		}
		plan.Price = price
	}

	if err := plan.Validate(); err != nil {
		return errUnprocessable(c, err.Error())
	}
	if err := repo.Update(plan); err != nil {
		return errInternal(c, "failed to update plan")
	}
	return c.JSON(plan)
}

// HandleDeactivatePlan retires a plan from sale. Renewals on it keep working.
func HandleDeactivatePlan(c *fiber.Ctx) error {
	return setPlanActive(c, false)
}

// HandleActivatePlan puts a retired plan back on sale.
func HandleActivatePlan(c *fiber.Ctx) error {
	return setPlanActive(c, true)
}

func setPlanActive(c *fiber.Ctx, active bool) error {
	gymID := staffcontext.GymID(c)

	err := repository.GetGlobalFactory().GetPlanRepository().SetActive(gymID, c.Params("id"), active)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound(c, "plan not found")
		}
		return errInternal(c, "failed to update plan")
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "is_active": active})
}
