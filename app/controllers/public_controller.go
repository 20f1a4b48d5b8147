package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
)

type demoRequestBody struct {
	Name     string `json:"name"`
	GymName  string `json:"gym_name"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Locality string `json:"locality"`
	Email    string `json:"email"`
}

// HandleCreateDemoRequest captures a sales lead from the public site. No
// authentication; there is no gym yet.
func HandleCreateDemoRequest(c *fiber.Ctx) error {
	var req demoRequestBody
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	lead := &models.DemoRequest{
		Name:     strings.TrimSpace(req.Name),
		GymName:  strings.TrimSpace(req.GymName),
		Phone:    strings.TrimSpace(req.Phone),
		City:     strings.TrimSpace(req.City),
		Locality: strings.TrimSpace(req.Locality),
		Email:    strings.TrimSpace(req.Email),
		Source:   "public_site",
	}
	if err := lead.Validate(); err != nil {
		return errUnprocessable(c, err.Error())
	}

	if err := repository.GetGlobalFactory().GetDemoRequestRepository().Create(lead); err != nil {
		log.Errorf("[Public] Demo request insert failed: %v", err)
		return errInternal(c, "failed to save request")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "We will reach out shortly", "id": lead.ID})
}

// HandleHealth is the load balancer probe.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
