package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/database"
	"github.com/activehq/activehq/internal/pkg/reports"
	"github.com/activehq/activehq/internal/pkg/staffcontext"
)

func reportService() *reports.Service {
	return reports.NewService(database.GetDB())
}

func asOfOrToday(c *fiber.Ctx) time.Time {
	if asOf, ok := parseDateQuery(c, "as_of"); ok {
		return asOf
	}
	return clock.DateOf(time.Now().UTC())
}

// HandleDashboard returns the gym's headline numbers.
func HandleDashboard(c *fiber.Ctx) error {
	stats, err := reportService().Dashboard(staffcontext.GymID(c), asOfOrToday(c))
	if err != nil {
		return errInternal(c, "failed to build dashboard")
	}
	return c.JSON(stats)
}

// HandleMembershipStats returns membership counts by effective status.
func HandleMembershipStats(c *fiber.Ctx) error {
	stats, err := reportService().Memberships(staffcontext.GymID(c), asOfOrToday(c))
	if err != nil {
		return errInternal(c, "failed to build membership stats")
	}
	return c.JSON(stats)
}

// HandleCollectionReport returns payment totals over an inclusive date
// range with per-mode and per-day breakdowns.
func HandleCollectionReport(c *fiber.Ctx) error {
	from, ok := parseDateQuery(c, "from_date")
	if !ok {
		return errBadRequest(c, "from_date is required (YYYY-MM-DD)")
	}
	to, ok := parseDateQuery(c, "to_date")
	if !ok {
		return errBadRequest(c, "to_date is required (YYYY-MM-DD)")
	}
	if to.Before(from) {
		return errBadRequest(c, "to_date must not be before from_date")
	}

	report, err := reportService().Collection(staffcontext.GymID(c), from, to)
	if err != nil {
		return errInternal(c, "failed to build collection report")
	}
	return c.JSON(report)
}

// HandleExpiringMembers lists memberships ending within ?days (default 7).
func HandleExpiringMembers(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days < 1 || days > 365 {
		return errBadRequest(c, "days must be between 1 and 365")
	}

	rows, err := reportService().ExpiringMembers(staffcontext.GymID(c), days, asOfOrToday(c))
	if err != nil {
		return errInternal(c, "failed to build expiring members report")
	}
	return c.JSON(fiber.Map{"expiring": rows})
}

// HandleMembersWithDues lists members owing money, largest balance first.
func HandleMembersWithDues(c *fiber.Ctx) error {
	rows, err := reportService().MembersWithDues(staffcontext.GymID(c))
	if err != nil {
		return errInternal(c, "failed to build dues report")
	}
	return c.JSON(fiber.Map{"members": rows})
}
