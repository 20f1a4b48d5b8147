package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/activehq/activehq/internal/pkg/attendance"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/database"
	"github.com/activehq/activehq/internal/pkg/staffcontext"
)

func attendanceService() *attendance.Service {
	return attendance.NewService(database.GetDB(), clock.System())
}

func attendanceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, attendance.ErrMemberNotFound):
		return errNotFound(c, "member not found")
	case errors.Is(err, attendance.ErrMemberDeactivated):
		return errUnprocessable(c, "member is deactivated")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		return errConflict(c, "member already has an open check-in today")
	case errors.Is(err, attendance.ErrNoOpenCheckIn):
		return errConflict(c, "member has no open check-in today")
	default:
		return errInternal(c, "attendance operation failed")
	}
}

type attendanceRequest struct {
	MemberID string `json:"member_id"`
}

// HandleCheckIn records a member's visit.
func HandleCheckIn(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	var req attendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	visit, err := attendanceService().CheckIn(gymID, req.MemberID, staffcontext.Get(c).UserID)
	if err != nil {
		return attendanceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(visit)
}

// HandleCheckOut closes a member's open check-in from today.
func HandleCheckOut(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	var req attendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	visit, err := attendanceService().CheckOut(gymID, req.MemberID)
	if err != nil {
		return attendanceError(c, err)
	}
	return c.JSON(visit)
}

// HandleListAttendance lists the gym's check-ins for one day (default today).
func HandleListAttendance(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)
	page, pageSize := pagination(c)

	day, ok := parseDateQuery(c, "date")
	if !ok {
		day = clock.DateOf(time.Now().UTC())
	}

	visits, total, err := attendanceService().ListForDay(gymID, day, page, pageSize)
	if err != nil {
		return errInternal(c, "failed to list attendance")
	}
	return c.JSON(fiber.Map{
		"attendance": visits,
		"total":      total,
		"date":       day,
		"page":       page,
		"page_size":  pageSize,
	})
}

// HandleListMemberAttendance returns a member's recent visits.
func HandleListMemberAttendance(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	limit := c.QueryInt("limit", 30)
	visits, err := attendanceService().ListByMember(gymID, c.Params("memberId"), limit)
	if err != nil {
		return attendanceError(c, err)
	}
	return c.JSON(fiber.Map{"attendance": visits})
}
