package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/database"
	"github.com/activehq/activehq/internal/pkg/membership"
	"github.com/activehq/activehq/internal/pkg/staffcontext"
)

func membershipService() *membership.Service {
	return membership.NewService(database.GetDB(), clock.System())
}

// membershipError maps the ledger's error kinds onto HTTP responses.
func membershipError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, membership.ErrMemberNotFound):
		return errNotFound(c, "member not found")
	case errors.Is(err, membership.ErrPlanNotFound):
		return errNotFound(c, "plan not found")
	case errors.Is(err, membership.ErrMembershipNotFound):
		return errNotFound(c, "membership not found")
	case errors.Is(err, membership.ErrPlanInactive):
		return errUnprocessable(c, "plan is not active")
	case errors.Is(err, membership.ErrInvalidTransition):
		return errUnprocessable(c, "membership status does not allow this transition")
	case errors.Is(err, membership.ErrNoPlanAvailable):
		return errUnprocessable(c, "no plan specified and member has no current membership")
	case errors.Is(err, membership.ErrNegativeAmount):
		return errUnprocessable(c, "amounts must not be negative")
	default:
		return errInternal(c, "membership operation failed")
	}
}

type membershipRequest struct {
	MemberID    string `json:"member_id"`
	PlanID      string `json:"plan_id"`
	StartDate   string `json:"start_date"`
	AmountTotal string `json:"amount_total"`
	AmountPaid  string `json:"amount_paid"`
	Notes       string `json:"notes"`
}

func (r *membershipRequest) amounts() (*decimal.Decimal, decimal.Decimal, error) {
	var total *decimal.Decimal
	if r.AmountTotal != "" {
		v, err := decimal.NewFromString(r.AmountTotal)
		if err != nil {
			return nil, decimal.Zero, err
		}
		total = &v
	}
	paid := decimal.Zero
	if r.AmountPaid != "" {
		v, err := decimal.NewFromString(r.AmountPaid)
		if err != nil {
			return nil, decimal.Zero, err
		}
		paid = v
	}
	return total, paid, nil
}

// HandleCreateMembership starts a new membership for a member.
func HandleCreateMembership(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	var req membershipRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}
	start, err := parseDateField(req.StartDate)
	if err != nil {
		return errBadRequest(c, "start_date must be YYYY-MM-DD")
	}
	total, paid, err := req.amounts()
	if err != nil {
		return errBadRequest(c, "amounts must be decimal strings")
	}

	m, err := membershipService().Create(gymID, membership.CreateInput{
		MemberID:    req.MemberID,
		PlanID:      req.PlanID,
		StartDate:   start,
		AmountTotal: total,
		AmountPaid:  paid,
		Notes:       req.Notes,
		CreatedBy:   staffcontext.Get(c).UserID,
	})
	if err != nil {
		return membershipError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// HandleRenewMembership appends a new membership continuing the member's
// history. Defaults follow from the member's current membership.
func HandleRenewMembership(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	var req membershipRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}
	start, err := parseDateField(req.StartDate)
	if err != nil {
		return errBadRequest(c, "start_date must be YYYY-MM-DD")
	}
	total, paid, err := req.amounts()
	if err != nil {
		return errBadRequest(c, "amounts must be decimal strings")
	}

	m, err := membershipService().Renew(gymID, c.Params("memberId"), membership.RenewInput{
		PlanID:      req.PlanID,
		StartDate:   start,
		AmountTotal: total,
		AmountPaid:  paid,
		Notes:       req.Notes,
		CreatedBy:   staffcontext.Get(c).UserID,
	})
	if err != nil {
		return membershipError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// HandleGetMembership returns one membership with its effective status.
func HandleGetMembership(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	m, err := membershipService().Get(gymID, c.Params("id"))
	if err != nil {
		return membershipError(c, err)
	}
	return c.JSON(membershipView(m))
}

// HandleListMemberships lists the gym's memberships, optionally filtered by
// stored status.
func HandleListMemberships(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)
	page, pageSize := pagination(c)

	status := c.Query("status")
	switch status {
	case "", models.MembershipStatusActive, models.MembershipStatusPaused,
		models.MembershipStatusExpired, models.MembershipStatusCancelled:
	default:
		return errBadRequest(c, "unknown status filter")
	}

	memberships, total, err := membershipService().List(gymID, status, page, pageSize)
	if err != nil {
		return errInternal(c, "failed to list memberships")
	}

	views := make([]fiber.Map, 0, len(memberships))
	for i := range memberships {
		views = append(views, membershipView(&memberships[i]))
	}
	return c.JSON(fiber.Map{
		"memberships": views,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
	})
}

// HandleListMemberMemberships returns a member's full membership history.
func HandleListMemberMemberships(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	memberships, err := membershipService().ListByMember(gymID, c.Params("memberId"))
	if err != nil {
		return membershipError(c, err)
	}

	views := make([]fiber.Map, 0, len(memberships))
	for i := range memberships {
		views = append(views, membershipView(&memberships[i]))
	}
	return c.JSON(fiber.Map{"memberships": views})
}

// HandleCurrentMembership returns the membership covering the member today.
func HandleCurrentMembership(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	asOf, ok := parseDateQuery(c, "as_of")
	if !ok {
		asOf = clock.DateOf(time.Now().UTC())
	}

	m, err := membershipService().CurrentActive(gymID, c.Params("memberId"), asOf)
	if err != nil {
		return membershipError(c, err)
	}
	return c.JSON(membershipView(m))
}

// HandlePauseMembership pauses an active membership.
func HandlePauseMembership(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	m, err := membershipService().Pause(gymID, c.Params("id"))
	if err != nil {
		return membershipError(c, err)
	}
	return c.JSON(membershipView(m))
}

// HandleResumeMembership resumes a paused membership.
func HandleResumeMembership(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	m, err := membershipService().Resume(gymID, c.Params("id"))
	if err != nil {
		return membershipError(c, err)
	}
	return c.JSON(membershipView(m))
}

// HandleCancelMembership cancels a membership. Cancelling an already
// terminal one succeeds without changes.
func HandleCancelMembership(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	m, err := membershipService().Cancel(gymID, c.Params("id"))
	if err != nil {
		return membershipError(c, err)
	}
	return c.JSON(membershipView(m))
}

// membershipView augments the row with derived fields.
func membershipView(m *models.Membership) fiber.Map {
	now := time.Now().UTC()
	return fiber.Map{
		"id":               m.ID,
		"member_id":        m.MemberID,
		"plan_id":          m.PlanID,
		"start_date":       m.StartDate,
		"end_date":         m.EndDate,
		"amount_total":     m.AmountTotal,
		"amount_paid":      m.AmountPaid,
		"amount_due":       m.AmountDue(),
		"status":           m.Status,
		"effective_status": m.EffectiveStatus(now),
		"notes":            m.Notes,
		"created_at":       m.CreatedAt,
	}
}
