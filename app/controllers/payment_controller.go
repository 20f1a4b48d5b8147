package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/database"
	"github.com/activehq/activehq/internal/pkg/payments"
	"github.com/activehq/activehq/internal/pkg/staffcontext"
)

func paymentService() *payments.Service {
	return payments.NewService(database.GetDB(), clock.System())
}

func paymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, payments.ErrMemberNotFound):
		return errNotFound(c, "member not found")
	case errors.Is(err, payments.ErrMembershipNotFound):
		return errNotFound(c, "membership not found")
	case errors.Is(err, payments.ErrPaymentNotFound):
		return errNotFound(c, "payment not found")
	case errors.Is(err, payments.ErrInvalidAmount):
		return errUnprocessable(c, "amount must be positive")
	case errors.Is(err, payments.ErrNegativeTax):
		return errUnprocessable(c, "tax_amount must not be negative")
	case errors.Is(err, payments.ErrInvalidMode):
		return errUnprocessable(c, "unknown payment mode")
	default:
		return errInternal(c, "payment operation failed")
	}
}

type paymentRequest struct {
	MemberID        string `json:"member_id"`
	MembershipID    string `json:"membership_id"`
	Amount          string `json:"amount"`
	TaxAmount       string `json:"tax_amount"`
	PaymentMode     string `json:"payment_mode"`
	PaymentDate     string `json:"payment_date"`
	ReferenceNumber string `json:"reference_number"`
	Notes           string `json:"notes"`
}

// HandleRecordPayment records a payment. When membership_id is given the
// membership ledger is updated in the same transaction.
func HandleRecordPayment(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return errBadRequest(c, "amount must be a decimal string")
	}
	tax := decimal.Zero
	if req.TaxAmount != "" {
		tax, err = decimal.NewFromString(req.TaxAmount)
		if err != nil {
			return errBadRequest(c, "tax_amount must be a decimal string")
		}
	}
	date, err := parseDateField(req.PaymentDate)
	if err != nil {
		return errBadRequest(c, "payment_date must be YYYY-MM-DD")
	}

	var membershipID *string
	if req.MembershipID != "" {
		membershipID = &req.MembershipID
	}

	p, err := paymentService().Record(gymID, payments.RecordInput{
		MemberID:        req.MemberID,
		MembershipID:    membershipID,
		Amount:          amount,
		TaxAmount:       tax,
		PaymentMode:     req.PaymentMode,
		PaymentDate:     date,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		ReceivedBy:      staffcontext.Get(c).UserID,
	})
	if err != nil {
		return paymentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// HandleListPayments lists payments with optional member, date-range and
// mode filters. The totals cover the whole filtered set, not just the page.
func HandleListPayments(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)
	page, pageSize := pagination(c)

	filter := repository.PaymentFilter{
		MemberID: c.Query("member_id"),
		Mode:     c.Query("mode"),
	}
	if filter.Mode != "" && !models.ValidPaymentMode(filter.Mode) {
		return errBadRequest(c, "unknown payment mode")
	}
	if from, ok := parseDateQuery(c, "from_date"); ok {
		filter.FromDate = &from
	}
	if to, ok := parseDateQuery(c, "to_date"); ok {
		filter.ToDate = &to
	}

	rows, total, sum, err := paymentService().List(gymID, filter, page, pageSize)
	if err != nil {
		return errInternal(c, "failed to list payments")
	}

	return c.JSON(fiber.Map{
		"payments":     rows,
		"total_count":  total,
		"total_amount": sum,
		"page":         page,
		"page_size":    pageSize,
	})
}

// HandleDailyCollection returns the collection summary for one day,
// defaulting to today.
func HandleDailyCollection(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	day := clock.System().Today()
	if d, ok := parseDateQuery(c, "date"); ok {
		day = d
	}

	summary, err := paymentService().DailyCollection(gymID, day)
	if err != nil {
		return errInternal(c, "failed to build daily collection")
	}
	return c.JSON(summary)
}

// HandleGetPayment returns one payment.
func HandleGetPayment(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	p, err := paymentService().Get(gymID, c.Params("id"))
	if err != nil {
		return paymentError(c, err)
	}
	return c.JSON(p)
}

// HandleListMemberPayments returns a member's payments, newest first.
func HandleListMemberPayments(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	rows, err := paymentService().ListByMember(gymID, c.Params("memberId"))
	if err != nil {
		return paymentError(c, err)
	}
	return c.JSON(fiber.Map{"payments": rows})
}
