package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/staffcontext"
)

type memberRequest struct {
	MemberCode            string `json:"member_code"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	AlternatePhone        string `json:"alternate_phone"`
	Gender                string `json:"gender"`
	DateOfBirth           string `json:"date_of_birth"`
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	JoinedDate            string `json:"joined_date"`
	Notes                 string `json:"notes"`
}

// HandleCreateMember registers a new member for the caller's gym.
func HandleCreateMember(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	var req memberRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	dob, err := parseDateField(req.DateOfBirth)
	if err != nil {
		return errBadRequest(c, "date_of_birth must be YYYY-MM-DD")
	}
	joined, err := parseDateField(req.JoinedDate)
	if err != nil {
		return errBadRequest(c, "joined_date must be YYYY-MM-DD")
	}

	member := &models.Member{
		GymID:                 gymID,
		MemberCode:            strings.TrimSpace(req.MemberCode),
		Name:                  strings.TrimSpace(req.Name),
		Email:                 strings.TrimSpace(req.Email),
		Phone:                 strings.TrimSpace(req.Phone),
		AlternatePhone:        strings.TrimSpace(req.AlternatePhone),
		Gender:                req.Gender,
		DateOfBirth:           dob,
		Address:               req.Address,
		EmergencyContactName:  strings.TrimSpace(req.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(req.EmergencyContactPhone),
		Notes:                 req.Notes,
		IsActive:              true,
	}
	if joined != nil {
		member.JoinedDate = *joined
	} else {
		member.JoinedDate = clock.DateOf(time.Now().UTC())
	}

	if err := member.Validate(); err != nil {
		return errUnprocessable(c, err.Error())
	}

	repo := repository.GetGlobalFactory().GetMemberRepository()
	if _, err := repo.GetByPhone(gymID, member.Phone); err == nil {
		return errConflict(c, "a member with this phone already exists")
	}

	if err := repo.Create(member); err != nil {
		return errInternal(c, "failed to create member")
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// HandleListMembers lists the gym's members with optional search and
// membership-status filter.
func HandleListMembers(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)
	page, pageSize := pagination(c)

	status := c.Query("status")
	if status != "" && status != "active" && status != "expired" {
		return errBadRequest(c, "status must be active or expired")
	}

	asOf, ok := parseDateQuery(c, "as_of")
	if !ok {
		asOf = clock.DateOf(time.Now().UTC())
	}

	members, total, err := repository.GetGlobalFactory().GetMemberRepository().List(gymID, repository.MemberListOptions{
		Search:   c.Query("search"),
		Status:   status,
		AsOf:     asOf,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return errInternal(c, "failed to list members")
	}

	return c.JSON(fiber.Map{
		"members":   members,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// HandleGetMember returns one member.
func HandleGetMember(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	member, err := repository.GetGlobalFactory().GetMemberRepository().GetByID(gymID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound(c, "member not found")
		}
		return errInternal(c, "failed to load member")
	}
	return c.JSON(member)
}

// HandleUpdateMember updates a member's details.
func HandleUpdateMember(c *fiber.Ctx) error {
	gymID := staffcontext.GymID(c)

	repo := repository.GetGlobalFactory().GetMemberRepository()
	member, err := repo.GetByID(gymID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound(c, "member not found")
		}
		return errInternal(c, "failed to load member")
	}

	var req memberRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "invalid request body")
	}

	if req.Name != "" {
		member.Name = strings.TrimSpace(req.Name)
	}
	if req.Phone != "" {
		member.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Email != "" {
		member.Email = strings.TrimSpace(req.Email)
	}
	if req.AlternatePhone != "" {
		member.AlternatePhone = strings.TrimSpace(req.AlternatePhone)
	}
	if req.Gender != "" {
		member.Gender = req.Gender
	}
	if req.Address != "" {
		member.Address = req.Address
	}
	if req.EmergencyContactName != "" {
		member.EmergencyContactName = strings.TrimSpace(req.EmergencyContactName)
	}
	if req.EmergencyContactPhone != "" {
		member.EmergencyContactPhone = strings.TrimSpace(req.EmergencyContactPhone)
	}
	if req.MemberCode != "" {
		member.MemberCode = strings.TrimSpace(req.MemberCode)
	}
	if req.Notes != "" {
		member.Notes = req.Notes
	}
	if req.DateOfBirth != "" {
		dob, err := parseDateField(req.DateOfBirth)
		if err != nil {
			return errBadRequest(c, "date_of_birth must be YYYY-MM-DD")
		}
		member.DateOfBirth = dob
	}

	if err := member.Validate(); err != nil {
		return errUnprocessable(c, err.Error())
	}
	if err := repo.Update(member); err != nil {
		return errInternal(c, "failed to update member")
	}
	return c.JSON(member)
}

// HandleDeactivateMember soft-deletes a member. History stays intact.
func HandleDeactivateMember(c *fiber.Ctx) error {
	return setMemberActive(c, false)
}

// HandleReactivateMember re-enables a soft-deleted member.
func HandleReactivateMember(c *fiber.Ctx) error {
	return setMemberActive(c, true)
}

func setMemberActive(c *fiber.Ctx, active bool) error {
	gymID := staffcontext.GymID(c)

	err := repository.GetGlobalFactory().GetMemberRepository().SetActive(gymID, c.Params("id"), active)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound(c, "member not found")
		}
		return errInternal(c, "failed to update member")
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "is_active": active})
}
