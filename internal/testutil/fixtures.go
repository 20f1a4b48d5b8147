package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
)

// SeedGym inserts a gym and returns it.
func SeedGym(t *testing.T, db *gorm.DB, name string) *models.Gym {
	t.Helper()
	gym := &models.Gym{
		Name:               name,
		City:               "Pune",
		SubscriptionStatus: models.SubscriptionStatusActive,
		BillingCycle:       models.BillingCycleMonthly,
		IsActive:           true,
	}
	if err := db.Create(gym).Error; err != nil {
		t.Fatalf("seed gym: %v", err)
	}
	return gym
}

// SeedMember inserts an active member for the gym.
func SeedMember(t *testing.T, db *gorm.DB, gymID, name, phone string) *models.Member {
	t.Helper()
	member := &models.Member{
		GymID:    gymID,
		Name:     name,
		Phone:    phone,
		IsActive: true,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return member
}

// SeedPlan inserts an active plan for the gym.
func SeedPlan(t *testing.T, db *gorm.DB, gymID, name string, durationDays int, price string) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		GymID:        gymID,
		Name:         name,
		DurationDays: durationDays,
		Price:        decimal.RequireFromString(price),
		IsActive:     true,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return plan
}
