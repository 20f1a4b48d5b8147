package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// User is a staff account that logs into the system. Gym customers are
// Members and never authenticate.
type User struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	GymID       string     `gorm:"type:varchar(36);not null;index" json:"gym_id"`
	Name        string     `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email       string     `gorm:"type:varchar(200);not null;uniqueIndex" json:"email" validate:"required,email,min=5,max=200"`
	Password    string     `gorm:"type:text;not null" json:"-" validate:"required,min=8"`
	Role        string     `gorm:"type:varchar(20);not null;default:'staff'" json:"role" validate:"oneof=owner manager staff"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds a staff user with a hashed password, ready to insert.
func CreateUser(gymID, name, email, password, role string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		GymID:    gymID,
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     role,
		IsActive: true,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}
