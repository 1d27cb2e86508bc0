package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants. The role set is closed — everything role-related
// (middleware capability checks, validation) dispatches on these values.
const (
	RoleNGO       = "ngo"
	RoleDonor     = "donor"
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
)

// SelectableRoles are the roles a user may pick for themselves after signup.
// Admin is excluded — admins are provisioned out of band.
var SelectableRoles = []string{RoleNGO, RoleDonor, RoleVolunteer}

// User represents the central user entity shared by all four actor kinds
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Password      string    `gorm:"type:varchar(255)" json:"-"` // Omit password from JSON requests/responses
	Role          string    `gorm:"type:varchar(20);index" json:"role"`
	Phone         string    `gorm:"type:varchar(20)" json:"phone"`
	PhoneVerified bool      `gorm:"not null;default:false" json:"phone_verified"`
	EmailVerified bool      `gorm:"not null;default:true" json:"email_verified"`
	// IsVerified is the actor's global verified flag. It is only ever flipped
	// to true by a completed dual-admin approval of the actor's verification.
	IsVerified bool           `gorm:"not null;default:false" json:"is_verified"`
	IsActive   bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}
