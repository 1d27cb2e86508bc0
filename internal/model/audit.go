package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateRequest     = "CREATE_REQUEST"
	ActionApproveRequest    = "APPROVE_REQUEST"
	ActionCancelRequest     = "CANCEL_REQUEST"
	ActionConfirmReceipt    = "CONFIRM_RECEIPT"
	ActionCreateFulfillment = "CREATE_FULFILLMENT"

	// Consensus workflow actions
	ActionFirstApprovalVote  = "FIRST_APPROVAL_VOTE"
	ActionSecondApprovalVote = "SECOND_APPROVAL_VOTE"
	ActionRejectVerification = "REJECT_VERIFICATION"

	// Delivery escalation actions
	ActionFlagExtraVolunteer = "FLAG_EXTRA_VOLUNTEER"
	ActionCreditVolunteer    = "CREDIT_VOLUNTEER"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(64);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
