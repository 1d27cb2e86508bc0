package model

import (
	"time"

	"github.com/google/uuid"
)

// Approval target types. The consensus vote is generic over the target type;
// target-specific post-approval effects live in the consensus service.
const (
	ApprovalTargetNGO       = "ngo"
	ApprovalTargetVolunteer = "volunteer"
)

// Approval final status constants
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// AdminApproval is the two-admin consensus vote ledger. The admin-A slot is
// a single-writer resource claimed on the first vote; the second vote must
// come from a distinct admin and completes the record, after which it is
// immutable. At most one record per (target_id, target_type) may be pending
// at a time.
type AdminApproval struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TargetID        string     `gorm:"type:varchar(64);not null;index:idx_approval_target" json:"target_id"`
	TargetType      string     `gorm:"type:varchar(20);not null;index:idx_approval_target" json:"target_type"`
	AdminAID        *uuid.UUID `gorm:"type:uuid" json:"admin_a_id"`
	AdminAApproved  bool       `gorm:"not null;default:false" json:"admin_a_approved"`
	AdminATimestamp *time.Time `json:"admin_a_timestamp,omitempty"`
	AdminBID        *uuid.UUID `gorm:"type:uuid" json:"admin_b_id"`
	AdminBApproved  bool       `gorm:"not null;default:false" json:"admin_b_approved"`
	AdminBTimestamp *time.Time `json:"admin_b_timestamp,omitempty"`
	FinalStatus     string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"final_status"`
	Reason          string     `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
