package model

import (
	"time"

	"github.com/google/uuid"
)

// Verification status constants shared by NGO and volunteer verifications
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Transport mode enum constants for volunteers
const (
	TransportBike = "bike"
	TransportAuto = "auto"
	TransportCar  = "car"
	TransportWalk = "walk"
)

// NGOVerification is an NGO's identity submission. Its status only becomes
// approved through a completed dual-admin approval; rejection is
// single-admin and bypasses consensus.
type NGOVerification struct {
	ID                 uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID             uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	OrganizationName   string      `gorm:"type:varchar(255);not null" json:"organization_name"`
	RegistrationNumber string      `gorm:"type:varchar(100);not null" json:"registration_number"`
	Address            string      `gorm:"type:text;not null" json:"address"`
	City               string      `gorm:"type:varchar(100);not null" json:"city"`
	State              string      `gorm:"type:varchar(100);not null" json:"state"`
	Pincode            string      `gorm:"type:varchar(20);not null" json:"pincode"`
	Website            string      `gorm:"type:varchar(255)" json:"website,omitempty"`
	Description        string      `gorm:"type:text" json:"description,omitempty"`
	Location           Coordinates `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Documents          UUIDList    `gorm:"type:jsonb;not null;default:'[]'" json:"documents"` // URL references, storage is external
	Status             string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectionReason    string      `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewedBy         *uuid.UUID  `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt          time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// VolunteerVerification is a volunteer's eligibility record plus their
// running delivery stats. DeliveryCount is incremented exactly once per
// delivered transition of a delivery they drove.
type VolunteerVerification struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	IDDocument       string     `gorm:"type:text" json:"id_document,omitempty"` // URL reference
	TransportMode    string     `gorm:"type:varchar(20)" json:"transport_mode,omitempty"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectionReason  string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewedBy       *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	DeliveryCount    int        `gorm:"not null;default:0" json:"delivery_count"`
	PerformanceScore float64    `gorm:"not null;default:5.0" json:"performance_score"`
	Badges           UUIDList   `gorm:"type:jsonb;not null;default:'[]'" json:"badges"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
