package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Delivery status constants. in_transit is an optional intermediate state;
// not every delivery passes through it.
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusAssigned  = "assigned"
	DeliveryStatusPickedUp  = "picked_up"
	DeliveryStatusInTransit = "in_transit"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusConfirmed = "confirmed"
)

// UUIDList stores a list of user ids as a jsonb column
type UUIDList []string

// Value implements driver.Valuer for jsonb serialization
func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		l = UUIDList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *UUIDList) Scan(value interface{}) error {
	if value == nil {
		*l = UUIDList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for UUIDList: %T", value)
	}
}

// Contains reports whether id is in the list
func (l UUIDList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Delivery is the physical transport leg from donor to NGO. The primary
// volunteer slot (VolunteerID) is a single-writer resource: it is claimed by
// a conditional update and never silently overwritten. AdditionalVolunteers
// is a credit-only side list — those participants never drive the state
// machine.
type Delivery struct {
	ID                     uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FulfillmentID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"fulfillment_id"`
	RequestID              uuid.UUID   `gorm:"type:uuid;not null;index" json:"request_id"`
	DonorID                uuid.UUID   `gorm:"type:uuid;not null" json:"donor_id"`
	NGOID                  uuid.UUID   `gorm:"type:uuid;not null" json:"ngo_id"`
	VolunteerID            *uuid.UUID  `gorm:"type:uuid;index" json:"volunteer_id"`
	AdditionalVolunteers   UUIDList    `gorm:"type:jsonb;not null;default:'[]'" json:"additional_volunteers"`
	PickupLocation         Coordinates `gorm:"embedded;embeddedPrefix:pickup_" json:"pickup_location"`
	PickupAddress          string      `gorm:"type:text;not null" json:"pickup_address"`
	DropoffLocation        Coordinates `gorm:"embedded;embeddedPrefix:dropoff_" json:"dropoff_location"`
	DropoffAddress         string      `gorm:"type:text;not null" json:"dropoff_address"`
	Status                 string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DeliveryProof          string      `gorm:"type:text" json:"delivery_proof,omitempty"` // URL reference
	ExtraVolunteerRequired bool        `gorm:"not null;default:false" json:"extra_volunteer_required"`
	Notes                  string      `gorm:"type:text" json:"notes,omitempty"`
	PickedUpAt             *time.Time  `json:"picked_up_at,omitempty"`
	DeliveredAt            *time.Time  `json:"delivered_at,omitempty"`
	ConfirmedAt            *time.Time  `json:"confirmed_at,omitempty"`
	CreatedAt              time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// AssignedTo reports whether volunteerID currently holds the primary slot.
func (d *Delivery) AssignedTo(volunteerID uuid.UUID) bool {
	return d.VolunteerID != nil && *d.VolunteerID == volunteerID
}
