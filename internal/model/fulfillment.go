package model

import (
	"time"

	"github.com/google/uuid"
)

// Delivery method enum constants
const (
	DeliveryMethodSelf      = "self"
	DeliveryMethodVolunteer = "volunteer"
)

// Food condition enum constants
const (
	FoodConditionFresh  = "fresh"
	FoodConditionCooked = "cooked"
	FoodConditionPacked = "packed"
)

// DonorFulfillment status constants
const (
	FulfillmentStatusPending   = "pending"
	FulfillmentStatusAccepted  = "accepted"
	FulfillmentStatusPickedUp  = "picked_up"
	FulfillmentStatusDelivered = "delivered"
	FulfillmentStatusConfirmed = "confirmed"
)

// DonorFulfillment records a donor's commitment of servings against a food
// request. Immutable once created except for Status — the cap check against
// the request happens at creation time (accept-then-verify).
type DonorFulfillment struct {
	ID               uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"request_id"`
	DonorID          uuid.UUID    `gorm:"type:uuid;not null;index" json:"donor_id"`
	DonorName        string       `gorm:"type:varchar(255);not null" json:"donor_name"`
	Quantity         int          `gorm:"not null" json:"quantity"`
	FoodCondition    string       `gorm:"type:varchar(20);not null" json:"food_condition"`
	AvailabilityTime time.Time    `gorm:"not null" json:"availability_time"`
	FoodPhoto        string       `gorm:"type:text" json:"food_photo,omitempty"` // URL reference, storage is external
	GeoTag           *Coordinates `gorm:"embedded;embeddedPrefix:geo_" json:"geo_tag,omitempty"`
	DeliveryMethod   string       `gorm:"type:varchar(20);not null" json:"delivery_method"`
	Status           string       `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt        time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}
