package model

import (
	"time"

	"github.com/google/uuid"
)

// FoodRequest status constants. Transitions are monotonic forward except
// cancellation, which is reachable from any non-terminal state.
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusActive    = "active"
	RequestStatusFulfilled = "fulfilled"
	RequestStatusCancelled = "cancelled"
)

// RequestOpenStatuses is the discovery default and the only set of states a
// donor may fulfill against.
var RequestOpenStatuses = []string{RequestStatusApproved, RequestStatusActive}

// Food type enum constants
const (
	FoodTypeCooked   = "cooked"
	FoodTypePackaged = "packaged"
	FoodTypeRaw      = "raw"
	FoodTypeMixed    = "mixed"
)

// Urgency level enum constants
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// Coordinates is a {lat, lng} pair of floating point degrees
type Coordinates struct {
	Lat float64 `gorm:"column:lat" json:"lat"`
	Lng float64 `gorm:"column:lng" json:"lng"`
}

// IsZero reports whether the coordinate is the zero sentinel used for
// missing locations.
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// FoodRequest is the root aggregate of the fulfillment chain: an NGO's ask
// for a quantity of food servings. FulfilledQuantity never exceeds Quantity;
// the cap is enforced by a conditional increment at the store layer.
type FoodRequest struct {
	ID                uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	NGOID             uuid.UUID   `gorm:"type:uuid;not null;index" json:"ngo_id"`
	NGOName           string      `gorm:"type:varchar(255);not null" json:"ngo_name"`
	FoodType          string      `gorm:"type:varchar(20);not null;index" json:"food_type"`
	Quantity          int         `gorm:"not null" json:"quantity"` // number of servings
	UrgencyLevel      string      `gorm:"type:varchar(20);not null;default:'medium'" json:"urgency_level"`
	Description       string      `gorm:"type:text" json:"description,omitempty"`
	Location          Coordinates `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Address           string      `gorm:"type:text;not null" json:"address"`
	Status            string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ApprovedBy        *uuid.UUID  `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt        *time.Time  `json:"approved_at,omitempty"`
	FulfilledQuantity int         `gorm:"not null;default:0" json:"fulfilled_quantity"`
	// ReceiptConfirmedAt latches the receipt-confirmation sub-event so the
	// meals-delivered increment fires exactly once per request.
	ReceiptConfirmedAt *time.Time `json:"receipt_confirmed_at,omitempty"`
	// ExpiresAt is advisory only; nothing in this engine sweeps expired
	// requests.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsOpen reports whether donors may still fulfill against this request.
func (r *FoodRequest) IsOpen() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusActive
}

// IsTerminal reports whether the request reached a final state.
func (r *FoodRequest) IsTerminal() bool {
	return r.Status == RequestStatusFulfilled || r.Status == RequestStatusCancelled
}
