package model

import (
	"time"

	"github.com/google/uuid"
)

// Metric type constants
const (
	MetricMealsDelivered = "meals_delivered"
	MetricPeopleFed      = "people_fed"
	MetricNGOsServed     = "ngos_served"
)

// Metric period constants. Only daily buckets are written by the engine;
// wider periods are derived by summing at read time.
const (
	PeriodDaily = "daily"
)

// AnalyticsMetric is one additive counter bucket. One row exists per
// (metric_type, period, date); updates are atomic increments against it.
type AnalyticsMetric struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MetricType string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_metric_bucket" json:"metric_type"`
	Value      float64   `gorm:"not null;default:0" json:"value"`
	Period     string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_metric_bucket" json:"period"`
	Date       time.Time `gorm:"not null;uniqueIndex:idx_metric_bucket" json:"date"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
