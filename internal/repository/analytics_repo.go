package repository

import (
	"context"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsRepository defines data access for metric buckets
type AnalyticsRepository interface {
	// IncrementDaily adds amount to the (metricType, daily, day) bucket,
	// creating it if absent. Purely additive.
	IncrementDaily(ctx context.Context, metricType string, amount float64, day time.Time) error
	SumMetric(ctx context.Context, metricType string) (float64, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) IncrementDaily(ctx context.Context, metricType string, amount float64, day time.Time) error {
	bucket := model.AnalyticsMetric{
		MetricType: metricType,
		Value:      amount,
		Period:     model.PeriodDaily,
		Date:       day.UTC().Truncate(24 * time.Hour),
	}
	// Upsert against the (metric_type, period, date) unique index; conflicts
	// fold into an atomic increment.
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "metric_type"}, {Name: "period"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      gorm.Expr("analytics_metrics.value + ?", amount),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&bucket).Error
}

func (r *analyticsRepository) SumMetric(ctx context.Context, metricType string) (float64, error) {
	var total float64
	err := GetDB(ctx, r.db).Model(&model.AnalyticsMetric{}).
		Select("COALESCE(SUM(value), 0)").
		Where("metric_type = ?", metricType).
		Scan(&total).Error
	return total, err
}
