package repository

import (
	"context"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"

	"gorm.io/gorm"
)

// FulfillmentRepository defines data access for DonorFulfillment records
type FulfillmentRepository interface {
	Create(ctx context.Context, f *model.DonorFulfillment) error
	GetByID(ctx context.Context, id string) (*model.DonorFulfillment, error)
	ListByDonor(ctx context.Context, donorID string, limit int) ([]model.DonorFulfillment, error)
	ListByRequest(ctx context.Context, requestID string) ([]model.DonorFulfillment, error)
	CountAndSumByDonor(ctx context.Context, donorID string) (count int64, total int64, err error)
}

type fulfillmentRepository struct {
	db *gorm.DB
}

func NewFulfillmentRepository(db *gorm.DB) FulfillmentRepository {
	return &fulfillmentRepository{db: db}
}

func (r *fulfillmentRepository) Create(ctx context.Context, f *model.DonorFulfillment) error {
	return GetDB(ctx, r.db).Create(f).Error
}

func (r *fulfillmentRepository) GetByID(ctx context.Context, id string) (*model.DonorFulfillment, error) {
	var f model.DonorFulfillment
	if err := GetDB(ctx, r.db).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fulfillmentRepository) ListByDonor(ctx context.Context, donorID string, limit int) ([]model.DonorFulfillment, error) {
	var out []model.DonorFulfillment
	if err := GetDB(ctx, r.db).Where("donor_id = ?", donorID).
		Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fulfillmentRepository) ListByRequest(ctx context.Context, requestID string) ([]model.DonorFulfillment, error) {
	var out []model.DonorFulfillment
	if err := GetDB(ctx, r.db).Where("request_id = ?", requestID).
		Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fulfillmentRepository) CountAndSumByDonor(ctx context.Context, donorID string) (int64, int64, error) {
	var agg struct {
		Count int64
		Total int64
	}
	err := GetDB(ctx, r.db).Model(&model.DonorFulfillment{}).
		Select("COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS total").
		Where("donor_id = ?", donorID).
		Scan(&agg).Error
	return agg.Count, agg.Total, err
}
