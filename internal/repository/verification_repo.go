package repository

import (
	"context"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"

	"gorm.io/gorm"
)

// ReviewUpdate carries the reviewer attribution written onto a verification
// record when its status changes.
type ReviewUpdate struct {
	Status          string
	RejectionReason string
	ReviewedBy      string
	ReviewedAt      time.Time
}

// NGOVerificationRepository defines data access for NGO verification records
type NGOVerificationRepository interface {
	Create(ctx context.Context, v *model.NGOVerification) error
	GetByID(ctx context.Context, id string) (*model.NGOVerification, error)
	GetByUserID(ctx context.Context, userID string) (*model.NGOVerification, error)
	ListPending(ctx context.Context, limit int) ([]model.NGOVerification, error)
	ListApproved(ctx context.Context, limit int) ([]model.NGOVerification, error)
	UpdateReview(ctx context.Context, id string, review ReviewUpdate) error
	CountPending(ctx context.Context) (int64, error)
}

type ngoVerificationRepository struct {
	db *gorm.DB
}

func NewNGOVerificationRepository(db *gorm.DB) NGOVerificationRepository {
	return &ngoVerificationRepository{db: db}
}

func (r *ngoVerificationRepository) Create(ctx context.Context, v *model.NGOVerification) error {
	return GetDB(ctx, r.db).Create(v).Error
}

func (r *ngoVerificationRepository) GetByID(ctx context.Context, id string) (*model.NGOVerification, error) {
	var v model.NGOVerification
	if err := GetDB(ctx, r.db).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ngoVerificationRepository) GetByUserID(ctx context.Context, userID string) (*model.NGOVerification, error) {
	var v model.NGOVerification
	if err := GetDB(ctx, r.db).First(&v, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ngoVerificationRepository) ListPending(ctx context.Context, limit int) ([]model.NGOVerification, error) {
	var out []model.NGOVerification
	if err := GetDB(ctx, r.db).Where("status = ?", model.VerificationPending).
		Order("created_at ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ngoVerificationRepository) ListApproved(ctx context.Context, limit int) ([]model.NGOVerification, error) {
	var out []model.NGOVerification
	if err := GetDB(ctx, r.db).Where("status = ?", model.VerificationApproved).
		Order("organization_name ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ngoVerificationRepository) UpdateReview(ctx context.Context, id string, review ReviewUpdate) error {
	return GetDB(ctx, r.db).Model(&model.NGOVerification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           review.Status,
			"rejection_reason": review.RejectionReason,
			"reviewed_by":      review.ReviewedBy,
			"reviewed_at":      review.ReviewedAt,
		}).Error
}

func (r *ngoVerificationRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.NGOVerification{}).
		Where("status = ?", model.VerificationPending).Count(&count).Error
	return count, err
}

// VolunteerRepository defines data access for volunteer verification records
type VolunteerRepository interface {
	Create(ctx context.Context, v *model.VolunteerVerification) error
	GetByUserID(ctx context.Context, userID string) (*model.VolunteerVerification, error)
	ListPending(ctx context.Context, limit int) ([]model.VolunteerVerification, error)
	UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error
	UpdateReview(ctx context.Context, userID string, review ReviewUpdate) error
	IncrementDeliveryCount(ctx context.Context, userID string) error
	CountPending(ctx context.Context) (int64, error)
}

type volunteerRepository struct {
	db *gorm.DB
}

func NewVolunteerRepository(db *gorm.DB) VolunteerRepository {
	return &volunteerRepository{db: db}
}

func (r *volunteerRepository) Create(ctx context.Context, v *model.VolunteerVerification) error {
	return GetDB(ctx, r.db).Create(v).Error
}

func (r *volunteerRepository) GetByUserID(ctx context.Context, userID string) (*model.VolunteerVerification, error) {
	var v model.VolunteerVerification
	if err := GetDB(ctx, r.db).First(&v, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *volunteerRepository) ListPending(ctx context.Context, limit int) ([]model.VolunteerVerification, error) {
	var out []model.VolunteerVerification
	if err := GetDB(ctx, r.db).Where("status = ?", model.VerificationPending).
		Order("created_at ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *volunteerRepository) UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(&model.VolunteerVerification{}).
		Where("user_id = ?", userID).
		Updates(fields).Error
}

func (r *volunteerRepository) UpdateReview(ctx context.Context, userID string, review ReviewUpdate) error {
	return GetDB(ctx, r.db).Model(&model.VolunteerVerification{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":           review.Status,
			"rejection_reason": review.RejectionReason,
			"reviewed_by":      review.ReviewedBy,
			"reviewed_at":      review.ReviewedAt,
		}).Error
}

// IncrementDeliveryCount is an additive atomic increment. It is only called
// after the delivered-transition conditional update succeeded, which makes
// that transition the unit of idempotence for this counter.
func (r *volunteerRepository) IncrementDeliveryCount(ctx context.Context, userID string) error {
	return GetDB(ctx, r.db).Model(&model.VolunteerVerification{}).
		Where("user_id = ?", userID).
		Update("delivery_count", gorm.Expr("delivery_count + 1")).Error
}

func (r *volunteerRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.VolunteerVerification{}).
		Where("status = ?", model.VerificationPending).Count(&count).Error
	return count, err
}
