package repository

import (
	"context"
	"errors"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"

	"gorm.io/gorm"
)

// ApprovalRepository defines data access for the dual-admin consensus
// ledger. CompleteSecondVote is conditional: it only lands while the record
// is still pending and the second voter differs from admin A, so racing
// admins cannot double-complete a record or self-complete one.
type ApprovalRepository interface {
	Create(ctx context.Context, a *model.AdminApproval) error
	GetByID(ctx context.Context, id string) (*model.AdminApproval, error)
	// FindOpen returns the single pending record for (targetID, targetType),
	// or nil when none exists.
	FindOpen(ctx context.Context, targetID, targetType string) (*model.AdminApproval, error)
	CompleteSecondVote(ctx context.Context, id, adminBID string, at time.Time) (int64, error)
	ListByTarget(ctx context.Context, targetID, targetType string) ([]model.AdminApproval, error)
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, a *model.AdminApproval) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *approvalRepository) GetByID(ctx context.Context, id string) (*model.AdminApproval, error) {
	var a model.AdminApproval
	if err := GetDB(ctx, r.db).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *approvalRepository) FindOpen(ctx context.Context, targetID, targetType string) (*model.AdminApproval, error) {
	var a model.AdminApproval
	err := GetDB(ctx, r.db).
		Where("target_id = ? AND target_type = ? AND final_status = ?",
			targetID, targetType, model.ApprovalPending).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *approvalRepository) CompleteSecondVote(ctx context.Context, id, adminBID string, at time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.AdminApproval{}).
		Where("id = ? AND final_status = ? AND admin_a_id <> ?",
			id, model.ApprovalPending, adminBID).
		Updates(map[string]interface{}{
			"admin_b_id":        adminBID,
			"admin_b_approved":  true,
			"admin_b_timestamp": at,
			"final_status":      model.ApprovalApproved,
		})
	return res.RowsAffected, res.Error
}

func (r *approvalRepository) ListByTarget(ctx context.Context, targetID, targetType string) ([]model.AdminApproval, error) {
	var out []model.AdminApproval
	if err := GetDB(ctx, r.db).
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
