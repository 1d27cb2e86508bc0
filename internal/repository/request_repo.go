package repository

import (
	"context"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"

	"gorm.io/gorm"
)

// RequestFilter narrows request discovery queries.
type RequestFilter struct {
	Statuses []string // empty means the open set {approved, active}
	FoodType string
	Limit    int
}

// FoodRequestRepository defines data access for FoodRequest aggregates. All
// state transitions are conditional single-row updates; callers inspect rows
// affected to detect lost races.
type FoodRequestRepository interface {
	Create(ctx context.Context, req *model.FoodRequest) error
	GetByID(ctx context.Context, id string) (*model.FoodRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]model.FoodRequest, error)
	ListByNGO(ctx context.Context, ngoID string, limit int) ([]model.FoodRequest, error)
	ListAll(ctx context.Context, limit int) ([]model.FoodRequest, error)
	// ApplyFulfillment atomically adds amount to the fulfilled quantity and
	// moves the status to active or fulfilled, but only while the request is
	// open and the cap holds. Returns rows affected (0 = rejected).
	ApplyFulfillment(ctx context.Context, id string, amount int) (int64, error)
	Approve(ctx context.Context, id, adminID string, at time.Time) (int64, error)
	Cancel(ctx context.Context, id string) (int64, error)
	// ConfirmReceipt latches the receipt confirmation; only the first call
	// for a request affects a row.
	ConfirmReceipt(ctx context.Context, id, ngoID string, at time.Time) (int64, error)
	CountByStatuses(ctx context.Context, statuses []string) (int64, error)
	Count(ctx context.Context) (int64, error)
	SumQuantitiesByNGO(ctx context.Context, ngoID string) (requested int64, fulfilled int64, err error)
}

type foodRequestRepository struct {
	db *gorm.DB
}

func NewFoodRequestRepository(db *gorm.DB) FoodRequestRepository {
	return &foodRequestRepository{db: db}
}

func (r *foodRequestRepository) Create(ctx context.Context, req *model.FoodRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *foodRequestRepository) GetByID(ctx context.Context, id string) (*model.FoodRequest, error) {
	var req model.FoodRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *foodRequestRepository) List(ctx context.Context, filter RequestFilter) ([]model.FoodRequest, error) {
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = model.RequestOpenStatuses
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := GetDB(ctx, r.db).Where("status IN ?", statuses)
	if filter.FoodType != "" {
		query = query.Where("food_type = ?", filter.FoodType)
	}

	var requests []model.FoodRequest
	if err := query.Order("created_at DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *foodRequestRepository) ListByNGO(ctx context.Context, ngoID string, limit int) ([]model.FoodRequest, error) {
	var requests []model.FoodRequest
	if err := GetDB(ctx, r.db).Where("ngo_id = ?", ngoID).
		Order("created_at DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *foodRequestRepository) ListAll(ctx context.Context, limit int) ([]model.FoodRequest, error) {
	var requests []model.FoodRequest
	if err := GetDB(ctx, r.db).Order("created_at DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *foodRequestRepository) ApplyFulfillment(ctx context.Context, id string, amount int) (int64, error) {
	// Conditional increment: the WHERE clause is the hard cap. Two donors
	// racing past the service-level check cannot jointly overshoot — the
	// second update simply affects zero rows.
	res := GetDB(ctx, r.db).Exec(`
		UPDATE food_requests
		SET fulfilled_quantity = fulfilled_quantity + ?,
		    status = CASE WHEN fulfilled_quantity + ? >= quantity THEN ? ELSE ? END,
		    updated_at = NOW()
		WHERE id = ?
		  AND status IN ?
		  AND fulfilled_quantity + ? <= quantity`,
		amount, amount, model.RequestStatusFulfilled, model.RequestStatusActive,
		id, model.RequestOpenStatuses, amount)
	return res.RowsAffected, res.Error
}

func (r *foodRequestRepository) Approve(ctx context.Context, id, adminID string, at time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.FoodRequest{}).
		Where("id = ? AND status = ?", id, model.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":      model.RequestStatusApproved,
			"approved_by": adminID,
			"approved_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *foodRequestRepository) Cancel(ctx context.Context, id string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.FoodRequest{}).
		Where("id = ? AND status NOT IN ?", id,
			[]string{model.RequestStatusFulfilled, model.RequestStatusCancelled}).
		Update("status", model.RequestStatusCancelled)
	return res.RowsAffected, res.Error
}

func (r *foodRequestRepository) ConfirmReceipt(ctx context.Context, id, ngoID string, at time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.FoodRequest{}).
		Where("id = ? AND ngo_id = ? AND receipt_confirmed_at IS NULL", id, ngoID).
		Updates(map[string]interface{}{
			"status":               model.RequestStatusFulfilled,
			"receipt_confirmed_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *foodRequestRepository) CountByStatuses(ctx context.Context, statuses []string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.FoodRequest{}).
		Where("status IN ?", statuses).Count(&count).Error
	return count, err
}

func (r *foodRequestRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.FoodRequest{}).Count(&count).Error
	return count, err
}

func (r *foodRequestRepository) SumQuantitiesByNGO(ctx context.Context, ngoID string) (int64, int64, error) {
	var sums struct {
		Requested int64
		Fulfilled int64
	}
	err := GetDB(ctx, r.db).Model(&model.FoodRequest{}).
		Select("COALESCE(SUM(quantity), 0) AS requested, COALESCE(SUM(fulfilled_quantity), 0) AS fulfilled").
		Where("ngo_id = ?", ngoID).
		Scan(&sums).Error
	return sums.Requested, sums.Fulfilled, err
}
