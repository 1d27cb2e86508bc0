package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"

	"gorm.io/gorm"
)

// DeliveryRepository defines data access for Delivery aggregates. The
// primary-volunteer slot is claimed by a conditional update (Assign); the
// pickup/delivered transitions are likewise conditional so out-of-order or
// unauthorized calls affect zero rows instead of corrupting state.
type DeliveryRepository interface {
	Create(ctx context.Context, d *model.Delivery) error
	GetByID(ctx context.Context, id string) (*model.Delivery, error)
	ListAvailable(ctx context.Context, limit int) ([]model.Delivery, error)
	ListByVolunteer(ctx context.Context, volunteerID string, limit int) ([]model.Delivery, error)
	ListAll(ctx context.Context, limit int) ([]model.Delivery, error)
	Assign(ctx context.Context, id, volunteerID string) (int64, error)
	MarkPickedUp(ctx context.Context, id, volunteerID string, at time.Time) (int64, error)
	MarkDelivered(ctx context.Context, id, volunteerID, proof string, at time.Time) (int64, error)
	ConfirmAllForRequest(ctx context.Context, requestID string, at time.Time) error
	SetExtraVolunteerRequired(ctx context.Context, id string) (int64, error)
	AppendAdditionalVolunteer(ctx context.Context, id, volunteerID string) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

type deliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (r *deliveryRepository) Create(ctx context.Context, d *model.Delivery) error {
	return GetDB(ctx, r.db).Create(d).Error
}

func (r *deliveryRepository) GetByID(ctx context.Context, id string) (*model.Delivery, error) {
	var d model.Delivery
	if err := GetDB(ctx, r.db).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deliveryRepository) ListAvailable(ctx context.Context, limit int) ([]model.Delivery, error) {
	var out []model.Delivery
	if err := GetDB(ctx, r.db).
		Where("status = ? AND volunteer_id IS NULL", model.DeliveryStatusPending).
		Order("created_at ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *deliveryRepository) ListByVolunteer(ctx context.Context, volunteerID string, limit int) ([]model.Delivery, error) {
	var out []model.Delivery
	if err := GetDB(ctx, r.db).
		Where("volunteer_id = ? OR additional_volunteers @> ?", volunteerID, fmt.Sprintf("%q", volunteerID)).
		Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *deliveryRepository) ListAll(ctx context.Context, limit int) ([]model.Delivery, error) {
	var out []model.Delivery
	if err := GetDB(ctx, r.db).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Assign claims the primary volunteer slot. The condition admits the
// unassigned case and the same volunteer re-accepting (idempotent); a slot
// held by anyone else affects zero rows.
func (r *deliveryRepository) Assign(ctx context.Context, id, volunteerID string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Delivery{}).
		Where("id = ? AND status IN ? AND (volunteer_id IS NULL OR volunteer_id = ?)",
			id, []string{model.DeliveryStatusPending, model.DeliveryStatusAssigned}, volunteerID).
		Updates(map[string]interface{}{
			"volunteer_id": volunteerID,
			"status":       model.DeliveryStatusAssigned,
		})
	return res.RowsAffected, res.Error
}

func (r *deliveryRepository) MarkPickedUp(ctx context.Context, id, volunteerID string, at time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Delivery{}).
		Where("id = ? AND volunteer_id = ? AND status = ?",
			id, volunteerID, model.DeliveryStatusAssigned).
		Updates(map[string]interface{}{
			"status":       model.DeliveryStatusPickedUp,
			"picked_up_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *deliveryRepository) MarkDelivered(ctx context.Context, id, volunteerID, proof string, at time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Delivery{}).
		Where("id = ? AND volunteer_id = ? AND status IN ?",
			id, volunteerID, []string{model.DeliveryStatusPickedUp, model.DeliveryStatusInTransit}).
		Updates(map[string]interface{}{
			"status":         model.DeliveryStatusDelivered,
			"delivered_at":   at,
			"delivery_proof": proof,
		})
	return res.RowsAffected, res.Error
}

// ConfirmAllForRequest is the receipt-confirmation cascade: a bulk,
// repeat-safe transition of every delivery under the request.
func (r *deliveryRepository) ConfirmAllForRequest(ctx context.Context, requestID string, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.Delivery{}).
		Where("request_id = ? AND status <> ?", requestID, model.DeliveryStatusConfirmed).
		Updates(map[string]interface{}{
			"status":       model.DeliveryStatusConfirmed,
			"confirmed_at": at,
		}).Error
}

func (r *deliveryRepository) SetExtraVolunteerRequired(ctx context.Context, id string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Delivery{}).
		Where("id = ? AND status NOT IN ?", id,
			[]string{model.DeliveryStatusDelivered, model.DeliveryStatusConfirmed}).
		Update("extra_volunteer_required", true)
	return res.RowsAffected, res.Error
}

// AppendAdditionalVolunteer pushes onto the credit list atomically via jsonb
// concatenation; duplicates are filtered by the containment guard.
func (r *deliveryRepository) AppendAdditionalVolunteer(ctx context.Context, id, volunteerID string) (int64, error) {
	res := GetDB(ctx, r.db).Exec(`
		UPDATE deliveries
		SET additional_volunteers = additional_volunteers || ?::jsonb,
		    updated_at = NOW()
		WHERE id = ?
		  AND NOT additional_volunteers @> ?::jsonb`,
		fmt.Sprintf("[%q]", volunteerID), id, fmt.Sprintf("%q", volunteerID))
	return res.RowsAffected, res.Error
}

func (r *deliveryRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Delivery{}).
		Where("status NOT IN ?", []string{model.DeliveryStatusDelivered, model.DeliveryStatusConfirmed}).
		Count(&count).Error
	return count, err
}
