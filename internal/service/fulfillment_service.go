package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/repository"
	ws "github.com/smartplatefoodredistribution-art/smartplate/internal/websocket"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateFulfillmentDTO struct {
	RequestID        string             `json:"request_id" binding:"required,uuid"`
	Quantity         int                `json:"quantity" binding:"required,gt=0"`
	FoodCondition    string             `json:"food_condition" binding:"required,oneof=fresh cooked packed"`
	AvailabilityTime time.Time          `json:"availability_time" binding:"required"`
	FoodPhoto        string             `json:"food_photo"`
	GeoTag           *model.Coordinates `json:"geo_tag"`
	DeliveryMethod   string             `json:"delivery_method" binding:"required,oneof=self volunteer"`
}

type FulfillmentResult struct {
	Fulfillment *model.DonorFulfillment `json:"fulfillment"`
	Delivery    *model.Delivery         `json:"delivery,omitempty"`
	// RequestSatisfied is true when this commitment brought the request to
	// its full quantity.
	RequestSatisfied bool `json:"request_satisfied"`
}

// FulfillmentService handles donor commitments against open requests. The
// whole commit — fulfillment row, conditional quantity increment, and the
// optional delivery leg — runs in one transaction so a rejected increment
// leaves nothing behind.
type FulfillmentService interface {
	Fulfill(ctx context.Context, donorID, donorName string, req CreateFulfillmentDTO) (*FulfillmentResult, error)
	ListByDonor(ctx context.Context, donorID string, limit int) ([]model.DonorFulfillment, error)
	ListByRequest(ctx context.Context, requestID string) ([]model.DonorFulfillment, error)
}

type fulfillmentService struct {
	fulfillmentRepo repository.FulfillmentRepository
	requestRepo     repository.FoodRequestRepository
	deliveryRepo    repository.DeliveryRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	hub             *ws.Hub
}

func NewFulfillmentService(
	fulfillmentRepo repository.FulfillmentRepository,
	requestRepo repository.FoodRequestRepository,
	deliveryRepo repository.DeliveryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) FulfillmentService {
	return &fulfillmentService{
		fulfillmentRepo: fulfillmentRepo,
		requestRepo:     requestRepo,
		deliveryRepo:    deliveryRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		hub:             hub,
	}
}

func (s *fulfillmentService) Fulfill(ctx context.Context, donorID, donorName string, req CreateFulfillmentDTO) (*FulfillmentResult, error) {
	donorUUID, err := uuid.Parse(donorID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid donor id", apperror.ErrValidation)
	}

	request, err := s.requestRepo.GetByID(ctx, req.RequestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: request", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	// The ledger check is advisory; the conditional update below is the
	// actual gate under concurrency.
	if !request.IsOpen() {
		return nil, fmt.Errorf("%w: request status is %s", apperror.ErrRequestNotOpen, request.Status)
	}
	_, satisfied, err := CommitQuantity(request.Quantity, request.FulfilledQuantity, req.Quantity)
	if err != nil {
		return nil, err
	}

	result := FulfillmentResult{}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		fulfillment := model.DonorFulfillment{
			RequestID:        request.ID,
			DonorID:          donorUUID,
			DonorName:        donorName,
			Quantity:         req.Quantity,
			FoodCondition:    req.FoodCondition,
			AvailabilityTime: req.AvailabilityTime,
			FoodPhoto:        req.FoodPhoto,
			GeoTag:           req.GeoTag,
			DeliveryMethod:   req.DeliveryMethod,
			Status:           model.FulfillmentStatusPending,
		}
		if err := s.fulfillmentRepo.Create(txCtx, &fulfillment); err != nil {
			return fmt.Errorf("failed to create fulfillment: %w", err)
		}

		rows, err := s.requestRepo.ApplyFulfillment(txCtx, req.RequestID, req.Quantity)
		if err != nil {
			return fmt.Errorf("failed to apply fulfillment: %w", err)
		}
		if rows == 0 {
			// Lost a race since the ledger check. Re-read inside the tx to
			// tell a closed request apart from an overshoot.
			current, getErr := s.requestRepo.GetByID(txCtx, req.RequestID)
			if getErr != nil {
				return fmt.Errorf("failed to re-read request: %w", getErr)
			}
			if !current.IsOpen() {
				return fmt.Errorf("%w: request status is %s", apperror.ErrRequestNotOpen, current.Status)
			}
			if _, _, commitErr := CommitQuantity(current.Quantity, current.FulfilledQuantity, req.Quantity); commitErr != nil {
				return commitErr
			}
			return fmt.Errorf("%w: request changed concurrently", apperror.ErrInvalidState)
		}

		result.Fulfillment = &fulfillment
		result.RequestSatisfied = satisfied

		if req.DeliveryMethod == model.DeliveryMethodVolunteer {
			delivery, err := s.createDeliveryLeg(txCtx, request, &fulfillment)
			if err != nil {
				return err
			}
			result.Delivery = delivery
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit := model.AuditLog{
		UserID:   &donorUUID,
		Action:   model.ActionCreateFulfillment,
		EntityID: result.Fulfillment.ID.String(),
	}
	if auditErr := s.auditRepo.Create(ctx, &audit); auditErr != nil {
		log.Println("WARNING: failed to write audit log:", auditErr)
	}

	s.hub.Publish("fulfillment_created", map[string]interface{}{
		"request_id":     req.RequestID,
		"fulfillment_id": result.Fulfillment.ID.String(),
		"quantity":       req.Quantity,
		"satisfied":      result.RequestSatisfied,
	})
	if result.Delivery != nil {
		s.hub.Publish("delivery_available", map[string]interface{}{
			"delivery_id": result.Delivery.ID.String(),
			"request_id":  req.RequestID,
		})
	}

	return &result, nil
}

// createDeliveryLeg opens the volunteer transport leg. Pickup falls back to
// the zero coordinate when the donor gave no geo tag; discovery ranks such
// deliveries last via the sentinel distance.
func (s *fulfillmentService) createDeliveryLeg(ctx context.Context, request *model.FoodRequest, f *model.DonorFulfillment) (*model.Delivery, error) {
	pickup := model.Coordinates{}
	if f.GeoTag != nil {
		pickup = *f.GeoTag
	}

	delivery := model.Delivery{
		FulfillmentID:   f.ID,
		RequestID:       request.ID,
		DonorID:         f.DonorID,
		NGOID:           request.NGOID,
		PickupLocation:  pickup,
		PickupAddress:   "donor location", // donors report pickup detail out of band
		DropoffLocation: request.Location,
		DropoffAddress:  request.Address,
		Status:          model.DeliveryStatusPending,
	}
	if err := s.deliveryRepo.Create(ctx, &delivery); err != nil {
		return nil, fmt.Errorf("failed to create delivery: %w", err)
	}
	return &delivery, nil
}

func (s *fulfillmentService) ListByDonor(ctx context.Context, donorID string, limit int) ([]model.DonorFulfillment, error) {
	return s.fulfillmentRepo.ListByDonor(ctx, donorID, limit)
}

func (s *fulfillmentService) ListByRequest(ctx context.Context, requestID string) ([]model.DonorFulfillment, error) {
	return s.fulfillmentRepo.ListByRequest(ctx, requestID)
}
