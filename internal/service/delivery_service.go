package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/repository"
	ws "github.com/smartplatefoodredistribution-art/smartplate/internal/websocket"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/geo"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryWithDistance decorates a delivery with the pickup distance from
// the volunteer's coordinate.
type DeliveryWithDistance struct {
	model.Delivery
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type CompleteDeliveryDTO struct {
	DeliveryProof string `json:"delivery_proof"`
	Notes         string `json:"notes"`
}

// DeliveryService drives the volunteer transport state machine: slot
// claiming, pickup, delivered, and the admin escalation path for a second
// volunteer.
type DeliveryService interface {
	Available(ctx context.Context, volunteerID string, lat, lng *float64, limit int) ([]DeliveryWithDistance, error)
	Accept(ctx context.Context, volunteerID, deliveryID string) (*model.Delivery, error)
	Pickup(ctx context.Context, volunteerID, deliveryID string) error
	Complete(ctx context.Context, volunteerID, deliveryID string, req CompleteDeliveryDTO) error
	FlagExtraVolunteer(ctx context.Context, adminID, deliveryID string) error
	CreditVolunteer(ctx context.Context, adminID, deliveryID, volunteerID string) error
	ListMine(ctx context.Context, volunteerID string, limit int) ([]model.Delivery, error)
	ListAll(ctx context.Context, limit int) ([]model.Delivery, error)
}

type deliveryService struct {
	deliveryRepo  repository.DeliveryRepository
	volunteerRepo repository.VolunteerRepository
	auditRepo     repository.AuditRepository
	hub           *ws.Hub
}

func NewDeliveryService(
	deliveryRepo repository.DeliveryRepository,
	volunteerRepo repository.VolunteerRepository,
	auditRepo repository.AuditRepository,
	hub *ws.Hub,
) DeliveryService {
	return &deliveryService{
		deliveryRepo:  deliveryRepo,
		volunteerRepo: volunteerRepo,
		auditRepo:     auditRepo,
		hub:           hub,
	}
}

// requireVerifiedVolunteer gates every volunteer-facing operation on an
// approved verification record.
func (s *deliveryService) requireVerifiedVolunteer(ctx context.Context, volunteerID string) error {
	v, err := s.volunteerRepo.GetByUserID(ctx, volunteerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: volunteer must be verified", apperror.ErrNotVerified)
	}
	if err != nil {
		return fmt.Errorf("failed to load volunteer verification: %w", err)
	}
	if v.Status != model.VerificationApproved {
		return fmt.Errorf("%w: volunteer must be verified", apperror.ErrNotVerified)
	}
	return nil
}

func (s *deliveryService) Available(ctx context.Context, volunteerID string, lat, lng *float64, limit int) ([]DeliveryWithDistance, error) {
	if err := s.requireVerifiedVolunteer(ctx, volunteerID); err != nil {
		return nil, err
	}

	deliveries, err := s.deliveryRepo.ListAvailable(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list available deliveries: %w", err)
	}

	out := make([]DeliveryWithDistance, 0, len(deliveries))
	for _, d := range deliveries {
		entry := DeliveryWithDistance{Delivery: d}
		if lat != nil && lng != nil && !d.PickupLocation.IsZero() {
			dist := geo.DistanceKm(*lat, *lng, d.PickupLocation.Lat, d.PickupLocation.Lng)
			entry.DistanceKm = &dist
		}
		out = append(out, entry)
	}

	if lat != nil && lng != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return distanceOrSentinel(out[i].DistanceKm) < distanceOrSentinel(out[j].DistanceKm)
		})
	}
	return out, nil
}

// Accept claims the primary volunteer slot. Re-accepting a delivery you
// already hold is a no-op success; a slot held by someone else is rejected.
func (s *deliveryService) Accept(ctx context.Context, volunteerID, deliveryID string) (*model.Delivery, error) {
	if err := s.requireVerifiedVolunteer(ctx, volunteerID); err != nil {
		return nil, err
	}

	rows, err := s.deliveryRepo.Assign(ctx, deliveryID, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign delivery: %w", err)
	}
	if rows == 0 {
		delivery, getErr := s.getDelivery(ctx, deliveryID)
		if getErr != nil {
			return nil, getErr
		}
		if delivery.VolunteerID != nil && delivery.VolunteerID.String() != volunteerID {
			return nil, fmt.Errorf("%w: delivery already has a volunteer", apperror.ErrAlreadyAssigned)
		}
		return nil, fmt.Errorf("%w: delivery status is %s", apperror.ErrInvalidState, delivery.Status)
	}

	delivery, err := s.getDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	s.hub.Publish("delivery_assigned", map[string]interface{}{
		"delivery_id":  deliveryID,
		"volunteer_id": volunteerID,
	})
	return delivery, nil
}

func (s *deliveryService) Pickup(ctx context.Context, volunteerID, deliveryID string) error {
	rows, err := s.deliveryRepo.MarkPickedUp(ctx, deliveryID, volunteerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark picked up: %w", err)
	}
	if rows == 0 {
		return s.explainTransitionFailure(ctx, volunteerID, deliveryID, model.DeliveryStatusAssigned)
	}

	s.hub.Publish("delivery_picked_up", map[string]interface{}{"delivery_id": deliveryID})
	return nil
}

// Complete moves the delivery to delivered and credits the primary
// volunteer. The conditional update is the idempotence unit: the counter
// only increments when this call won the transition.
func (s *deliveryService) Complete(ctx context.Context, volunteerID, deliveryID string, req CompleteDeliveryDTO) error {
	rows, err := s.deliveryRepo.MarkDelivered(ctx, deliveryID, volunteerID, req.DeliveryProof, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark delivered: %w", err)
	}
	if rows == 0 {
		return s.explainTransitionFailure(ctx, volunteerID, deliveryID, model.DeliveryStatusPickedUp)
	}

	if err := s.volunteerRepo.IncrementDeliveryCount(ctx, volunteerID); err != nil {
		log.Println("WARNING: failed to credit volunteer delivery count:", err)
	}

	s.hub.Publish("delivery_completed", map[string]interface{}{
		"delivery_id":  deliveryID,
		"volunteer_id": volunteerID,
	})
	return nil
}

// explainTransitionFailure re-reads the delivery after a zero-row
// conditional update to produce the right domain error.
func (s *deliveryService) explainTransitionFailure(ctx context.Context, volunteerID, deliveryID, wantStatus string) error {
	delivery, err := s.getDelivery(ctx, deliveryID)
	if err != nil {
		return err
	}
	if delivery.VolunteerID == nil || delivery.VolunteerID.String() != volunteerID {
		return fmt.Errorf("%w: delivery is not assigned to you", apperror.ErrNotAssigned)
	}
	return fmt.Errorf("%w: delivery status is %s, expected %s",
		apperror.ErrInvalidState, delivery.Status, wantStatus)
}

func (s *deliveryService) FlagExtraVolunteer(ctx context.Context, adminID, deliveryID string) error {
	rows, err := s.deliveryRepo.SetExtraVolunteerRequired(ctx, deliveryID)
	if err != nil {
		return fmt.Errorf("failed to flag delivery: %w", err)
	}
	if rows == 0 {
		delivery, getErr := s.getDelivery(ctx, deliveryID)
		if getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: delivery status is %s", apperror.ErrInvalidState, delivery.Status)
	}

	s.audit(ctx, adminID, model.ActionFlagExtraVolunteer, deliveryID)
	s.hub.Publish("extra_volunteer_needed", map[string]interface{}{"delivery_id": deliveryID})
	return nil
}

// CreditVolunteer adds a helper to the additional-volunteers credit list.
// They never take over the state machine; repeat credits are absorbed by the
// containment guard in the append.
func (s *deliveryService) CreditVolunteer(ctx context.Context, adminID, deliveryID, volunteerID string) error {
	if err := s.requireVerifiedVolunteer(ctx, volunteerID); err != nil {
		return err
	}

	delivery, err := s.getDelivery(ctx, deliveryID)
	if err != nil {
		return err
	}
	if delivery.VolunteerID != nil && delivery.VolunteerID.String() == volunteerID {
		return fmt.Errorf("%w: volunteer already holds the primary slot", apperror.ErrValidation)
	}

	rows, err := s.deliveryRepo.AppendAdditionalVolunteer(ctx, deliveryID, volunteerID)
	if err != nil {
		return fmt.Errorf("failed to credit volunteer: %w", err)
	}
	if rows > 0 {
		s.audit(ctx, adminID, model.ActionCreditVolunteer, deliveryID)
	}
	return nil
}

func (s *deliveryService) ListMine(ctx context.Context, volunteerID string, limit int) ([]model.Delivery, error) {
	return s.deliveryRepo.ListByVolunteer(ctx, volunteerID, limit)
}

func (s *deliveryService) ListAll(ctx context.Context, limit int) ([]model.Delivery, error) {
	return s.deliveryRepo.ListAll(ctx, limit)
}

func (s *deliveryService) getDelivery(ctx context.Context, id string) (*model.Delivery, error) {
	delivery, err := s.deliveryRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: delivery", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery: %w", err)
	}
	return delivery, nil
}

func (s *deliveryService) audit(ctx context.Context, actorID, action, entityID string) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return
	}
	entry := model.AuditLog{UserID: &actorUUID, Action: action, EntityID: entityID}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		log.Println("WARNING: failed to write audit log:", err)
	}
}
