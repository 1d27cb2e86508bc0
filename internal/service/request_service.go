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

// --- DTOs ---

type CreateRequestDTO struct {
	FoodType     string            `json:"food_type" binding:"required,oneof=cooked packaged raw mixed"`
	Quantity     int               `json:"quantity" binding:"required,gt=0"`
	UrgencyLevel string            `json:"urgency_level" binding:"omitempty,oneof=low medium high critical"`
	Description  string            `json:"description"`
	Location     model.Coordinates `json:"location" binding:"required"`
	Address      string            `json:"address" binding:"required"`
	ExpiresAt    *time.Time        `json:"expires_at"`
}

// DiscoveryFilter narrows the open-request discovery query. When Lat/Lng are
// set, results are ranked nearest first.
type DiscoveryFilter struct {
	Status   string
	FoodType string
	Lat      *float64
	Lng      *float64
}

// RequestWithDistance decorates a request with its distance from the
// caller's coordinate. Distance is the sentinel for requests without a
// usable location so they sort last.
type RequestWithDistance struct {
	model.FoodRequest
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// --- Interface ---

// RequestService owns the FoodRequest state machine: creation gated on NGO
// verification, admin approval, discovery, cancellation, and the terminal
// receipt-confirmation cascade.
type RequestService interface {
	Create(ctx context.Context, ngoUserID string, req CreateRequestDTO) (*model.FoodRequest, error)
	GetByID(ctx context.Context, id string) (*model.FoodRequest, error)
	Discover(ctx context.Context, filter DiscoveryFilter) ([]RequestWithDistance, error)
	ListByNGO(ctx context.Context, ngoUserID string, limit int) ([]model.FoodRequest, error)
	ListAll(ctx context.Context, limit int) ([]model.FoodRequest, error)
	Approve(ctx context.Context, adminID, requestID string) error
	Cancel(ctx context.Context, actorID, actorRole, requestID string) error
	ConfirmReceipt(ctx context.Context, ngoUserID, requestID string) error
}

type requestService struct {
	requestRepo   repository.FoodRequestRepository
	ngoRepo       repository.NGOVerificationRepository
	deliveryRepo  repository.DeliveryRepository
	analyticsRepo repository.AnalyticsRepository
	auditRepo     repository.AuditRepository
	hub           *ws.Hub
}

func NewRequestService(
	requestRepo repository.FoodRequestRepository,
	ngoRepo repository.NGOVerificationRepository,
	deliveryRepo repository.DeliveryRepository,
	analyticsRepo repository.AnalyticsRepository,
	auditRepo repository.AuditRepository,
	hub *ws.Hub,
) RequestService {
	return &requestService{
		requestRepo:   requestRepo,
		ngoRepo:       ngoRepo,
		deliveryRepo:  deliveryRepo,
		analyticsRepo: analyticsRepo,
		auditRepo:     auditRepo,
		hub:           hub,
	}
}

// --- Implementation ---

func (s *requestService) Create(ctx context.Context, ngoUserID string, req CreateRequestDTO) (*model.FoodRequest, error) {
	ngoUUID, err := uuid.Parse(ngoUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", apperror.ErrValidation)
	}

	// Creation is gated on a completed (dual-admin approved) verification.
	verification, err := s.ngoRepo.GetByUserID(ctx, ngoUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: NGO must be verified to create requests", apperror.ErrNotVerified)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load NGO verification: %w", err)
	}
	if verification.Status != model.VerificationApproved {
		return nil, fmt.Errorf("%w: NGO must be verified to create requests", apperror.ErrNotVerified)
	}

	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperror.ErrValidation)
	}
	urgency := req.UrgencyLevel
	if urgency == "" {
		urgency = model.UrgencyMedium
	}

	request := model.FoodRequest{
		NGOID:        ngoUUID,
		NGOName:      verification.OrganizationName,
		FoodType:     req.FoodType,
		Quantity:     req.Quantity,
		UrgencyLevel: urgency,
		Description:  req.Description,
		Location:     req.Location,
		Address:      req.Address,
		Status:       model.RequestStatusPending,
		ExpiresAt:    req.ExpiresAt,
	}

	if err := s.requestRepo.Create(ctx, &request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.auditAction(ctx, ngoUUID, model.ActionCreateRequest, request.ID.String())
	s.hub.Publish("request_created", map[string]interface{}{
		"request_id": request.ID.String(),
		"food_type":  request.FoodType,
		"quantity":   request.Quantity,
		"urgency":    request.UrgencyLevel,
	})

	return &request, nil
}

func (s *requestService) GetByID(ctx context.Context, id string) (*model.FoodRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: request", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return request, nil
}

func (s *requestService) Discover(ctx context.Context, filter DiscoveryFilter) ([]RequestWithDistance, error) {
	repoFilter := repository.RequestFilter{FoodType: filter.FoodType, Limit: 100}
	if filter.Status != "" {
		repoFilter.Statuses = []string{filter.Status}
	}

	requests, err := s.requestRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	out := make([]RequestWithDistance, 0, len(requests))
	for _, r := range requests {
		out = append(out, RequestWithDistance{FoodRequest: r})
	}

	if filter.Lat != nil && filter.Lng != nil {
		rankByDistance(out, *filter.Lat, *filter.Lng)
	}

	return out, nil
}

// rankByDistance sorts nearest-first from (lat, lng) to each request's
// location; entries without a location get the sentinel distance and sort
// last.
func rankByDistance(requests []RequestWithDistance, lat, lng float64) {
	for i := range requests {
		loc := requests[i].Location
		if loc.IsZero() {
			continue
		}
		d := geo.DistanceKm(lat, lng, loc.Lat, loc.Lng)
		requests[i].DistanceKm = &d
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return distanceOrSentinel(requests[i].DistanceKm) < distanceOrSentinel(requests[j].DistanceKm)
	})
}

func distanceOrSentinel(d *float64) float64 {
	if d == nil {
		return geo.SentinelDistance
	}
	return *d
}

func (s *requestService) ListByNGO(ctx context.Context, ngoUserID string, limit int) ([]model.FoodRequest, error) {
	return s.requestRepo.ListByNGO(ctx, ngoUserID, limit)
}

func (s *requestService) ListAll(ctx context.Context, limit int) ([]model.FoodRequest, error) {
	return s.requestRepo.ListAll(ctx, limit)
}

// Approve is single-admin by design: a wrong food-request approval is
// low-stakes and time-sensitive, unlike identity verification which goes
// through the dual-admin gate.
func (s *requestService) Approve(ctx context.Context, adminID, requestID string) error {
	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return fmt.Errorf("%w: invalid admin id", apperror.ErrValidation)
	}

	rows, err := s.requestRepo.Approve(ctx, requestID, adminID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to approve request: %w", err)
	}
	if rows == 0 {
		// Either the id is unknown or the request already left pending.
		if _, getErr := s.GetByID(ctx, requestID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: request is not pending approval", apperror.ErrInvalidState)
	}

	s.auditAction(ctx, adminUUID, model.ActionApproveRequest, requestID)
	s.hub.Publish("request_approved", map[string]interface{}{"request_id": requestID})
	return nil
}

func (s *requestService) Cancel(ctx context.Context, actorID, actorRole, requestID string) error {
	request, err := s.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	// Only the owning NGO or an admin may cancel
	if actorRole != model.RoleAdmin && request.NGOID.String() != actorID {
		return fmt.Errorf("%w: not the request owner", apperror.ErrForbidden)
	}

	rows, err := s.requestRepo.Cancel(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to cancel request: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: request already terminal", apperror.ErrInvalidState)
	}

	if actorUUID, parseErr := uuid.Parse(actorID); parseErr == nil {
		s.auditAction(ctx, actorUUID, model.ActionCancelRequest, requestID)
	}
	return nil
}

// ConfirmReceipt is the requester's terminal sub-event on a request. The
// first call latches the confirmation and increments meals delivered by the
// fulfilled quantity; repeat calls skip the increment but still re-run the
// idempotent delivery cascade.
func (s *requestService) ConfirmReceipt(ctx context.Context, ngoUserID, requestID string) error {
	request, err := s.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.NGOID.String() != ngoUserID {
		return fmt.Errorf("%w: request", apperror.ErrNotFound)
	}

	now := time.Now().UTC()
	rows, err := s.requestRepo.ConfirmReceipt(ctx, requestID, ngoUserID, now)
	if err != nil {
		return fmt.Errorf("failed to confirm receipt: %w", err)
	}

	if rows > 0 {
		// Latch flipped: this is the one increment for this request.
		if incErr := s.analyticsRepo.IncrementDaily(ctx, model.MetricMealsDelivered,
			float64(request.FulfilledQuantity), now); incErr != nil {
			log.Println("WARNING: failed to update analytics:", incErr)
		}
		if ngoUUID, parseErr := uuid.Parse(ngoUserID); parseErr == nil {
			s.auditAction(ctx, ngoUUID, model.ActionConfirmReceipt, requestID)
		}
	}

	// The cascade is repeat-safe regardless of the latch.
	if err := s.deliveryRepo.ConfirmAllForRequest(ctx, requestID, now); err != nil {
		return fmt.Errorf("failed to confirm linked deliveries: %w", err)
	}

	s.hub.Publish("request_fulfilled", map[string]interface{}{"request_id": requestID})
	return nil
}

func (s *requestService) auditAction(ctx context.Context, actorID uuid.UUID, action, requestID string) {
	entry := model.AuditLog{
		UserID:   &actorID,
		Action:   action,
		EntityID: requestID,
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		log.Println("WARNING: failed to write audit log:", err)
	}
}
