package service

import (
	"context"
	"testing"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/websocket"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newFulfillmentFixture() (*fulfillmentService, *MockFulfillmentRepository, *MockFoodRequestRepository, *MockDeliveryRepository) {
	fulfillmentRepo := new(MockFulfillmentRepository)
	requestRepo := new(MockFoodRequestRepository)
	deliveryRepo := new(MockDeliveryRepository)
	auditRepo := new(MockAuditRepository)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil).Maybe()

	svc := &fulfillmentService{
		fulfillmentRepo: fulfillmentRepo,
		requestRepo:     requestRepo,
		deliveryRepo:    deliveryRepo,
		auditRepo:       auditRepo,
		txManager:       fakeTxManager{},
		hub:             websocket.NewHub(),
	}
	return svc, fulfillmentRepo, requestRepo, deliveryRepo
}

func openRequest(quantity, fulfilled int) *model.FoodRequest {
	return &model.FoodRequest{
		ID:                uuid.New(),
		NGOID:             uuid.New(),
		NGOName:           "Helping Hands",
		FoodType:          model.FoodTypeCooked,
		Quantity:          quantity,
		FulfilledQuantity: fulfilled,
		Status:            model.RequestStatusActive,
		Address:           "12 Market Road",
	}
}

func fulfillmentPayload(requestID uuid.UUID, quantity int, method string) CreateFulfillmentDTO {
	return CreateFulfillmentDTO{
		RequestID:        requestID.String(),
		Quantity:         quantity,
		FoodCondition:    model.FoodConditionCooked,
		AvailabilityTime: time.Now().Add(time.Hour),
		DeliveryMethod:   method,
	}
}

func TestFulfillSelfDeliveryCommitsQuantity(t *testing.T) {
	svc, fulfillmentRepo, requestRepo, deliveryRepo := newFulfillmentFixture()

	request := openRequest(100, 0)
	donorID := uuid.New()

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)
	fulfillmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.DonorFulfillment")).Return(nil)
	requestRepo.On("ApplyFulfillment", mock.Anything, request.ID.String(), 60).Return(int64(1), nil)

	result, err := svc.Fulfill(context.Background(), donorID.String(), "Green Kitchen",
		fulfillmentPayload(request.ID, 60, model.DeliveryMethodSelf))
	require.NoError(t, err)
	require.False(t, result.RequestSatisfied)
	require.Equal(t, 60, result.Fulfillment.Quantity)
	require.Nil(t, result.Delivery)

	// Self delivery never opens a transport leg
	deliveryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFulfillSecondCommitSatisfiesRequest(t *testing.T) {
	svc, fulfillmentRepo, requestRepo, _ := newFulfillmentFixture()

	request := openRequest(100, 60)
	donorID := uuid.New()

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)
	fulfillmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.DonorFulfillment")).Return(nil)
	requestRepo.On("ApplyFulfillment", mock.Anything, request.ID.String(), 40).Return(int64(1), nil)

	result, err := svc.Fulfill(context.Background(), donorID.String(), "Green Kitchen",
		fulfillmentPayload(request.ID, 40, model.DeliveryMethodSelf))
	require.NoError(t, err)
	require.True(t, result.RequestSatisfied)
}

func TestFulfillRejectsOverCommit(t *testing.T) {
	svc, fulfillmentRepo, requestRepo, _ := newFulfillmentFixture()

	request := openRequest(100, 60)
	donorID := uuid.New()

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)

	_, err := svc.Fulfill(context.Background(), donorID.String(), "Green Kitchen",
		fulfillmentPayload(request.ID, 41, model.DeliveryMethodSelf))
	require.ErrorIs(t, err, apperror.ErrOverCommit)

	// Rejected before anything was written
	fulfillmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFulfillAuditsCreation(t *testing.T) {
	fulfillmentRepo := new(MockFulfillmentRepository)
	requestRepo := new(MockFoodRequestRepository)
	auditRepo := new(MockAuditRepository)

	svc := &fulfillmentService{
		fulfillmentRepo: fulfillmentRepo,
		requestRepo:     requestRepo,
		auditRepo:       auditRepo,
		txManager:       fakeTxManager{},
		hub:             websocket.NewHub(),
	}

	request := openRequest(100, 0)
	donorID := uuid.New()

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)
	fulfillmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.DonorFulfillment")).Return(nil)
	requestRepo.On("ApplyFulfillment", mock.Anything, request.ID.String(), 25).Return(int64(1), nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
		return e.Action == model.ActionCreateFulfillment && e.UserID != nil && *e.UserID == donorID
	})).Return(nil)

	_, err := svc.Fulfill(context.Background(), donorID.String(), "Green Kitchen",
		fulfillmentPayload(request.ID, 25, model.DeliveryMethodSelf))
	require.NoError(t, err)
	auditRepo.AssertExpectations(t)
}

func TestFulfillRejectsNonPositiveQuantity(t *testing.T) {
	svc, fulfillmentRepo, requestRepo, _ := newFulfillmentFixture()

	request := openRequest(100, 0)
	donorID := uuid.New()

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)

	_, err := svc.Fulfill(context.Background(), donorID.String(), "Green Kitchen",
		fulfillmentPayload(request.ID, 0, model.DeliveryMethodSelf))
	require.ErrorIs(t, err, apperror.ErrValidation)

	fulfillmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFulfillRejectsClosedRequest(t *testing.T) {
	svc, _, requestRepo, _ := newFulfillmentFixture()

	request := openRequest(100, 100)
	request.Status = model.RequestStatusFulfilled
	donorID := uuid.New()

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)

	_, err := svc.Fulfill(context.Background(), donorID.String(), "Green Kitchen",
		fulfillmentPayload(request.ID, 10, model.DeliveryMethodSelf))
	require.ErrorIs(t, err, apperror.ErrRequestNotOpen)
}

func TestFulfillUnknownRequest(t *testing.T) {
	svc, _, requestRepo, _ := newFulfillmentFixture()

	id := uuid.New()
	requestRepo.On("GetByID", mock.Anything, id.String()).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Fulfill(context.Background(), uuid.NewString(), "Green Kitchen",
		fulfillmentPayload(id, 10, model.DeliveryMethodSelf))
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestFulfillLostRaceDisambiguatesCause(t *testing.T) {
	svc, fulfillmentRepo, requestRepo, _ := newFulfillmentFixture()

	request := openRequest(100, 50)
	donorID := uuid.New()

	// Pre-check passes on the stale read, but the conditional increment
	// loses: by then only 20 servings remain.
	current := openRequest(100, 80)
	current.ID = request.ID

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil).Once()
	fulfillmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.DonorFulfillment")).Return(nil)
	requestRepo.On("ApplyFulfillment", mock.Anything, request.ID.String(), 40).Return(int64(0), nil)
	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(current, nil).Once()

	_, err := svc.Fulfill(context.Background(), donorID.String(), "Green Kitchen",
		fulfillmentPayload(request.ID, 40, model.DeliveryMethodSelf))
	require.ErrorIs(t, err, apperror.ErrOverCommit)
}

func TestFulfillVolunteerMethodOpensDeliveryLeg(t *testing.T) {
	svc, fulfillmentRepo, requestRepo, deliveryRepo := newFulfillmentFixture()

	request := openRequest(100, 0)
	request.Location = model.Coordinates{Lat: 28.61, Lng: 77.21}
	donorID := uuid.New()

	payload := fulfillmentPayload(request.ID, 30, model.DeliveryMethodVolunteer)
	payload.GeoTag = &model.Coordinates{Lat: 28.70, Lng: 77.10}

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)
	fulfillmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.DonorFulfillment")).Return(nil)
	requestRepo.On("ApplyFulfillment", mock.Anything, request.ID.String(), 30).Return(int64(1), nil)
	deliveryRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Delivery")).Return(nil).
		Run(func(args mock.Arguments) {
			delivery := args.Get(1).(*model.Delivery)
			require.Equal(t, request.ID, delivery.RequestID)
			require.Equal(t, request.NGOID, delivery.NGOID)
			require.Equal(t, model.DeliveryStatusPending, delivery.Status)
			require.Equal(t, 28.70, delivery.PickupLocation.Lat)
			require.Equal(t, request.Location, delivery.DropoffLocation)
			require.Equal(t, request.Address, delivery.DropoffAddress)
			require.Nil(t, delivery.VolunteerID)
		})

	result, err := svc.Fulfill(context.Background(), donorID.String(), "Green Kitchen", payload)
	require.NoError(t, err)
	require.NotNil(t, result.Delivery)

	deliveryRepo.AssertExpectations(t)
}
