package service

import (
	"context"
	"testing"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/websocket"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/geo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRequestFixture() (*requestService, *MockFoodRequestRepository, *MockNGOVerificationRepository, *MockDeliveryRepository, *MockAnalyticsRepository, *MockAuditRepository) {
	requestRepo := new(MockFoodRequestRepository)
	ngoRepo := new(MockNGOVerificationRepository)
	deliveryRepo := new(MockDeliveryRepository)
	analyticsRepo := new(MockAnalyticsRepository)
	auditRepo := new(MockAuditRepository)

	svc := &requestService{
		requestRepo:   requestRepo,
		ngoRepo:       ngoRepo,
		deliveryRepo:  deliveryRepo,
		analyticsRepo: analyticsRepo,
		auditRepo:     auditRepo,
		hub:           websocket.NewHub(),
	}
	return svc, requestRepo, ngoRepo, deliveryRepo, analyticsRepo, auditRepo
}

func createPayload() CreateRequestDTO {
	return CreateRequestDTO{
		FoodType: model.FoodTypeCooked,
		Quantity: 100,
		Location: model.Coordinates{Lat: 28.61, Lng: 77.21},
		Address:  "12 Market Road",
	}
}

func TestCreateRequiresApprovedVerification(t *testing.T) {
	svc, requestRepo, ngoRepo, _, _, _ := newRequestFixture()

	ngoID := uuid.New()
	pending := &model.NGOVerification{UserID: ngoID, Status: model.VerificationPending}
	ngoRepo.On("GetByUserID", mock.Anything, ngoID.String()).Return(pending, nil)

	_, err := svc.Create(context.Background(), ngoID.String(), createPayload())
	require.ErrorIs(t, err, apperror.ErrNotVerified)

	requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateWithoutVerificationRecord(t *testing.T) {
	svc, _, ngoRepo, _, _, _ := newRequestFixture()

	ngoID := uuid.New()
	ngoRepo.On("GetByUserID", mock.Anything, ngoID.String()).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), ngoID.String(), createPayload())
	require.ErrorIs(t, err, apperror.ErrNotVerified)
}

func TestCreateStampsDefaultsAndOrganization(t *testing.T) {
	svc, requestRepo, ngoRepo, _, _, auditRepo := newRequestFixture()

	ngoID := uuid.New()
	approved := &model.NGOVerification{
		UserID:           ngoID,
		OrganizationName: "Helping Hands",
		Status:           model.VerificationApproved,
	}
	ngoRepo.On("GetByUserID", mock.Anything, ngoID.String()).Return(approved, nil)
	requestRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.FoodRequest")).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
		return e.Action == model.ActionCreateRequest && e.UserID != nil && *e.UserID == ngoID
	})).Return(nil)

	request, err := svc.Create(context.Background(), ngoID.String(), createPayload())
	require.NoError(t, err)
	require.Equal(t, model.RequestStatusPending, request.Status)
	require.Equal(t, model.UrgencyMedium, request.UrgencyLevel)
	require.Equal(t, "Helping Hands", request.NGOName)
	require.Equal(t, 0, request.FulfilledQuantity)
	auditRepo.AssertExpectations(t)
}

func TestDiscoverRanksByDistanceWithSentinelLast(t *testing.T) {
	svc, requestRepo, _, _, _, _ := newRequestFixture()

	far := model.FoodRequest{ID: uuid.New(), Location: model.Coordinates{Lat: 19.07, Lng: 72.87}}  // Mumbai
	near := model.FoodRequest{ID: uuid.New(), Location: model.Coordinates{Lat: 28.70, Lng: 77.10}} // near Delhi
	noLocation := model.FoodRequest{ID: uuid.New()}

	requestRepo.On("List", mock.Anything, mock.Anything).
		Return([]model.FoodRequest{far, noLocation, near}, nil)

	lat, lng := 28.61, 77.21 // Delhi
	results, err := svc.Discover(context.Background(), DiscoveryFilter{Lat: &lat, Lng: &lng})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, near.ID, results[0].ID)
	require.Equal(t, far.ID, results[1].ID)
	// Requests without a location sort last and carry no distance
	require.Equal(t, noLocation.ID, results[2].ID)
	require.Nil(t, results[2].DistanceKm)
	require.Less(t, *results[0].DistanceKm, *results[1].DistanceKm)
	require.Less(t, *results[1].DistanceKm, float64(geo.SentinelDistance))
}

func TestApproveNonPendingRequest(t *testing.T) {
	svc, requestRepo, _, _, _, _ := newRequestFixture()

	request := openRequest(100, 0)
	adminID := uuid.New()

	requestRepo.On("Approve", mock.Anything, request.ID.String(), adminID.String(), mock.AnythingOfType("time.Time")).
		Return(int64(0), nil)
	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)

	err := svc.Approve(context.Background(), adminID.String(), request.ID.String())
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestCancelByNonOwnerForbidden(t *testing.T) {
	svc, requestRepo, _, _, _, _ := newRequestFixture()

	request := openRequest(100, 0)
	stranger := uuid.New()

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)

	err := svc.Cancel(context.Background(), stranger.String(), model.RoleNGO, request.ID.String())
	require.ErrorIs(t, err, apperror.ErrForbidden)

	requestRepo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestCancelByAdminAllowed(t *testing.T) {
	svc, requestRepo, _, _, _, auditRepo := newRequestFixture()

	request := openRequest(100, 0)
	adminID := uuid.New()

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)
	requestRepo.On("Cancel", mock.Anything, request.ID.String()).Return(int64(1), nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	err := svc.Cancel(context.Background(), adminID.String(), model.RoleAdmin, request.ID.String())
	require.NoError(t, err)
}

func TestConfirmReceiptFirstCallIncrementsAnalytics(t *testing.T) {
	svc, requestRepo, _, deliveryRepo, analyticsRepo, auditRepo := newRequestFixture()

	request := openRequest(100, 100)
	ngoID := request.NGOID

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)
	requestRepo.On("ConfirmReceipt", mock.Anything, request.ID.String(), ngoID.String(), mock.AnythingOfType("time.Time")).
		Return(int64(1), nil)
	analyticsRepo.On("IncrementDaily", mock.Anything, model.MetricMealsDelivered, float64(100), mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	deliveryRepo.On("ConfirmAllForRequest", mock.Anything, request.ID.String(), mock.AnythingOfType("time.Time")).Return(nil)

	err := svc.ConfirmReceipt(context.Background(), ngoID.String(), request.ID.String())
	require.NoError(t, err)

	analyticsRepo.AssertExpectations(t)
	deliveryRepo.AssertExpectations(t)
}

func TestConfirmReceiptRepeatSkipsIncrementButCascades(t *testing.T) {
	svc, requestRepo, _, deliveryRepo, analyticsRepo, _ := newRequestFixture()

	request := openRequest(100, 100)
	ngoID := request.NGOID

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)
	// Latch already set: zero rows affected
	requestRepo.On("ConfirmReceipt", mock.Anything, request.ID.String(), ngoID.String(), mock.AnythingOfType("time.Time")).
		Return(int64(0), nil)
	deliveryRepo.On("ConfirmAllForRequest", mock.Anything, request.ID.String(), mock.AnythingOfType("time.Time")).Return(nil)

	err := svc.ConfirmReceipt(context.Background(), ngoID.String(), request.ID.String())
	require.NoError(t, err)

	analyticsRepo.AssertNotCalled(t, "IncrementDaily", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	deliveryRepo.AssertExpectations(t)
}

func TestConfirmReceiptByNonOwnerNotFound(t *testing.T) {
	svc, requestRepo, _, _, _, _ := newRequestFixture()

	request := openRequest(100, 100)
	stranger := uuid.New()

	requestRepo.On("GetByID", mock.Anything, request.ID.String()).Return(request, nil)

	err := svc.ConfirmReceipt(context.Background(), stranger.String(), request.ID.String())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}
