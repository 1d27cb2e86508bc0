package service

import (
	"context"
	"testing"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/websocket"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDeliveryFixture() (*deliveryService, *MockDeliveryRepository, *MockVolunteerRepository, *MockAuditRepository) {
	deliveryRepo := new(MockDeliveryRepository)
	volunteerRepo := new(MockVolunteerRepository)
	auditRepo := new(MockAuditRepository)

	svc := &deliveryService{
		deliveryRepo:  deliveryRepo,
		volunteerRepo: volunteerRepo,
		auditRepo:     auditRepo,
		hub:           websocket.NewHub(),
	}
	return svc, deliveryRepo, volunteerRepo, auditRepo
}

func approvedVolunteer(userID uuid.UUID) *model.VolunteerVerification {
	return &model.VolunteerVerification{
		ID:     uuid.New(),
		UserID: userID,
		Status: model.VerificationApproved,
	}
}

func TestAcceptRequiresVerifiedVolunteer(t *testing.T) {
	svc, deliveryRepo, volunteerRepo, _ := newDeliveryFixture()

	volunteerID := uuid.New()
	pending := &model.VolunteerVerification{UserID: volunteerID, Status: model.VerificationPending}
	volunteerRepo.On("GetByUserID", mock.Anything, volunteerID.String()).Return(pending, nil)

	_, err := svc.Accept(context.Background(), volunteerID.String(), uuid.NewString())
	require.ErrorIs(t, err, apperror.ErrNotVerified)

	deliveryRepo.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptClaimsSlot(t *testing.T) {
	svc, deliveryRepo, volunteerRepo, _ := newDeliveryFixture()

	volunteerID := uuid.New()
	deliveryID := uuid.New()
	claimed := &model.Delivery{
		ID:          deliveryID,
		VolunteerID: &volunteerID,
		Status:      model.DeliveryStatusAssigned,
	}

	volunteerRepo.On("GetByUserID", mock.Anything, volunteerID.String()).Return(approvedVolunteer(volunteerID), nil)
	deliveryRepo.On("Assign", mock.Anything, deliveryID.String(), volunteerID.String()).Return(int64(1), nil)
	deliveryRepo.On("GetByID", mock.Anything, deliveryID.String()).Return(claimed, nil)

	delivery, err := svc.Accept(context.Background(), volunteerID.String(), deliveryID.String())
	require.NoError(t, err)
	require.True(t, delivery.AssignedTo(volunteerID))
}

func TestAcceptSlotHeldByAnotherVolunteer(t *testing.T) {
	svc, deliveryRepo, volunteerRepo, _ := newDeliveryFixture()

	first := uuid.New()
	second := uuid.New()
	deliveryID := uuid.New()
	held := &model.Delivery{
		ID:          deliveryID,
		VolunteerID: &first,
		Status:      model.DeliveryStatusAssigned,
	}

	volunteerRepo.On("GetByUserID", mock.Anything, second.String()).Return(approvedVolunteer(second), nil)
	deliveryRepo.On("Assign", mock.Anything, deliveryID.String(), second.String()).Return(int64(0), nil)
	deliveryRepo.On("GetByID", mock.Anything, deliveryID.String()).Return(held, nil)

	_, err := svc.Accept(context.Background(), second.String(), deliveryID.String())
	require.ErrorIs(t, err, apperror.ErrAlreadyAssigned)

	// The first volunteer's claim was never touched
	require.Equal(t, first, *held.VolunteerID)
}

func TestAcceptUnknownDelivery(t *testing.T) {
	svc, deliveryRepo, volunteerRepo, _ := newDeliveryFixture()

	volunteerID := uuid.New()
	deliveryID := uuid.New()

	volunteerRepo.On("GetByUserID", mock.Anything, volunteerID.String()).Return(approvedVolunteer(volunteerID), nil)
	deliveryRepo.On("Assign", mock.Anything, deliveryID.String(), volunteerID.String()).Return(int64(0), nil)
	deliveryRepo.On("GetByID", mock.Anything, deliveryID.String()).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Accept(context.Background(), volunteerID.String(), deliveryID.String())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPickupByNonHolderRejected(t *testing.T) {
	svc, deliveryRepo, _, _ := newDeliveryFixture()

	holder := uuid.New()
	intruder := uuid.New()
	deliveryID := uuid.New()
	held := &model.Delivery{
		ID:          deliveryID,
		VolunteerID: &holder,
		Status:      model.DeliveryStatusAssigned,
	}

	deliveryRepo.On("MarkPickedUp", mock.Anything, deliveryID.String(), intruder.String(), mock.AnythingOfType("time.Time")).
		Return(int64(0), nil)
	deliveryRepo.On("GetByID", mock.Anything, deliveryID.String()).Return(held, nil)

	err := svc.Pickup(context.Background(), intruder.String(), deliveryID.String())
	require.ErrorIs(t, err, apperror.ErrNotAssigned)
}

func TestCompleteSkippingPickupRejected(t *testing.T) {
	svc, deliveryRepo, volunteerRepo, _ := newDeliveryFixture()

	volunteerID := uuid.New()
	deliveryID := uuid.New()
	assigned := &model.Delivery{
		ID:          deliveryID,
		VolunteerID: &volunteerID,
		Status:      model.DeliveryStatusAssigned,
	}

	deliveryRepo.On("MarkDelivered", mock.Anything, deliveryID.String(), volunteerID.String(), "", mock.AnythingOfType("time.Time")).
		Return(int64(0), nil)
	deliveryRepo.On("GetByID", mock.Anything, deliveryID.String()).Return(assigned, nil)

	err := svc.Complete(context.Background(), volunteerID.String(), deliveryID.String(), CompleteDeliveryDTO{})
	require.ErrorIs(t, err, apperror.ErrInvalidState)

	// No credit without a won transition
	volunteerRepo.AssertNotCalled(t, "IncrementDeliveryCount", mock.Anything, mock.Anything)
}

func TestCompleteCreditsVolunteerOnce(t *testing.T) {
	svc, deliveryRepo, volunteerRepo, _ := newDeliveryFixture()

	volunteerID := uuid.New()
	deliveryID := uuid.New()

	deliveryRepo.On("MarkDelivered", mock.Anything, deliveryID.String(), volunteerID.String(), "photo.jpg", mock.AnythingOfType("time.Time")).
		Return(int64(1), nil)
	volunteerRepo.On("IncrementDeliveryCount", mock.Anything, volunteerID.String()).Return(nil).Once()

	err := svc.Complete(context.Background(), volunteerID.String(), deliveryID.String(),
		CompleteDeliveryDTO{DeliveryProof: "photo.jpg"})
	require.NoError(t, err)

	volunteerRepo.AssertExpectations(t)
}

func TestCreditVolunteerRejectsPrimaryHolder(t *testing.T) {
	svc, deliveryRepo, volunteerRepo, _ := newDeliveryFixture()

	adminID := uuid.New()
	volunteerID := uuid.New()
	deliveryID := uuid.New()
	held := &model.Delivery{
		ID:          deliveryID,
		VolunteerID: &volunteerID,
		Status:      model.DeliveryStatusPickedUp,
	}

	volunteerRepo.On("GetByUserID", mock.Anything, volunteerID.String()).Return(approvedVolunteer(volunteerID), nil)
	deliveryRepo.On("GetByID", mock.Anything, deliveryID.String()).Return(held, nil)

	err := svc.CreditVolunteer(context.Background(), adminID.String(), deliveryID.String(), volunteerID.String())
	require.ErrorIs(t, err, apperror.ErrValidation)

	deliveryRepo.AssertNotCalled(t, "AppendAdditionalVolunteer", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreditVolunteerRepeatIsAbsorbed(t *testing.T) {
	svc, deliveryRepo, volunteerRepo, auditRepo := newDeliveryFixture()

	adminID := uuid.New()
	helper := uuid.New()
	primary := uuid.New()
	deliveryID := uuid.New()
	held := &model.Delivery{
		ID:                   deliveryID,
		VolunteerID:          &primary,
		AdditionalVolunteers: model.UUIDList{helper.String()},
		Status:               model.DeliveryStatusPickedUp,
	}

	volunteerRepo.On("GetByUserID", mock.Anything, helper.String()).Return(approvedVolunteer(helper), nil)
	deliveryRepo.On("GetByID", mock.Anything, deliveryID.String()).Return(held, nil)
	// Containment guard rejects the duplicate append
	deliveryRepo.On("AppendAdditionalVolunteer", mock.Anything, deliveryID.String(), helper.String()).Return(int64(0), nil)

	err := svc.CreditVolunteer(context.Background(), adminID.String(), deliveryID.String(), helper.String())
	require.NoError(t, err)

	// No audit entry for a no-op credit
	auditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFlagExtraVolunteer(t *testing.T) {
	svc, deliveryRepo, _, auditRepo := newDeliveryFixture()

	adminID := uuid.New()
	deliveryID := uuid.New()

	deliveryRepo.On("SetExtraVolunteerRequired", mock.Anything, deliveryID.String()).Return(int64(1), nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	err := svc.FlagExtraVolunteer(context.Background(), adminID.String(), deliveryID.String())
	require.NoError(t, err)

	auditRepo.AssertExpectations(t)
}
