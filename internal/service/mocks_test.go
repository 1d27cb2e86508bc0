package service

import (
	"context"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/repository"

	"github.com/stretchr/testify/mock"
)

// Mock repositories for testing

type MockFoodRequestRepository struct {
	mock.Mock
}

func (m *MockFoodRequestRepository) Create(ctx context.Context, req *model.FoodRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockFoodRequestRepository) GetByID(ctx context.Context, id string) (*model.FoodRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FoodRequest), args.Error(1)
}

func (m *MockFoodRequestRepository) List(ctx context.Context, filter repository.RequestFilter) ([]model.FoodRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.FoodRequest), args.Error(1)
}

func (m *MockFoodRequestRepository) ListByNGO(ctx context.Context, ngoID string, limit int) ([]model.FoodRequest, error) {
	args := m.Called(ctx, ngoID, limit)
	return args.Get(0).([]model.FoodRequest), args.Error(1)
}

func (m *MockFoodRequestRepository) ListAll(ctx context.Context, limit int) ([]model.FoodRequest, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.FoodRequest), args.Error(1)
}

func (m *MockFoodRequestRepository) ApplyFulfillment(ctx context.Context, id string, amount int) (int64, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFoodRequestRepository) Approve(ctx context.Context, id, adminID string, at time.Time) (int64, error) {
	args := m.Called(ctx, id, adminID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFoodRequestRepository) Cancel(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFoodRequestRepository) ConfirmReceipt(ctx context.Context, id, ngoID string, at time.Time) (int64, error) {
	args := m.Called(ctx, id, ngoID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFoodRequestRepository) CountByStatuses(ctx context.Context, statuses []string) (int64, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFoodRequestRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFoodRequestRepository) SumQuantitiesByNGO(ctx context.Context, ngoID string) (int64, int64, error) {
	args := m.Called(ctx, ngoID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type MockFulfillmentRepository struct {
	mock.Mock
}

func (m *MockFulfillmentRepository) Create(ctx context.Context, f *model.DonorFulfillment) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFulfillmentRepository) GetByID(ctx context.Context, id string) (*model.DonorFulfillment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DonorFulfillment), args.Error(1)
}

func (m *MockFulfillmentRepository) ListByDonor(ctx context.Context, donorID string, limit int) ([]model.DonorFulfillment, error) {
	args := m.Called(ctx, donorID, limit)
	return args.Get(0).([]model.DonorFulfillment), args.Error(1)
}

func (m *MockFulfillmentRepository) ListByRequest(ctx context.Context, requestID string) ([]model.DonorFulfillment, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).([]model.DonorFulfillment), args.Error(1)
}

func (m *MockFulfillmentRepository) CountAndSumByDonor(ctx context.Context, donorID string) (int64, int64, error) {
	args := m.Called(ctx, donorID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Create(ctx context.Context, d *model.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) GetByID(ctx context.Context, id string) (*model.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) ListAvailable(ctx context.Context, limit int) ([]model.Delivery, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) ListByVolunteer(ctx context.Context, volunteerID string, limit int) ([]model.Delivery, error) {
	args := m.Called(ctx, volunteerID, limit)
	return args.Get(0).([]model.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) ListAll(ctx context.Context, limit int) ([]model.Delivery, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) Assign(ctx context.Context, id, volunteerID string) (int64, error) {
	args := m.Called(ctx, id, volunteerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeliveryRepository) MarkPickedUp(ctx context.Context, id, volunteerID string, at time.Time) (int64, error) {
	args := m.Called(ctx, id, volunteerID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeliveryRepository) MarkDelivered(ctx context.Context, id, volunteerID, proof string, at time.Time) (int64, error) {
	args := m.Called(ctx, id, volunteerID, proof, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeliveryRepository) ConfirmAllForRequest(ctx context.Context, requestID string, at time.Time) error {
	args := m.Called(ctx, requestID, at)
	return args.Error(0)
}

func (m *MockDeliveryRepository) SetExtraVolunteerRequired(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeliveryRepository) AppendAdditionalVolunteer(ctx context.Context, id, volunteerID string) (int64, error) {
	args := m.Called(ctx, id, volunteerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeliveryRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockNGOVerificationRepository struct {
	mock.Mock
}

func (m *MockNGOVerificationRepository) Create(ctx context.Context, v *model.NGOVerification) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockNGOVerificationRepository) GetByID(ctx context.Context, id string) (*model.NGOVerification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NGOVerification), args.Error(1)
}

func (m *MockNGOVerificationRepository) GetByUserID(ctx context.Context, userID string) (*model.NGOVerification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NGOVerification), args.Error(1)
}

func (m *MockNGOVerificationRepository) ListPending(ctx context.Context, limit int) ([]model.NGOVerification, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.NGOVerification), args.Error(1)
}

func (m *MockNGOVerificationRepository) ListApproved(ctx context.Context, limit int) ([]model.NGOVerification, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.NGOVerification), args.Error(1)
}

func (m *MockNGOVerificationRepository) UpdateReview(ctx context.Context, id string, review repository.ReviewUpdate) error {
	args := m.Called(ctx, id, review)
	return args.Error(0)
}

func (m *MockNGOVerificationRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockVolunteerRepository struct {
	mock.Mock
}

func (m *MockVolunteerRepository) Create(ctx context.Context, v *model.VolunteerVerification) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVolunteerRepository) GetByUserID(ctx context.Context, userID string) (*model.VolunteerVerification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VolunteerVerification), args.Error(1)
}

func (m *MockVolunteerRepository) ListPending(ctx context.Context, limit int) ([]model.VolunteerVerification, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.VolunteerVerification), args.Error(1)
}

func (m *MockVolunteerRepository) UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	args := m.Called(ctx, userID, fields)
	return args.Error(0)
}

func (m *MockVolunteerRepository) UpdateReview(ctx context.Context, userID string, review repository.ReviewUpdate) error {
	args := m.Called(ctx, userID, review)
	return args.Error(0)
}

func (m *MockVolunteerRepository) IncrementDeliveryCount(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockVolunteerRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockApprovalRepository struct {
	mock.Mock
}

func (m *MockApprovalRepository) Create(ctx context.Context, a *model.AdminApproval) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockApprovalRepository) GetByID(ctx context.Context, id string) (*model.AdminApproval, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminApproval), args.Error(1)
}

func (m *MockApprovalRepository) FindOpen(ctx context.Context, targetID, targetType string) (*model.AdminApproval, error) {
	args := m.Called(ctx, targetID, targetType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminApproval), args.Error(1)
}

func (m *MockApprovalRepository) CompleteSecondVote(ctx context.Context, id, adminBID string, at time.Time) (int64, error) {
	args := m.Called(ctx, id, adminBID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApprovalRepository) ListByTarget(ctx context.Context, targetID, targetType string) ([]model.AdminApproval, error) {
	args := m.Called(ctx, targetID, targetType)
	return args.Get(0).([]model.AdminApproval), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) SetRole(ctx context.Context, id, role string) (int64, error) {
	args := m.Called(ctx, id, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) SetPhone(ctx context.Context, id, phone string) error {
	args := m.Called(ctx, id, phone)
	return args.Error(0)
}

func (m *MockUserRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	args := m.Called(ctx, id, verified)
	return args.Error(0)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountVerifiedByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]model.AuditLog), args.Get(1).(int64), args.Error(2)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) IncrementDaily(ctx context.Context, metricType string, amount float64, day time.Time) error {
	args := m.Called(ctx, metricType, amount, day)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) SumMetric(ctx context.Context, metricType string) (float64, error) {
	args := m.Called(ctx, metricType)
	return args.Get(0).(float64), args.Error(1)
}

// fakeTxManager runs the callback directly against the same context; the
// services under test only care about the callback's error propagation.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
