package service

import (
	"context"
	"errors"
	"testing"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSuccessRate(t *testing.T) {
	require.Equal(t, "100.00", successRate(0, 0))
	require.Equal(t, "100.00", successRate(5, 5))
	require.Equal(t, "50.00", successRate(1, 2))
	require.Equal(t, "66.67", successRate(2, 3))
	require.Equal(t, "0.00", successRate(0, 4))
}

func TestUserStatsDonor(t *testing.T) {
	fulfillmentRepo := new(MockFulfillmentRepository)
	svc := &analyticsService{fulfillmentRepo: fulfillmentRepo}

	donorID := uuid.New()
	fulfillmentRepo.On("CountAndSumByDonor", mock.Anything, donorID.String()).
		Return(int64(3), int64(250), nil)

	stats, err := svc.UserStats(context.Background(), donorID.String(), model.RoleDonor)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.FulfillmentsMade)
	require.Equal(t, int64(250), stats.ServingsDonated)
}

func TestUserStatsVolunteer(t *testing.T) {
	volunteerRepo := new(MockVolunteerRepository)
	svc := &analyticsService{volunteerRepo: volunteerRepo}

	volunteerID := uuid.New()
	volunteerRepo.On("GetByUserID", mock.Anything, volunteerID.String()).
		Return(&model.VolunteerVerification{
			UserID:           volunteerID,
			DeliveryCount:    7,
			PerformanceScore: 4.8,
		}, nil)

	stats, err := svc.UserStats(context.Background(), volunteerID.String(), model.RoleVolunteer)
	require.NoError(t, err)
	require.Equal(t, 7, stats.DeliveriesCompleted)
	require.Equal(t, 4.8, stats.PerformanceScore)
}

func TestUserStatsVolunteerWithoutRecord(t *testing.T) {
	volunteerRepo := new(MockVolunteerRepository)
	svc := &analyticsService{volunteerRepo: volunteerRepo}

	volunteerID := uuid.New()
	volunteerRepo.On("GetByUserID", mock.Anything, volunteerID.String()).
		Return(nil, gorm.ErrRecordNotFound)

	stats, err := svc.UserStats(context.Background(), volunteerID.String(), model.RoleVolunteer)
	require.NoError(t, err)
	require.Equal(t, 0, stats.DeliveriesCompleted)
	require.Equal(t, 0.0, stats.PerformanceScore)
}

func TestUserStatsVolunteerRepoFailure(t *testing.T) {
	volunteerRepo := new(MockVolunteerRepository)
	svc := &analyticsService{volunteerRepo: volunteerRepo}

	volunteerID := uuid.New()
	volunteerRepo.On("GetByUserID", mock.Anything, volunteerID.String()).
		Return(nil, errors.New("connection refused"))

	_, err := svc.UserStats(context.Background(), volunteerID.String(), model.RoleVolunteer)
	require.Error(t, err)
	require.Contains(t, err.Error(), "volunteer record")
}
