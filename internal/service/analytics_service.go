package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PublicStats is the unauthenticated impact snapshot on the landing page.
type PublicStats struct {
	MealsDelivered  float64 `json:"meals_delivered"`
	PeopleFed       float64 `json:"people_fed"`
	VerifiedNGOs    int64   `json:"verified_ngos"`
	ActiveDonors    int64   `json:"active_donors"`
	TotalVolunteers int64   `json:"total_volunteers"`
	// SuccessRate is fulfilled requests over all terminal requests, as a
	// percentage rounded to two decimals.
	SuccessRate string `json:"success_rate"`
}

// UserStats is the per-actor activity summary; which fields are set depends
// on the caller's role.
type UserStats struct {
	Role string `json:"role"`

	// NGO
	RequestsCreated   int64 `json:"requests_created,omitempty"`
	ServingsRequested int64 `json:"servings_requested,omitempty"`
	ServingsReceived  int64 `json:"servings_received,omitempty"`

	// Donor
	FulfillmentsMade int64 `json:"fulfillments_made,omitempty"`
	ServingsDonated  int64 `json:"servings_donated,omitempty"`

	// Volunteer
	DeliveriesCompleted int     `json:"deliveries_completed,omitempty"`
	PerformanceScore    float64 `json:"performance_score,omitempty"`
}

// AdminDashboard is the operational overview for the admin console.
type AdminDashboard struct {
	PendingRequests         int64 `json:"pending_requests"`
	OpenRequests            int64 `json:"open_requests"`
	ActiveDeliveries        int64 `json:"active_deliveries"`
	PendingNGOVerifications int64 `json:"pending_ngo_verifications"`
	PendingVolunteerReviews int64 `json:"pending_volunteer_reviews"`
	TotalUsers              int64 `json:"total_users"`
}

type AnalyticsService interface {
	Increment(ctx context.Context, metricType string, amount float64) error
	PublicStats(ctx context.Context) (*PublicStats, error)
	UserStats(ctx context.Context, userID, role string) (*UserStats, error)
	Dashboard(ctx context.Context) (*AdminDashboard, error)
}

type analyticsService struct {
	analyticsRepo   repository.AnalyticsRepository
	requestRepo     repository.FoodRequestRepository
	fulfillmentRepo repository.FulfillmentRepository
	deliveryRepo    repository.DeliveryRepository
	ngoRepo         repository.NGOVerificationRepository
	volunteerRepo   repository.VolunteerRepository
	userRepo        repository.UserRepository
}

func NewAnalyticsService(
	analyticsRepo repository.AnalyticsRepository,
	requestRepo repository.FoodRequestRepository,
	fulfillmentRepo repository.FulfillmentRepository,
	deliveryRepo repository.DeliveryRepository,
	ngoRepo repository.NGOVerificationRepository,
	volunteerRepo repository.VolunteerRepository,
	userRepo repository.UserRepository,
) AnalyticsService {
	return &analyticsService{
		analyticsRepo:   analyticsRepo,
		requestRepo:     requestRepo,
		fulfillmentRepo: fulfillmentRepo,
		deliveryRepo:    deliveryRepo,
		ngoRepo:         ngoRepo,
		volunteerRepo:   volunteerRepo,
		userRepo:        userRepo,
	}
}

func (s *analyticsService) Increment(ctx context.Context, metricType string, amount float64) error {
	return s.analyticsRepo.IncrementDaily(ctx, metricType, amount, time.Now().UTC())
}

func (s *analyticsService) PublicStats(ctx context.Context) (*PublicStats, error) {
	meals, err := s.analyticsRepo.SumMetric(ctx, model.MetricMealsDelivered)
	if err != nil {
		return nil, fmt.Errorf("failed to sum meals delivered: %w", err)
	}
	people, err := s.analyticsRepo.SumMetric(ctx, model.MetricPeopleFed)
	if err != nil {
		return nil, fmt.Errorf("failed to sum people fed: %w", err)
	}
	verifiedNGOs, err := s.userRepo.CountVerifiedByRole(ctx, model.RoleNGO)
	if err != nil {
		return nil, fmt.Errorf("failed to count NGOs: %w", err)
	}
	donors, err := s.userRepo.CountByRole(ctx, model.RoleDonor)
	if err != nil {
		return nil, fmt.Errorf("failed to count donors: %w", err)
	}
	volunteers, err := s.userRepo.CountByRole(ctx, model.RoleVolunteer)
	if err != nil {
		return nil, fmt.Errorf("failed to count volunteers: %w", err)
	}

	fulfilled, err := s.requestRepo.CountByStatuses(ctx, []string{model.RequestStatusFulfilled})
	if err != nil {
		return nil, fmt.Errorf("failed to count fulfilled requests: %w", err)
	}
	terminal, err := s.requestRepo.CountByStatuses(ctx,
		[]string{model.RequestStatusFulfilled, model.RequestStatusCancelled})
	if err != nil {
		return nil, fmt.Errorf("failed to count terminal requests: %w", err)
	}

	return &PublicStats{
		MealsDelivered:  meals,
		PeopleFed:       people,
		VerifiedNGOs:    verifiedNGOs,
		ActiveDonors:    donors,
		TotalVolunteers: volunteers,
		SuccessRate:     successRate(fulfilled, terminal),
	}, nil
}

// successRate computes fulfilled/terminal as a percentage with exact decimal
// arithmetic, rounded to two places. Zero terminal requests reads as 100%.
func successRate(fulfilled, terminal int64) string {
	if terminal == 0 {
		return "100.00"
	}
	rate := decimal.NewFromInt(fulfilled).
		Div(decimal.NewFromInt(terminal)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return rate.StringFixed(2)
}

func (s *analyticsService) UserStats(ctx context.Context, userID, role string) (*UserStats, error) {
	stats := UserStats{Role: role}

	switch role {
	case model.RoleNGO:
		requests, err := s.requestRepo.ListByNGO(ctx, userID, -1)
		if err != nil {
			return nil, fmt.Errorf("failed to list NGO requests: %w", err)
		}
		stats.RequestsCreated = int64(len(requests))
		requested, received, err := s.requestRepo.SumQuantitiesByNGO(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum NGO quantities: %w", err)
		}
		stats.ServingsRequested = requested
		stats.ServingsReceived = received

	case model.RoleDonor:
		count, total, err := s.fulfillmentRepo.CountAndSumByDonor(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate donor fulfillments: %w", err)
		}
		stats.FulfillmentsMade = count
		stats.ServingsDonated = total

	case model.RoleVolunteer:
		v, err := s.volunteerRepo.GetByUserID(ctx, userID)
		if err != nil {
			// No record yet just means zero stats
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, fmt.Errorf("failed to load volunteer record: %w", err)
		}
		stats.DeliveriesCompleted = v.DeliveryCount
		stats.PerformanceScore = v.PerformanceScore
	}

	return &stats, nil
}

func (s *analyticsService) Dashboard(ctx context.Context) (*AdminDashboard, error) {
	pending, err := s.requestRepo.CountByStatuses(ctx, []string{model.RequestStatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to count pending requests: %w", err)
	}
	open, err := s.requestRepo.CountByStatuses(ctx, model.RequestOpenStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to count open requests: %w", err)
	}
	activeDeliveries, err := s.deliveryRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active deliveries: %w", err)
	}
	pendingNGOs, err := s.ngoRepo.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending NGO verifications: %w", err)
	}
	pendingVolunteers, err := s.volunteerRepo.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending volunteer reviews: %w", err)
	}

	var totalUsers int64
	for _, role := range []string{model.RoleNGO, model.RoleDonor, model.RoleVolunteer, model.RoleAdmin} {
		n, err := s.userRepo.CountByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		totalUsers += n
	}

	return &AdminDashboard{
		PendingRequests:         pending,
		OpenRequests:            open,
		ActiveDeliveries:        activeDeliveries,
		PendingNGOVerifications: pendingNGOs,
		PendingVolunteerReviews: pendingVolunteers,
		TotalUsers:              totalUsers,
	}, nil
}
