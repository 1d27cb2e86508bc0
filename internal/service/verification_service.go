package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/repository"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmitNGOVerificationDTO struct {
	OrganizationName   string            `json:"organization_name" binding:"required"`
	RegistrationNumber string            `json:"registration_number" binding:"required"`
	Address            string            `json:"address" binding:"required"`
	City               string            `json:"city" binding:"required"`
	State              string            `json:"state" binding:"required"`
	Pincode            string            `json:"pincode" binding:"required"`
	Website            string            `json:"website"`
	Description        string            `json:"description"`
	Location           model.Coordinates `json:"location"`
	Documents          []string          `json:"documents"`
}

type UpdateVolunteerProfileDTO struct {
	IDDocument    string `json:"id_document"`
	TransportMode string `json:"transport_mode" binding:"omitempty,oneof=bike auto car walk"`
}

// VerifiedNGO is the public directory entry for an approved NGO.
type VerifiedNGO struct {
	UserID           string            `json:"user_id"`
	OrganizationName string            `json:"organization_name"`
	City             string            `json:"city"`
	State            string            `json:"state"`
	Location         model.Coordinates `json:"location"`
	Website          string            `json:"website,omitempty"`
}

// VerificationService handles identity submissions on both sides of the
// marketplace. Approval itself is the consensus service's job; this one
// only creates and reads.
type VerificationService interface {
	SubmitNGO(ctx context.Context, userID string, req SubmitNGOVerificationDTO) (*model.NGOVerification, error)
	GetNGOByUser(ctx context.Context, userID string) (*model.NGOVerification, error)
	GetVolunteerByUser(ctx context.Context, userID string) (*model.VolunteerVerification, error)
	UpdateVolunteerProfile(ctx context.Context, userID string, req UpdateVolunteerProfileDTO) (*model.VolunteerVerification, error)
	// EnsureVolunteerRecord creates the pending verification row on first
	// touch so volunteers always have a record to vote on.
	EnsureVolunteerRecord(ctx context.Context, userID string) error
	ListPendingNGOs(ctx context.Context, limit int) ([]model.NGOVerification, error)
	ListPendingVolunteers(ctx context.Context, limit int) ([]model.VolunteerVerification, error)
	ListVerifiedNGOs(ctx context.Context, limit int) ([]VerifiedNGO, error)
}

type verificationService struct {
	ngoRepo       repository.NGOVerificationRepository
	volunteerRepo repository.VolunteerRepository
}

func NewVerificationService(
	ngoRepo repository.NGOVerificationRepository,
	volunteerRepo repository.VolunteerRepository,
) VerificationService {
	return &verificationService{ngoRepo: ngoRepo, volunteerRepo: volunteerRepo}
}

func (s *verificationService) SubmitNGO(ctx context.Context, userID string, req SubmitNGOVerificationDTO) (*model.NGOVerification, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", apperror.ErrValidation)
	}

	// One submission per NGO; re-submission after rejection is not
	// supported, admins re-review the existing record instead.
	if existing, err := s.ngoRepo.GetByUserID(ctx, userID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: verification already submitted", apperror.ErrInvalidState)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing verification: %w", err)
	}

	verification := model.NGOVerification{
		UserID:             userUUID,
		OrganizationName:   req.OrganizationName,
		RegistrationNumber: req.RegistrationNumber,
		Address:            req.Address,
		City:               req.City,
		State:              req.State,
		Pincode:            req.Pincode,
		Website:            req.Website,
		Description:        req.Description,
		Location:           req.Location,
		Documents:          model.UUIDList(req.Documents),
		Status:             model.VerificationPending,
	}
	if err := s.ngoRepo.Create(ctx, &verification); err != nil {
		return nil, fmt.Errorf("failed to create verification: %w", err)
	}
	return &verification, nil
}

func (s *verificationService) GetNGOByUser(ctx context.Context, userID string) (*model.NGOVerification, error) {
	v, err := s.ngoRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: verification", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load verification: %w", err)
	}
	return v, nil
}

func (s *verificationService) GetVolunteerByUser(ctx context.Context, userID string) (*model.VolunteerVerification, error) {
	v, err := s.volunteerRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: verification", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load verification: %w", err)
	}
	return v, nil
}

func (s *verificationService) UpdateVolunteerProfile(ctx context.Context, userID string, req UpdateVolunteerProfileDTO) (*model.VolunteerVerification, error) {
	if err := s.EnsureVolunteerRecord(ctx, userID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.IDDocument != "" {
		fields["id_document"] = req.IDDocument
	}
	if req.TransportMode != "" {
		fields["transport_mode"] = req.TransportMode
	}
	if err := s.volunteerRepo.UpdateProfile(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("failed to update volunteer profile: %w", err)
	}
	return s.GetVolunteerByUser(ctx, userID)
}

func (s *verificationService) EnsureVolunteerRecord(ctx context.Context, userID string) error {
	_, err := s.volunteerRepo.GetByUserID(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check volunteer record: %w", err)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", apperror.ErrValidation)
	}
	record := model.VolunteerVerification{
		UserID:           userUUID,
		Status:           model.VerificationPending,
		PerformanceScore: 5.0,
	}
	return s.volunteerRepo.Create(ctx, &record)
}

func (s *verificationService) ListPendingNGOs(ctx context.Context, limit int) ([]model.NGOVerification, error) {
	return s.ngoRepo.ListPending(ctx, limit)
}

func (s *verificationService) ListPendingVolunteers(ctx context.Context, limit int) ([]model.VolunteerVerification, error) {
	return s.volunteerRepo.ListPending(ctx, limit)
}

func (s *verificationService) ListVerifiedNGOs(ctx context.Context, limit int) ([]VerifiedNGO, error) {
	verifications, err := s.ngoRepo.ListApproved(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified NGOs: %w", err)
	}
	out := make([]VerifiedNGO, 0, len(verifications))
	for _, v := range verifications {
		out = append(out, VerifiedNGO{
			UserID:           v.UserID.String(),
			OrganizationName: v.OrganizationName,
			City:             v.City,
			State:            v.State,
			Location:         v.Location,
			Website:          v.Website,
		})
	}
	return out, nil
}
