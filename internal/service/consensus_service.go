package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/repository"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

// VoteResult reports the outcome of one admin's approval vote. Completed is
// false after the first vote ("waiting for second admin") and true once a
// second, distinct admin has voted.
type VoteResult struct {
	Completed bool   `json:"completed"`
	Message   string `json:"message"`
}

// --- Interface ---

// ConsensusService is the dual-admin approval gate: sensitive target-state
// changes (NGO and volunteer verification) require two distinct admins to
// independently approve. Rejection is unilateral and bypasses the ledger.
type ConsensusService interface {
	Approve(ctx context.Context, adminID, targetID, targetType string) (VoteResult, error)
	Reject(ctx context.Context, adminID, targetID, targetType, reason string) error
}

type consensusService struct {
	approvalRepo  repository.ApprovalRepository
	ngoRepo       repository.NGOVerificationRepository
	volunteerRepo repository.VolunteerRepository
	userRepo      repository.UserRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
}

func NewConsensusService(
	approvalRepo repository.ApprovalRepository,
	ngoRepo repository.NGOVerificationRepository,
	volunteerRepo repository.VolunteerRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ConsensusService {
	return &consensusService{
		approvalRepo:  approvalRepo,
		ngoRepo:       ngoRepo,
		volunteerRepo: volunteerRepo,
		userRepo:      userRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
	}
}

// --- Implementation ---

func (s *consensusService) Approve(ctx context.Context, adminID, targetID, targetType string) (VoteResult, error) {
	if err := s.checkTarget(ctx, targetID, targetType); err != nil {
		return VoteResult{}, err
	}

	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return VoteResult{}, fmt.Errorf("%w: invalid admin id", apperror.ErrValidation)
	}

	open, err := s.approvalRepo.FindOpen(ctx, targetID, targetType)
	if err != nil {
		return VoteResult{}, fmt.Errorf("failed to look up open approval: %w", err)
	}

	if open == nil {
		// First vote: claim the admin-A slot by creating the record.
		now := time.Now().UTC()
		record := model.AdminApproval{
			TargetID:        targetID,
			TargetType:      targetType,
			AdminAID:        &adminUUID,
			AdminAApproved:  true,
			AdminATimestamp: &now,
			FinalStatus:     model.ApprovalPending,
		}
		if err := s.approvalRepo.Create(ctx, &record); err != nil {
			return VoteResult{}, fmt.Errorf("failed to record first approval vote: %w", err)
		}
		s.audit(ctx, adminUUID, model.ActionFirstApprovalVote, targetID, targetType, "")
		return VoteResult{
			Completed: false,
			Message:   "First admin approval recorded. Waiting for second admin.",
		}, nil
	}

	if open.AdminAID != nil && *open.AdminAID == adminUUID {
		return VoteResult{}, apperror.ErrSameAdmin
	}

	// Second vote: completion runs together with the target-side effects so
	// a crash cannot leave a completed vote without a flipped target.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, completeErr := s.approvalRepo.CompleteSecondVote(txCtx, open.ID.String(), adminID, time.Now().UTC())
		if completeErr != nil {
			return fmt.Errorf("failed to complete approval: %w", completeErr)
		}
		if rows == 0 {
			// Lost the race: another admin completed (or the conditional
			// rejected a self-vote that raced record creation).
			return fmt.Errorf("%w: approval already finalized", apperror.ErrInvalidState)
		}

		if effectErr := s.applyApprovalEffect(txCtx, adminID, targetID, targetType); effectErr != nil {
			return effectErr
		}

		s.audit(txCtx, adminUUID, model.ActionSecondApprovalVote, targetID, targetType, "")
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}

	return VoteResult{Completed: true, Message: "Verification approved."}, nil
}

func (s *consensusService) Reject(ctx context.Context, adminID, targetID, targetType, reason string) error {
	if err := s.checkTarget(ctx, targetID, targetType); err != nil {
		return err
	}

	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return fmt.Errorf("%w: invalid admin id", apperror.ErrValidation)
	}

	review := repository.ReviewUpdate{
		Status:          model.VerificationRejected,
		RejectionReason: reason,
		ReviewedBy:      adminID,
		ReviewedAt:      time.Now().UTC(),
	}

	switch targetType {
	case model.ApprovalTargetNGO:
		err = s.ngoRepo.UpdateReview(ctx, targetID, review)
	case model.ApprovalTargetVolunteer:
		err = s.volunteerRepo.UpdateReview(ctx, targetID, review)
	default:
		return fmt.Errorf("%w: unknown target type %q", apperror.ErrValidation, targetType)
	}
	if err != nil {
		return fmt.Errorf("failed to reject verification: %w", err)
	}

	s.audit(ctx, adminUUID, model.ActionRejectVerification, targetID, targetType, reason)
	return nil
}

// checkTarget confirms the verification target exists. NGO approvals are
// keyed by verification record id, volunteer approvals by user id.
func (s *consensusService) checkTarget(ctx context.Context, targetID, targetType string) error {
	var err error
	switch targetType {
	case model.ApprovalTargetNGO:
		_, err = s.ngoRepo.GetByID(ctx, targetID)
	case model.ApprovalTargetVolunteer:
		_, err = s.volunteerRepo.GetByUserID(ctx, targetID)
	default:
		return fmt.Errorf("%w: unknown target type %q", apperror.ErrValidation, targetType)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: verification target", apperror.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load verification target: %w", err)
	}
	return nil
}

// applyApprovalEffect is the per-target-type post-approval dispatch: flip
// the verification record to approved and set the actor's global verified
// flag.
func (s *consensusService) applyApprovalEffect(ctx context.Context, adminID, targetID, targetType string) error {
	review := repository.ReviewUpdate{
		Status:     model.VerificationApproved,
		ReviewedBy: adminID,
		ReviewedAt: time.Now().UTC(),
	}

	switch targetType {
	case model.ApprovalTargetNGO:
		verification, err := s.ngoRepo.GetByID(ctx, targetID)
		if err != nil {
			return fmt.Errorf("failed to load NGO verification: %w", err)
		}
		if err := s.ngoRepo.UpdateReview(ctx, targetID, review); err != nil {
			return fmt.Errorf("failed to approve NGO verification: %w", err)
		}
		return s.userRepo.SetVerified(ctx, verification.UserID.String(), true)

	case model.ApprovalTargetVolunteer:
		if err := s.volunteerRepo.UpdateReview(ctx, targetID, review); err != nil {
			return fmt.Errorf("failed to approve volunteer verification: %w", err)
		}
		return s.userRepo.SetVerified(ctx, targetID, true)

	default:
		return fmt.Errorf("%w: unknown target type %q", apperror.ErrValidation, targetType)
	}
}

func (s *consensusService) audit(ctx context.Context, adminID uuid.UUID, action, targetID, targetType, reason string) {
	payload := map[string]interface{}{
		"target_id":   targetID,
		"target_type": targetType,
	}
	if reason != "" {
		payload["reason"] = reason
	}
	details, _ := json.Marshal(payload)

	entry := model.AuditLog{
		UserID:     &adminID,
		Action:     action,
		EntityID:   targetID,
		EntityName: targetType,
		Details:    string(details),
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		// Audit writes must not fail the vote itself
		log.Println("WARNING: failed to write audit log:", err)
	}
}
