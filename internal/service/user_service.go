package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/middleware"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"
	"github.com/smartplatefoodredistribution-art/smartplate/internal/repository"
	"github.com/smartplatefoodredistribution-art/smartplate/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=ngo donor volunteer"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyPhoneDTO struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type AuthResult struct {
	Token string      `json:"access_token"`
	User  *model.User `json:"user"`
}

// UserService handles registration, authentication, and the one-shot role
// selection.
type UserService interface {
	Register(ctx context.Context, req RegisterDTO) (*AuthResult, error)
	Login(ctx context.Context, req LoginDTO) (*AuthResult, error)
	// SelectRole assigns a role once; a second selection is rejected.
	SelectRole(ctx context.Context, userID, role string) (*model.User, error)
	VerifyPhone(ctx context.Context, userID string, req VerifyPhoneDTO) error
	GetMe(ctx context.Context, userID string) (*model.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]model.User, int64, error)
}

type userService struct {
	userRepo            repository.UserRepository
	verificationService VerificationService
}

func NewUserService(userRepo repository.UserRepository, verificationService VerificationService) UserService {
	return &userService{userRepo: userRepo, verificationService: verificationService}
}

func (s *userService) Register(ctx context.Context, req RegisterDTO) (*AuthResult, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperror.ErrValidation)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hashed),
		Role:     req.Role,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if user.Role == model.RoleVolunteer {
		if err := s.verificationService.EnsureVolunteerRecord(ctx, user.ID.String()); err != nil {
			return nil, fmt.Errorf("failed to create volunteer record: %w", err)
		}
	}

	token, err := generateToken(&user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: &user}, nil
}

func (s *userService) Login(ctx context.Context, req LoginDTO) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", apperror.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", apperror.ErrValidation)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", apperror.ErrForbidden)
	}

	token, err := generateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *userService) SelectRole(ctx context.Context, userID, role string) (*model.User, error) {
	valid := false
	for _, r := range model.SelectableRoles {
		if r == role {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("%w: role must be one of ngo, donor, volunteer", apperror.ErrValidation)
	}

	rows, err := s.userRepo.SetRole(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to set role: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: role already selected", apperror.ErrInvalidState)
	}

	if role == model.RoleVolunteer {
		if err := s.verificationService.EnsureVolunteerRecord(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to create volunteer record: %w", err)
		}
	}

	return s.GetMe(ctx, userID)
}

// VerifyPhone is a mock OTP flow: any 6-digit numeric code passes against a
// 10-digit phone number. A real SMS provider slots in behind the same check.
func (s *userService) VerifyPhone(ctx context.Context, userID string, req VerifyPhoneDTO) error {
	if len(req.Phone) != 10 || !allDigits(req.Phone) {
		return fmt.Errorf("%w: phone must be 10 digits", apperror.ErrValidation)
	}
	if len(req.OTP) != 6 || !allDigits(req.OTP) {
		return fmt.Errorf("%w: invalid OTP", apperror.ErrValidation)
	}
	return s.userRepo.SetPhone(ctx, userID, req.Phone)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func (s *userService) GetMe(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	return s.userRepo.List(ctx, page, limit)
}

func generateToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
