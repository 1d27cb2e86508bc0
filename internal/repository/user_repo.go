package repository

import (
	"context"

	"github.com/smartplatefoodredistribution-art/smartplate/internal/model"

	"gorm.io/gorm"
)

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	SetRole(ctx context.Context, id, role string) (int64, error)
	SetPhone(ctx context.Context, id, phone string) error
	SetVerified(ctx context.Context, id string, verified bool) error
	CountByRole(ctx context.Context, role string) (int64, error)
	CountVerifiedByRole(ctx context.Context, role string) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	if err := GetDB(ctx, r.db).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := GetDB(ctx, r.db).Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// SetRole assigns a role only if none is set yet; returns rows affected so
// the caller can tell a repeated selection apart.
func (r *userRepository) SetRole(ctx context.Context, id, role string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.User{}).
		Where("id = ? AND (role IS NULL OR role = '')", id).
		Update("role", role)
	return res.RowsAffected, res.Error
}

func (r *userRepository) SetPhone(ctx context.Context, id, phone string) error {
	return GetDB(ctx, r.db).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"phone": phone, "phone_verified": true}).Error
}

func (r *userRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	return GetDB(ctx, r.db).Model(&model.User{}).
		Where("id = ?", id).
		Update("is_verified", verified).Error
}

func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *userRepository) CountVerifiedByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.User{}).
		Where("role = ? AND is_verified = ?", role, true).Count(&count).Error
	return count, err
}
