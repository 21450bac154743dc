package repository

import (
	"backend/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the interface for data access of User entities
// and their role profiles
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	CreateBrand(ctx context.Context, brand *model.Brand) error
	CreateInfluencer(ctx context.Context, influencer *model.Influencer) error
	GetBrandByUserID(ctx context.Context, userID uuid.UUID) (*model.Brand, error)
	GetInfluencerByUserID(ctx context.Context, userID uuid.UUID) (*model.Influencer, error)
	SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
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

func (r *userRepository) CreateBrand(ctx context.Context, brand *model.Brand) error {
	return GetDB(ctx, r.db).Create(brand).Error
}

func (r *userRepository) CreateInfluencer(ctx context.Context, influencer *model.Influencer) error {
	return GetDB(ctx, r.db).Create(influencer).Error
}

func (r *userRepository) GetBrandByUserID(ctx context.Context, userID uuid.UUID) (*model.Brand, error) {
	var brand model.Brand
	if err := GetDB(ctx, r.db).First(&brand, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *userRepository) GetInfluencerByUserID(ctx context.Context, userID uuid.UUID) (*model.Influencer, error) {
	var influencer model.Influencer
	if err := GetDB(ctx, r.db).First(&influencer, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &influencer, nil
}

func (r *userRepository) SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

func (r *userRepository) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var rt model.RefreshToken
	if err := GetDB(ctx, r.db).First(&rt, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *userRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	return GetDB(ctx, r.db).Where("token = ?", token).Delete(&model.RefreshToken{}).Error
}
