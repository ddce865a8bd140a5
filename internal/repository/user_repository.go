package repository

import (
	"context"

	"gorm.io/gorm"

	"nexusaquarium/internal/model"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id uint, displayName *string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts user and fills in its id. A taken email surfaces as
// gorm.ErrDuplicatedKey.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateDisplayName sets or clears the display name.
func (r *userRepository) UpdateDisplayName(ctx context.Context, id uint, displayName *string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{ID: id}).
		Update("display_name", displayName).Error
}
