package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nexusaquarium/internal/model"
)

// DeviceRepository persists push-notification devices.
type DeviceRepository interface {
	Upsert(ctx context.Context, device *model.UserDevice) error
	ListByUser(ctx context.Context, userID uint) ([]model.UserDevice, error)
}

type deviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository builds a GORM-backed repository.
func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

// Upsert inserts the device, or bumps last_login when the user already
// registered the same token.
func (r *deviceRepository) Upsert(ctx context.Context, device *model.UserDevice) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "device_token"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_login", "device_os"}),
		}).
		Create(device).Error
}

func (r *deviceRepository) ListByUser(ctx context.Context, userID uint) ([]model.UserDevice, error) {
	var devices []model.UserDevice
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}
