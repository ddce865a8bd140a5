package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nexusaquarium/internal/model"
)

// PreferencesRepository persists notification preferences.
type PreferencesRepository interface {
	CreateDefault(ctx context.Context, userID uint) error
	FindByUser(ctx context.Context, userID uint) (*model.UserPreferences, error)
	Save(ctx context.Context, prefs *model.UserPreferences) error
}

type preferencesRepository struct {
	db *gorm.DB
}

// NewPreferencesRepository builds a GORM-backed repository.
func NewPreferencesRepository(db *gorm.DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

// CreateDefault inserts the default row and leaves an existing one untouched.
func (r *preferencesRepository) CreateDefault(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model.DefaultPreferences(userID)).Error
}

// FindByUser returns gorm.ErrRecordNotFound when the user has no row.
func (r *preferencesRepository) FindByUser(ctx context.Context, userID uint) (*model.UserPreferences, error) {
	var prefs model.UserPreferences
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Save writes every column, inserting the row if it is missing.
func (r *preferencesRepository) Save(ctx context.Context, prefs *model.UserPreferences) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"enable_task_reminders", "enable_parameter_alerts"}),
		}).
		Create(prefs).Error
}
