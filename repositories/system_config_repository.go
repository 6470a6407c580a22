package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rsvp.link/models"
)

// ISystemConfigRepository manages the singleton configuration row.
type ISystemConfigRepository interface {
	Get(ctx context.Context) (*models.SystemConfig, error)
	Upsert(ctx context.Context, config *models.SystemConfig) error
}

type SystemConfigRepository struct {
	db *gorm.DB
}

func NewSystemConfigRepository(db *gorm.DB) ISystemConfigRepository {
	return &SystemConfigRepository{db: db}
}

func (r *SystemConfigRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *SystemConfigRepository) Get(ctx context.Context) (*models.SystemConfig, error) {
	var config models.SystemConfig
	err := r.getDB(ctx).Where("id = ?", models.SystemConfigID).First(&config).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &config, nil
}

// Upsert writes the single row, creating it on first save.
func (r *SystemConfigRepository) Upsert(ctx context.Context, config *models.SystemConfig) error {
	if config == nil {
		return ErrNotFound
	}
	config.ID = models.SystemConfigID
	return r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(config).Error
}

var _ ISystemConfigRepository = (*SystemConfigRepository)(nil)
