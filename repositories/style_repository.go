package repositories

import (
	"context"

	"gorm.io/gorm"

	"rsvp.link/models"
)

// IStyleRepository covers the static style reference data.
type IStyleRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Style, error)
	FindAll(ctx context.Context) ([]models.Style, error)
	FindActive(ctx context.Context) ([]models.Style, error)
	SetActive(ctx context.Context, id uint, active bool) error
	CountInvitationsUsing(ctx context.Context, id uint) (int64, error)
}

type StyleRepository struct {
	db *gorm.DB
}

func NewStyleRepository(db *gorm.DB) IStyleRepository {
	return &StyleRepository{db: db}
}

func (r *StyleRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *StyleRepository) FindByID(ctx context.Context, id uint) (*models.Style, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var style models.Style
	if err := r.getDB(ctx).First(&style, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &style, nil
}

func (r *StyleRepository) FindAll(ctx context.Context) ([]models.Style, error) {
	var styles []models.Style
	err := r.getDB(ctx).Order("id asc").Find(&styles).Error
	return styles, err
}

func (r *StyleRepository) FindActive(ctx context.Context) ([]models.Style, error) {
	var styles []models.Style
	err := r.getDB(ctx).Where("is_active = ?", true).Order("id asc").Find(&styles).Error
	return styles, err
}

func (r *StyleRepository) SetActive(ctx context.Context, id uint, active bool) error {
	if id == 0 {
		return ErrNotFound
	}
	result := r.getDB(ctx).Model(&models.Style{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StyleRepository) CountInvitationsUsing(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Invitation{}).Where("style_id = ?", id).Count(&count).Error
	return count, err
}

var _ IStyleRepository = (*StyleRepository)(nil)
