package repositories

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
	"rsvp.link/pkg/queryparams"
)

// IUserRepository covers staff account lookups and admin mutations.
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.User, int64, error)
	Update(ctx context.Context, id uint, data map[string]interface{}) error
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
}

type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a repository around the injected DB handle.
func NewUserRepository(db *gorm.DB) IUserRepository {
	return &UserRepository{db: db}
}

// NewUserRepositoryTx binds the repository to an open transaction.
func NewUserRepositoryTx(tx *gorm.DB) IUserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("user must not be nil")
	}
	return r.getDB(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var user models.User
	if err := r.getDB(ctx).First(&user, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, ErrNotFound
	}
	var user models.User
	if err := r.getDB(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *UserRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.User, int64, error) {
	db := r.getDB(ctx)
	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		configslog.Log.Error("UserRepository.FindAllPaginated: count failed", zap.Error(err))
		return nil, 0, err
	}
	var users []models.User
	err := db.Order(params.SortBy + " " + params.OrderBy).
		Offset(params.Offset()).Limit(params.PerPage).
		Find(&users).Error
	if err != nil {
		configslog.Log.Error("UserRepository.FindAllPaginated: query failed", zap.Error(err))
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Update(ctx context.Context, id uint, data map[string]interface{}) error {
	if id == 0 {
		return ErrNotFound
	}
	if len(data) == 0 {
		return errors.New("update data must not be empty")
	}
	result := r.getDB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(data)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := r.getDB(ctx).Model(&models.User{}).Where("id = ?", id).Count(&exists).Error; err == nil && exists == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// CountByRole counts active accounts holding the role.
func (r *UserRepository) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = ?", role, true).Count(&count).Error
	return count, err
}

var _ IUserRepository = (*UserRepository)(nil)
