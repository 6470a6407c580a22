package repositories

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
	"rsvp.link/pkg/queryparams"
)

// IInvitationRepository covers invitation persistence: token lookups for
// the guest flow, owner-scoped listing for the dashboard, status counts.
type IInvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	FindByID(ctx context.Context, id uint) (*models.Invitation, error)
	FindByToken(ctx context.Context, token string) (*models.Invitation, error)
	FindByUserPaginated(ctx context.Context, userID uint, params queryparams.ListParams) ([]models.Invitation, int64, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Invitation, int64, error)
	Save(ctx context.Context, invitation *models.Invitation) error
	Delete(ctx context.Context, invitation *models.Invitation, deletedByUserID uint) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
	CountByStatus(ctx context.Context, userID uint, status models.InvitationStatus) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type InvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository builds a repository around the injected DB handle.
func NewInvitationRepository(db *gorm.DB) IInvitationRepository {
	return &InvitationRepository{db: db}
}

// NewInvitationRepositoryTx binds the repository to an open transaction.
func NewInvitationRepositoryTx(tx *gorm.DB) IInvitationRepository {
	return &InvitationRepository{db: tx}
}

func (r *InvitationRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *InvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	if invitation == nil {
		return errors.New("invitation must not be nil")
	}
	return r.getDB(ctx).Create(invitation).Error
}

func (r *InvitationRepository) FindByID(ctx context.Context, id uint) (*models.Invitation, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var invitation models.Invitation
	err := r.getDB(ctx).Preload("Style").Preload("User").First(&invitation, id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &invitation, nil
}

// FindByToken resolves the guest capability. Soft-deleted rows are
// excluded by GORM's default scope, so a revoked invitation is simply
// not found.
func (r *InvitationRepository) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var invitation models.Invitation
	err := r.getDB(ctx).Preload("Style").Preload("User").
		Where("unique_token = ?", token).First(&invitation).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &invitation, nil
}

func (r *InvitationRepository) FindByUserPaginated(ctx context.Context, userID uint, params queryparams.ListParams) ([]models.Invitation, int64, error) {
	db := r.getDB(ctx).Model(&models.Invitation{}).Where("user_id = ?", userID)
	return r.paginate(db, params)
}

func (r *InvitationRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Invitation, int64, error) {
	return r.paginate(r.getDB(ctx).Model(&models.Invitation{}), params)
}

func (r *InvitationRepository) paginate(db *gorm.DB, params queryparams.ListParams) ([]models.Invitation, int64, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		configslog.Log.Error("InvitationRepository: count failed", zap.Error(err))
		return nil, 0, err
	}
	var invitations []models.Invitation
	err := db.Preload("Style").
		Order(params.SortBy + " " + params.OrderBy).
		Offset(params.Offset()).Limit(params.PerPage).
		Find(&invitations).Error
	if err != nil {
		configslog.Log.Error("InvitationRepository: page query failed", zap.Error(err))
		return nil, 0, err
	}
	return invitations, total, nil
}

// Save persists all current field values of a loaded invitation.
func (r *InvitationRepository) Save(ctx context.Context, invitation *models.Invitation) error {
	if invitation == nil || invitation.ID == 0 {
		return ErrNotFound
	}
	return r.getDB(ctx).Omit(clause.Associations).Save(invitation).Error
}

// Delete soft-deletes the invitation and stamps DeletedBy.
func (r *InvitationRepository) Delete(ctx context.Context, invitation *models.Invitation, deletedByUserID uint) error {
	if invitation == nil || invitation.ID == 0 {
		return ErrNotFound
	}
	db := r.getDB(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		if deletedByUserID != 0 {
			if err := tx.Model(invitation).UpdateColumn("deleted_by", &deletedByUserID).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(invitation)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *InvitationRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Invitation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountByStatus counts invitations in a status; userID 0 counts globally.
func (r *InvitationRepository) CountByStatus(ctx context.Context, userID uint, status models.InvitationStatus) (int64, error) {
	db := r.getDB(ctx).Model(&models.Invitation{}).Where("status = ?", status)
	if userID != 0 {
		db = db.Where("user_id = ?", userID)
	}
	var count int64
	err := db.Count(&count).Error
	return count, err
}

func (r *InvitationRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Invitation{}).Count(&count).Error
	return count, err
}

var _ IInvitationRepository = (*InvitationRepository)(nil)
