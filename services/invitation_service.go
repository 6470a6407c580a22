package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
	"rsvp.link/pkg/queryparams"
	"rsvp.link/repositories"
)

// InvitationServiceError is the typed error family of this service.
type InvitationServiceError string

func (e InvitationServiceError) Error() string { return string(e) }

const (
	ErrInvitationNotFound       InvitationServiceError = "invitation not found"
	ErrInvitationCreationFailed InvitationServiceError = "invitation could not be created"
	ErrInvitationUpdateFailed   InvitationServiceError = "invitation could not be updated"
	ErrInvitationForbidden      InvitationServiceError = "not allowed to manage this invitation"
	ErrInvInvalidInput          InvitationServiceError = "invalid invitation input"
	ErrInvalidResponseStatus    InvitationServiceError = "response status must be ACCEPTED or DECLINED"
	ErrEventEnded               InvitationServiceError = "the event has already ended"
	ErrStyleNotAvailable        InvitationServiceError = "style not found or inactive"
)

// CreateInvitationInput is the staff-provided part of a new invitation.
type CreateInvitationInput struct {
	GuestName string `json:"guest_name" form:"guest_name"`
	Language  string `json:"language" form:"language"`
	StyleID   uint   `json:"style_id" form:"style_id"`
	SalesNote string `json:"sales_note" form:"sales_note"`
}

// UpdateInvitationInput carries the mutable staff-side fields.
type UpdateInvitationInput struct {
	GuestName string `json:"guest_name" form:"guest_name"`
	Language  string `json:"language" form:"language"`
	StyleID   uint   `json:"style_id" form:"style_id"`
	SalesNote string `json:"sales_note" form:"sales_note"`
}

// InvitationStats are per-status counts for a dashboard.
type InvitationStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Opened   int64 `json:"opened"`
	Accepted int64 `json:"accepted"`
	Declined int64 `json:"declined"`
}

// IInvitationService is the invitation lifecycle controller plus the
// staff-side CRUD around it.
type IInvitationService interface {
	Create(ctx context.Context, creatorUserID uint, input CreateInvitationInput) (*models.Invitation, error)
	GetByID(ctx context.Context, id uint, requestingUserID uint) (*models.Invitation, error)
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	VisitByToken(ctx context.Context, token, userAgent string) (*models.Invitation, error)
	Respond(ctx context.Context, token string, status models.InvitationStatus) (*models.Invitation, error)
	Reconsider(ctx context.Context, token string) (*models.Invitation, error)
	ListForUser(ctx context.Context, userID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	ListAll(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	Update(ctx context.Context, id uint, actingUserID uint, input UpdateInvitationInput) error
	Delete(ctx context.Context, id uint, actingUserID uint) error
	StatsForUser(ctx context.Context, userID uint) (*InvitationStats, error)
	GlobalStats(ctx context.Context) (*InvitationStats, error)
}

type InvitationService struct {
	repo         repositories.IInvitationRepository
	styleRepo    repositories.IStyleRepository
	userRepo     repositories.IUserRepository
	configRepo   repositories.ISystemConfigRepository
	notification INotificationService
	db           *gorm.DB
}

// NewInvitationService wires the lifecycle controller with its
// dependencies. The DB handle is used for multi-step transactions.
func NewInvitationService(
	db *gorm.DB,
	repo repositories.IInvitationRepository,
	styleRepo repositories.IStyleRepository,
	userRepo repositories.IUserRepository,
	configRepo repositories.ISystemConfigRepository,
	notification INotificationService,
) IInvitationService {
	return &InvitationService{
		repo:         repo,
		styleRepo:    styleRepo,
		userRepo:     userRepo,
		configRepo:   configRepo,
		notification: notification,
		db:           db,
	}
}

func validateCreateInput(input CreateInvitationInput) error {
	if strings.TrimSpace(input.GuestName) == "" {
		return fmt.Errorf("%w: guest name is required", ErrInvInvalidInput)
	}
	if input.StyleID == 0 {
		return fmt.Errorf("%w: style is required", ErrInvInvalidInput)
	}
	switch input.Language {
	case "zh", "en":
	default:
		return fmt.Errorf("%w: unsupported language %q", ErrInvInvalidInput, input.Language)
	}
	return nil
}

// Create persists a new PENDING invitation owned by the creator. The
// token and discount code are generated by the model hook; a duplicate
// token collision is retried once before giving up.
func (s *InvitationService) Create(ctx context.Context, creatorUserID uint, input CreateInvitationInput) (*models.Invitation, error) {
	if creatorUserID == 0 {
		return nil, fmt.Errorf("%w: missing creator", ErrInvInvalidInput)
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	style, err := s.styleRepo.FindByID(ctx, input.StyleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStyleNotAvailable
		}
		configslog.Log.Error("style lookup failed", zap.Uint("style_id", input.StyleID), zap.Error(err))
		return nil, err
	}
	if !style.IsActive {
		return nil, ErrStyleNotAvailable
	}

	invitation := &models.Invitation{
		GuestName: strings.TrimSpace(input.GuestName),
		Language:  input.Language,
		StyleID:   style.ID,
		UserID:    creatorUserID,
		Status:    models.StatusPending,
		SalesNote: input.SalesNote,
	}

	ctxWithUser := models.ContextWithUserID(ctx, creatorUserID)
	for attempt := 0; ; attempt++ {
		err = s.repo.Create(ctxWithUser, invitation)
		if err == nil {
			break
		}
		if attempt == 0 && isDuplicateKey(err) {
			invitation.UniqueToken = ""
			continue
		}
		configslog.Log.Error("invitation create failed",
			zap.Uint("creator", creatorUserID), zap.Error(err))
		return nil, ErrInvitationCreationFailed
	}
	invitation.Style = *style

	configslog.SLog.Infof("invitation created: id=%d guest=%q token=%s (by user %d)",
		invitation.ID, invitation.GuestName, invitation.UniqueToken, creatorUserID)
	return invitation, nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value violates unique constraint") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID returns an invitation for staff, enforcing ownership unless
// the requester is an admin.
func (s *InvitationService) GetByID(ctx context.Context, id uint, requestingUserID uint) (*models.Invitation, error) {
	invitation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	requester, err := s.userRepo.FindByID(ctx, requestingUserID)
	if err != nil {
		return nil, ErrInvitationForbidden
	}
	if !requester.IsAdmin() && invitation.UserID != requestingUserID {
		return nil, ErrInvitationForbidden
	}
	return invitation, nil
}

// GetByToken is the read-only capability lookup (QR endpoint, previews).
func (s *InvitationService) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	invitation, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return invitation, nil
}

// VisitByToken records one guest page view. The visit counter always
// increments; the PENDING to OPENED transition happens at most once and
// stamps OpenedAt. The last guest agent string is kept for audit.
func (s *InvitationService) VisitByToken(ctx context.Context, token, userAgent string) (*models.Invitation, error) {
	var visited *models.Invitation
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		err := tx.WithContext(ctx).Preload("Style").Preload("User").
			Where("unique_token = ?", token).First(&invitation).Error
		if err != nil {
			return translateLookup(err)
		}

		invitation.VisitCount++
		if invitation.Status == models.StatusPending {
			now := time.Now().UTC()
			invitation.Status = models.StatusOpened
			invitation.OpenedAt = &now
		}
		if userAgent != "" {
			invitation.UserAgent = truncate(userAgent, 500)
		}
		if err := tx.Omit(clause.Associations).Save(&invitation).Error; err != nil {
			return err
		}
		visited = &invitation
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrInvitationNotFound) {
			return nil, ErrInvitationNotFound
		}
		configslog.Log.Error("visit tracking failed", zap.String("token", token), zap.Error(txErr))
		return nil, txErr
	}
	return visited, nil
}

// Respond records the guest's decision and stamps the matching
// timestamp, leaving the opposite one untouched. Re-responding is
// allowed; the workflow is deliberately permissive. The webhook
// notification is awaited but never fails the response.
func (s *InvitationService) Respond(ctx context.Context, token string, status models.InvitationStatus) (*models.Invitation, error) {
	if status != models.StatusAccepted && status != models.StatusDeclined {
		return nil, ErrInvalidResponseStatus
	}

	if config, err := s.configRepo.Get(ctx); err == nil && config.EventEndTime != nil {
		if time.Now().UTC().After(*config.EventEndTime) {
			return nil, ErrEventEnded
		}
	}

	var responded *models.Invitation
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		err := tx.WithContext(ctx).Preload("Style").Preload("User").
			Where("unique_token = ?", token).First(&invitation).Error
		if err != nil {
			return translateLookup(err)
		}

		now := time.Now().UTC()
		invitation.Status = status
		if status == models.StatusAccepted {
			invitation.AcceptedAt = &now
		} else {
			invitation.DeclinedAt = &now
		}
		if err := tx.Omit(clause.Associations).Save(&invitation).Error; err != nil {
			return err
		}
		responded = &invitation
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrInvitationNotFound) {
			return nil, ErrInvitationNotFound
		}
		configslog.Log.Error("respond failed", zap.String("token", token), zap.Error(txErr))
		return nil, ErrInvitationUpdateFailed
	}

	// Best effort: failure is logged by the dispatcher, not surfaced.
	if err := s.notification.NotifyResponse(ctx, responded, status); err != nil {
		configslog.SLog.Warnf("notification for invitation %d not delivered: %v", responded.ID, err)
	}

	configslog.SLog.Infof("invitation %d responded: %s (guest %q)", responded.ID, status, responded.GuestName)
	return responded, nil
}

// Reconsider moves an answered invitation back to OPENED so the guest
// can change their mind. Response timestamps are kept for audit.
func (s *InvitationService) Reconsider(ctx context.Context, token string) (*models.Invitation, error) {
	var reconsidered *models.Invitation
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		err := tx.WithContext(ctx).Preload("Style").Preload("User").
			Where("unique_token = ?", token).First(&invitation).Error
		if err != nil {
			return translateLookup(err)
		}
		if invitation.Status == models.StatusAccepted || invitation.Status == models.StatusDeclined {
			invitation.Status = models.StatusOpened
			if err := repositories.NewInvitationRepositoryTx(tx).Save(ctx, &invitation); err != nil {
				return err
			}
		}
		reconsidered = &invitation
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrInvitationNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, ErrInvitationUpdateFailed
	}
	return reconsidered, nil
}

func (s *InvitationService) ListForUser(ctx context.Context, userID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrInvInvalidInput)
	}
	params.Validate()
	invitations, total, err := s.repo.FindByUserPaginated(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	return paginated(invitations, total, params), nil
}

func (s *InvitationService) ListAll(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	invitations, total, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return paginated(invitations, total, params), nil
}

func paginated(data interface{}, total int64, params queryparams.ListParams) *queryparams.PaginatedResult {
	return &queryparams.PaginatedResult{
		Data: data,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			TotalItems:  total,
			TotalPages:  queryparams.CalculateTotalPages(total, params.PerPage),
		},
	}
}

// Update edits the staff-side fields, enforcing ownership (admin override).
func (s *InvitationService) Update(ctx context.Context, id uint, actingUserID uint, input UpdateInvitationInput) error {
	if id == 0 || actingUserID == 0 {
		return fmt.Errorf("%w: missing id or acting user", ErrInvInvalidInput)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Carry the tx so the shared repositories join it.
		txCtx := repositories.ContextWithTx(models.ContextWithUserID(ctx, actingUserID), tx)

		var invitation models.Invitation
		err := tx.WithContext(txCtx).First(&invitation, id).Error
		if err != nil {
			return translateLookup(err)
		}

		requester, err := s.userRepo.FindByID(txCtx, actingUserID)
		if err != nil {
			return ErrInvitationForbidden
		}
		if !requester.IsAdmin() && invitation.UserID != actingUserID {
			return ErrInvitationForbidden
		}

		if name := strings.TrimSpace(input.GuestName); name != "" {
			invitation.GuestName = name
		}
		if input.Language == "zh" || input.Language == "en" {
			invitation.Language = input.Language
		}
		if input.StyleID != 0 && input.StyleID != invitation.StyleID {
			style, styleErr := s.styleRepo.FindByID(txCtx, input.StyleID)
			if styleErr != nil {
				if errors.Is(styleErr, repositories.ErrNotFound) {
					return ErrStyleNotAvailable
				}
				return styleErr
			}
			if !style.IsActive {
				return ErrStyleNotAvailable
			}
			invitation.StyleID = style.ID
		}
		invitation.SalesNote = input.SalesNote

		if err := tx.WithContext(txCtx).Omit(clause.Associations).Save(&invitation).Error; err != nil {
			configslog.Log.Error("invitation update failed", zap.Uint("id", id), zap.Error(err))
			return ErrInvitationUpdateFailed
		}
		return nil
	})
}

// Delete soft-deletes an invitation, enforcing ownership (admin override).
func (s *InvitationService) Delete(ctx context.Context, id uint, actingUserID uint) error {
	invitation, err := s.GetByID(ctx, id, actingUserID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, invitation, actingUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvitationNotFound
		}
		return err
	}
	configslog.SLog.Infof("invitation %d deleted (by user %d)", id, actingUserID)
	return nil
}

// StatsForUser counts the owner's invitations per status.
func (s *InvitationService) StatsForUser(ctx context.Context, userID uint) (*InvitationStats, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrInvInvalidInput)
	}
	return s.stats(ctx, userID)
}

// GlobalStats counts all invitations per status (admin view).
func (s *InvitationService) GlobalStats(ctx context.Context) (*InvitationStats, error) {
	return s.stats(ctx, 0)
}

func (s *InvitationService) stats(ctx context.Context, userID uint) (*InvitationStats, error) {
	stats := &InvitationStats{}
	for _, pair := range []struct {
		status models.InvitationStatus
		target *int64
	}{
		{models.StatusPending, &stats.Pending},
		{models.StatusOpened, &stats.Opened},
		{models.StatusAccepted, &stats.Accepted},
		{models.StatusDeclined, &stats.Declined},
	} {
		count, err := s.repo.CountByStatus(ctx, userID, pair.status)
		if err != nil {
			return nil, err
		}
		*pair.target = count
	}

	var total int64
	var err error
	if userID == 0 {
		total, err = s.repo.CountAll(ctx)
	} else {
		total, err = s.repo.CountByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	stats.Total = total
	return stats, nil
}

func translateLookup(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvitationNotFound
	}
	return err
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

var _ IInvitationService = (*InvitationService)(nil)
