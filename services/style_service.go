package services

import (
	"context"
	"errors"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
	"rsvp.link/repositories"
)

// StyleServiceError is the typed error family of this service.
type StyleServiceError string

func (e StyleServiceError) Error() string { return string(e) }

const (
	ErrStyleNotFound StyleServiceError = "style not found"
)

// StyleUsage pairs a style with the number of invitations referencing it.
type StyleUsage struct {
	models.Style
	InvitationCount int64 `json:"invitation_count"`
}

// IStyleService manages the visual template registry. Styles are seeded
// reference data: admins toggle them, nobody deletes them.
type IStyleService interface {
	GetByID(ctx context.Context, id uint) (*models.Style, error)
	ListWithUsage(ctx context.Context) ([]StyleUsage, error)
	ListActive(ctx context.Context) ([]models.Style, error)
	SetActive(ctx context.Context, adminUserID uint, id uint, active bool) error
}

type StyleService struct {
	repo repositories.IStyleRepository
}

func NewStyleService(repo repositories.IStyleRepository) IStyleService {
	return &StyleService{repo: repo}
}

func (s *StyleService) GetByID(ctx context.Context, id uint) (*models.Style, error) {
	style, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStyleNotFound
		}
		return nil, err
	}
	return style, nil
}

func (s *StyleService) ListActive(ctx context.Context) ([]models.Style, error) {
	return s.repo.FindActive(ctx)
}

// ListWithUsage returns every style with its invitation reference count,
// for the admin style screen.
func (s *StyleService) ListWithUsage(ctx context.Context) ([]StyleUsage, error) {
	styles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	usage := make([]StyleUsage, 0, len(styles))
	for _, style := range styles {
		count, err := s.repo.CountInvitationsUsing(ctx, style.ID)
		if err != nil {
			return nil, err
		}
		usage = append(usage, StyleUsage{Style: style, InvitationCount: count})
	}
	return usage, nil
}

// SetActive toggles a style. Deactivating a referenced style is allowed
// (existing invitations keep rendering it); only new invitations are
// restricted to active styles.
func (s *StyleService) SetActive(ctx context.Context, adminUserID uint, id uint, active bool) error {
	err := s.repo.SetActive(models.ContextWithUserID(ctx, adminUserID), id, active)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrStyleNotFound
	}
	if err == nil {
		configslog.SLog.Infof("style %d active=%t (by admin %d)", id, active, adminUserID)
	}
	return err
}

var _ IStyleService = (*StyleService)(nil)
