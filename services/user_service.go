package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
	"rsvp.link/pkg/queryparams"
	"rsvp.link/repositories"
)

// UserServiceError is the typed error family of this service.
type UserServiceError string

func (e UserServiceError) Error() string { return string(e) }

const (
	ErrUserNotFound       UserServiceError = "user not found"
	ErrUsernameTaken      UserServiceError = "username already exists"
	ErrUserInvalidInput   UserServiceError = "invalid user input"
	ErrPasswordTooShort   UserServiceError = "password must be at least 8 characters"
	ErrUserCreationFailed UserServiceError = "user could not be created"
	ErrLastAdmin          UserServiceError = "cannot deactivate the last active admin"
)

// CreateUserInput is the admin-provided data for a new staff account.
type CreateUserInput struct {
	Username string          `json:"username" form:"username"`
	Password string          `json:"password" form:"password"`
	Role     models.UserRole `json:"role" form:"role"`
	Name     string          `json:"name" form:"name"`
	WechatID string          `json:"wechat_id" form:"wechat_id"`
}

// IUserService covers admin staff management. Accounts are deactivated,
// never hard-deleted.
type IUserService interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, adminUserID uint, input CreateUserInput) (*models.User, error)
	List(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	SetActive(ctx context.Context, adminUserID uint, id uint, active bool) error
	ResetPassword(ctx context.Context, adminUserID uint, id uint, newPassword string) error
}

type UserService struct {
	repo repositories.IUserRepository
}

func NewUserService(repo repositories.IUserRepository) IUserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, adminUserID uint, input CreateUserInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrUserInvalidInput)
	}
	if len(input.Password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if input.Role != models.RoleAdmin && input.Role != models.RoleSales {
		return nil, fmt.Errorf("%w: unknown role %q", ErrUserInvalidInput, input.Role)
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrUserCreationFailed
	}

	user := &models.User{
		Username: input.Username,
		Password: string(hash),
		Role:     input.Role,
		Name:     input.Name,
		WechatID: input.WechatID,
		IsActive: true,
	}
	if err := s.repo.Create(models.ContextWithUserID(ctx, adminUserID), user); err != nil {
		configslog.SLog.Errorf("user create failed for %q: %v", input.Username, err)
		return nil, ErrUserCreationFailed
	}
	configslog.SLog.Infof("user created: %s (role %s, by admin %d)", user.Username, user.Role, adminUserID)
	return user, nil
}

func (s *UserService) List(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	users, total, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return paginated(users, total, params), nil
}

func (s *UserService) SetActive(ctx context.Context, adminUserID uint, id uint, active bool) error {
	if !active {
		target, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		// The system must keep at least one active admin account.
		if target.IsAdmin() && target.IsActive {
			admins, err := s.repo.CountByRole(ctx, models.RoleAdmin)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
	}

	err := s.repo.Update(models.ContextWithUserID(ctx, adminUserID), id, map[string]interface{}{"is_active": active})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	if err == nil {
		configslog.SLog.Infof("user %d active=%t (by admin %d)", id, active, adminUserID)
	}
	return err
}

func (s *UserService) ResetPassword(ctx context.Context, adminUserID uint, id uint, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	err = s.repo.Update(models.ContextWithUserID(ctx, adminUserID), id, map[string]interface{}{"password": string(hash)})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	if err == nil {
		configslog.SLog.Infof("password reset for user %d (by admin %d)", id, adminUserID)
	}
	return err
}

var _ IUserService = (*UserService)(nil)
