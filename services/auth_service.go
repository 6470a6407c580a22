package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
	"rsvp.link/repositories"
)

// AuthServiceError is the typed error family of this service.
type AuthServiceError string

func (e AuthServiceError) Error() string { return string(e) }

const (
	ErrInvalidCredentials AuthServiceError = "invalid username or password"
	ErrUserInactive       AuthServiceError = "account is deactivated"
)

// IAuthService verifies staff credentials for login.
type IAuthService interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

type AuthService struct {
	userRepo repositories.IUserRepository
}

func NewAuthService(userRepo repositories.IUserRepository) IAuthService {
	return &AuthService{userRepo: userRepo}
}

// Authenticate checks the bcrypt hash and the active flag. Unknown user
// and wrong password collapse into the same error so login probing
// leaks nothing.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		configslog.Log.Error("login lookup failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

var _ IAuthService = (*AuthService)(nil)
