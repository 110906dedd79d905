package services

import (
	"context"
	"strings"

	"github.com/lbraga/studytrack/internal/errors"
	"github.com/lbraga/studytrack/internal/logger"
	"github.com/lbraga/studytrack/internal/models"
	"github.com/lbraga/studytrack/internal/repository"
)

// UserService handles the user directory. Authentication lives in an
// external layer; this service only knows about the records.
type UserService interface {
	Create(ctx context.Context, user models.User) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Create(ctx context.Context, user models.User) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating user: email=%s", user.Email)

	if user.Name == "" {
		return nil, errors.NewValidationError("name", "must not be empty")
	}
	if !strings.Contains(user.Email, "@") {
		return nil, errors.NewValidationError("email", "must be a valid address")
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		log.Error("failed to create user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("user created: id=%d", created.ID)
	return created, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx)

	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", id)
	}
	return user, nil
}
