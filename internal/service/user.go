package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/validation"
)

// Enqueuer hands work to the background workers
type Enqueuer interface {
	Enqueue(ctx context.Context, queue string, payload any) (string, error)
}

type UserService struct {
	userRepository repository.UserRepository
	authService    *AuthService
	enqueuer       Enqueuer
}

func NewUserService(userRepository repository.UserRepository, authService *AuthService, enqueuer Enqueuer) *UserService {
	return &UserService{
		userRepository: userRepository,
		authService:    authService,
		enqueuer:       enqueuer,
	}
}

// Register creates an account and schedules the welcome notification
func (s *UserService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, invalid("Missing email")
	}
	if password == "" {
		return nil, invalid("Missing password")
	}

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, invalid("Invalid email")
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, invalid(err.Error())
	}

	_, err = s.userRepository.ByEmail(ctx, email)
	if err == nil {
		return nil, invalid("Already exist")
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	err = s.userRepository.Create(ctx, user)
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, invalid("Already exist")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	_, err = s.enqueuer.Enqueue(ctx, model.QueueWelcome, model.WelcomeJob{UserID: user.ID})
	if err != nil {
		slog.Error("failed to enqueue welcome job", "error", err, "user_id", user.ID)
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return user, nil
}
