package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filesmanager/internal/db"
	"github.com/templui/filesmanager/internal/repository"
)

// Status reports backend liveness. Redis is the session store, the name is
// what API clients expect.
type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

type Stats struct {
	Users int `json:"users"`
	Files int `json:"files"`
}

type AppService struct {
	db             *sqlx.DB
	authService    *AuthService
	userRepository repository.UserRepository
	fileRepository repository.FileRepository
}

func NewAppService(database *sqlx.DB, authService *AuthService, userRepository repository.UserRepository, fileRepository repository.FileRepository) *AppService {
	return &AppService{
		db:             database,
		authService:    authService,
		userRepository: userRepository,
		fileRepository: fileRepository,
	}
}

func (s *AppService) Status(ctx context.Context) Status {
	return Status{
		Redis: s.authService.SessionStoreAlive(ctx),
		DB:    db.Alive(ctx, s.db),
	}
}

func (s *AppService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.userRepository.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	files, err := s.fileRepository.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	return &Stats{Users: users, Files: files}, nil
}
