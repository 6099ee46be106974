package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the JWT payload. RegisteredClaims.ID carries the session id.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userRepository    repository.UserRepository
	sessionRepository repository.SessionRepository
	cache             *UserCache
	jwtSecret         string
	sessionTTL        time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	sessionRepository repository.SessionRepository,
	cache *UserCache,
	jwtSecret string,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:    userRepository,
		sessionRepository: sessionRepository,
		cache:             cache,
		jwtSecret:         jwtSecret,
		sessionTTL:        sessionTTL,
	}
}

// Connect checks the credentials and opens a session. The returned token
// stays valid until the session expires or is disconnected.
func (s *AuthService) Connect(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", ErrUnauthorized
	}

	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return "", ErrUnauthorized
	}

	now := time.Now().UTC()
	session := &model.Session{
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	err = s.sessionRepository.Create(ctx, session)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.GenerateJWT(session)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	slog.Info("user connected", "user_id", user.ID, "session_id", session.ID)
	return token, nil
}

// Authenticate resolves a token to its user. Anything wrong with the token,
// its session or the user behind it is ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	session, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.user(ctx, session.UserID)
}

// Disconnect revokes the session behind token. The token must pass the same
// checks as Authenticate, including a user that still exists.
func (s *AuthService) Disconnect(ctx context.Context, token string) error {
	session, err := s.session(ctx, token)
	if err != nil {
		return err
	}
	if _, err := s.user(ctx, session.UserID); err != nil {
		return err
	}

	err = s.sessionRepository.Delete(ctx, session.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user disconnected", "user_id", session.UserID, "session_id", session.ID)
	return nil
}

func (s *AuthService) session(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.VerifyJWT(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	session, err := s.sessionRepository.Active(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.UserID != claims.UserID {
		return nil, ErrUnauthorized
	}
	if _, err := uuid.Parse(session.UserID); err != nil {
		return nil, ErrUnauthorized
	}

	return session, nil
}

func (s *AuthService) user(ctx context.Context, id string) (*model.User, error) {
	if user, ok := s.cache.Get(id); ok {
		return user, nil
	}

	user, err := s.userRepository.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	s.cache.Set(user)
	return user, nil
}

// CleanupExpired deletes sessions past their expiry
func (s *AuthService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessionRepository.DeleteExpired(ctx)
}

func (s *AuthService) SessionStoreAlive(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.sessionRepository.Ping(ctx) == nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(session *model.Session) (string, error) {
	claims := Claims{
		UserID: session.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) VerifyJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.ID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
