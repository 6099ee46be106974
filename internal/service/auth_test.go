package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
)

func TestAuthService_ConnectAuthenticateDisconnect(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	user, err := s.users.Register(ctx, "bob@dylan.com", "toto1234!")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := s.auth.Connect(ctx, "bob@dylan.com", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := s.auth.Connect(ctx, "nobody@dylan.com", "toto1234!"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown email: %v", err)
	}

	token, err := s.auth.Connect(ctx, " Bob@Dylan.com ", "toto1234!")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	got, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID || got.Email != "bob@dylan.com" {
		t.Errorf("user = %+v", got)
	}

	// second lookup is served from the cache
	if _, ok := s.auth.cache.Get(user.ID); !ok {
		t.Error("user not cached after authentication")
	}
	if cached, _ := s.auth.cache.Get(user.ID); cached.PasswordHash != "" {
		t.Error("password hash stored in cache")
	}

	if err := s.auth.Disconnect(ctx, token); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if _, err := s.auth.Authenticate(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("token after disconnect: %v", err)
	}
	if err := s.auth.Disconnect(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("second disconnect: %v", err)
	}
}

// goneUsers behaves as if every user had been removed
type goneUsers struct {
	repository.UserRepository
}

func (goneUsers) ByID(ctx context.Context, id string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

func TestAuthService_DisconnectRequiresUser(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	register(t, s, "bob@dylan.com")
	token, err := s.auth.Connect(ctx, "bob@dylan.com", "toto1234!")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	claims, err := s.auth.VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	auth := NewAuthService(goneUsers{s.userRepo}, s.sessions, nil, "test-secret", time.Hour)
	if err := auth.Disconnect(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("disconnect without user: err = %v, want ErrUnauthorized", err)
	}
	if _, err := s.sessions.Active(ctx, claims.ID); err != nil {
		t.Errorf("session should survive a rejected disconnect: %v", err)
	}
}

func TestAuthService_RejectsBadTokens(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	user, _ := s.users.Register(ctx, "bob@dylan.com", "toto1234!")

	forged, _ := NewAuthService(nil, nil, nil, "other-secret", time.Hour).GenerateJWT(&model.Session{
		ID: "sid", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	})

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: user.ID})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, token := range map[string]string{
		"empty":    "",
		"garbage":  "not-a-token",
		"forged":   forged,
		"unsigned": unsigned,
	} {
		if _, err := s.auth.Authenticate(ctx, token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("%s: err = %v, want ErrUnauthorized", name, err)
		}
	}
}

func TestAuthService_ExpiredSession(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	user, _ := s.users.Register(ctx, "bob@dylan.com", "toto1234!")

	// signature still valid, session row already expired
	session := &model.Session{UserID: user.ID, ExpiresAt: time.Now().UTC().Add(-time.Minute), CreatedAt: time.Now().UTC().Add(-time.Hour)}
	if err := s.sessions.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))

	if _, err := s.auth.Authenticate(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expired session: %v", err)
	}

	n, err := s.auth.CleanupExpired(ctx)
	if err != nil || n != 1 {
		t.Errorf("cleanup = %d, %v; want 1", n, err)
	}
}

func TestUserCache_NilIsDisabled(t *testing.T) {
	var c *UserCache
	c.Set(&model.User{ID: "u"})
	if _, ok := c.Get("u"); ok {
		t.Error("nil cache returned a user")
	}
}
