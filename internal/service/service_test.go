package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filesmanager/internal/dbtest"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/storage"
)

type enqueued struct {
	queue   string
	payload any
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	jobs []enqueued
	err  error
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, queue string, payload any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.jobs = append(f.jobs, enqueued{queue: queue, payload: payload})
	return "job", nil
}

type services struct {
	db       *sqlx.DB
	auth     *AuthService
	users    *UserService
	files    *FileService
	app      *AppService
	enqueuer *fakeEnqueuer
	sessions repository.SessionRepository
	userRepo repository.UserRepository
	fileRepo repository.FileRepository
	storage  storage.Storage
	root     string
}

func newServices(t *testing.T) *services {
	t.Helper()
	database := dbtest.New(t)

	root := t.TempDir()
	local, err := storage.NewLocalStorage(root)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	fileRepo := repository.NewFileRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	enq := &fakeEnqueuer{}

	auth := NewAuthService(userRepo, sessionRepo, NewUserCache(1<<20, time.Minute), "test-secret", time.Hour)
	return &services{
		db:       database,
		auth:     auth,
		users:    NewUserService(userRepo, auth, enq),
		files:    NewFileService(fileRepo, storage.NewContentStore(local), enq),
		app:      NewAppService(database, auth, userRepo, fileRepo),
		enqueuer: enq,
		sessions: sessionRepo,
		userRepo: userRepo,
		fileRepo: fileRepo,
		storage:  local,
		root:     root,
	}
}
