package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filesmanager/internal/config"
	"github.com/templui/filesmanager/internal/db"
	"github.com/templui/filesmanager/internal/imaging"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/service"
	"github.com/templui/filesmanager/internal/storage"
	"github.com/templui/filesmanager/internal/worker"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Storage         storage.Storage
	Queue           *queue.Queue
	AuthService     *service.AuthService
	UserService     *service.UserService
	FileService     *service.FileService
	AppService      *service.AppService
	EmailService    *service.EmailService
	ThumbnailWorker *worker.ThumbnailWorker
	WelcomeWorker   *worker.WelcomeWorker
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}
	content := storage.NewContentStore(fileStorage)

	// Repositories
	userRepository := repository.NewUserRepository(database)
	fileRepository := repository.NewFileRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	jobRepository := repository.NewJobRepository(database)

	jobs := queue.New(jobRepository, queue.Options{
		MaxAttempts:       cfg.QueueMaxAttempts,
		VisibilityTimeout: cfg.QueueVisibilityTimeout,
		RetryBase:         cfg.QueueRetryBase,
		RetryMax:          cfg.QueueRetryMax,
	})

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		sessionRepository,
		service.NewUserCache(cfg.UserCacheSize, cfg.UserCacheTTL),
		cfg.JWTSecret,
		cfg.SessionTTL,
	)
	userService := service.NewUserService(userRepository, authService, jobs)
	fileService := service.NewFileService(fileRepository, content, jobs)
	appService := service.NewAppService(database, authService, userRepository, fileRepository)

	// Workers
	thumbnailWorker := worker.NewThumbnailWorker(fileRepository, content, imaging.NewThumbnailer(cfg.ThumbnailMaxPixels))
	welcomeWorker := worker.NewWelcomeWorker(userRepository, emailService)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Storage:         fileStorage,
		Queue:           jobs,
		AuthService:     authService,
		UserService:     userService,
		FileService:     fileService,
		AppService:      appService,
		EmailService:    emailService,
		ThumbnailWorker: thumbnailWorker,
		WelcomeWorker:   welcomeWorker,
	}, nil
}

// Consumers returns one queue consumer per background job type
func (a *App) Consumers() []*queue.Consumer {
	return []*queue.Consumer{
		queue.NewConsumer(a.Queue, model.QueueThumbnails, a.ThumbnailWorker.Handle, a.Cfg.QueuePollInterval),
		queue.NewConsumer(a.Queue, model.QueueWelcome, a.WelcomeWorker.Handle, a.Cfg.QueuePollInterval),
	}
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
