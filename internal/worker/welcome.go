package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
)

type Mailer interface {
	SendWelcomeEmail(ctx context.Context, email string) error
}

type WelcomeWorker struct {
	userRepository repository.UserRepository
	mailer         Mailer
}

func NewWelcomeWorker(userRepository repository.UserRepository, mailer Mailer) *WelcomeWorker {
	return &WelcomeWorker{
		userRepository: userRepository,
		mailer:         mailer,
	}
}

func (w *WelcomeWorker) Handle(ctx context.Context, job *model.Job) error {
	var payload model.WelcomeJob
	err := queue.Decode(job, &payload)
	if err != nil {
		return err
	}
	return w.Process(ctx, payload)
}

func (w *WelcomeWorker) Process(ctx context.Context, job model.WelcomeJob) error {
	if err := checkID(job.UserID, ErrMissingUserID, ErrInvalidUserID); err != nil {
		return err
	}

	user, err := w.userRepository.ByID(ctx, job.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	slog.Info(fmt.Sprintf("Welcome %s!", user.Email), "user_id", user.ID)

	return w.mailer.SendWelcomeEmail(ctx, user.Email)
}
