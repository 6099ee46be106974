package cmd

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/templui/filesmanager/internal/config"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
)

func CleanupCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired sessions and finished jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, database *sqlx.DB) error {
				ctx := cmd.Context()

				sessions, err := repository.NewSessionRepository(database).DeleteExpired(ctx)
				if err != nil {
					return fmt.Errorf("failed to delete expired sessions: %w", err)
				}

				jobs := queue.New(repository.NewJobRepository(database), queue.Options{})
				finished, err := jobs.CleanupFinished(ctx, olderThan)
				if err != nil {
					return fmt.Errorf("failed to delete finished jobs: %w", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired sessions, %d finished jobs\n", sessions, finished)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "keep finished jobs younger than this")
	return cmd
}
