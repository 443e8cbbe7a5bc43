package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehouse/pkg/logger"
	"warehouse/pkg/rabbitmq"

	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print product change events published by serve",
		Long: `Consume the change events that serve publishes to RABBITMQ_QUEUE and
print one line per event until interrupted. Requires RABBITMQ_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if cfg.RabbitMQURL == "" {
				return failf("cannot watch: RABBITMQ_URL is not set")
			}

			log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
			if err != nil {
				return failf("failed to build logger: %w", err)
			}
			defer log.Sync()

			mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
			if err != nil {
				return failf("failed to initialize RabbitMQ client: %w", err)
			}
			defer mqClient.Close()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			err = mqClient.ConsumeChanges(func(event rabbitmq.ChangeEvent) error {
				return out.Success(event, formatChangeEvent(event))
			})
			if err != nil {
				return failf("failed to start consumer: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
}

func formatChangeEvent(event rabbitmq.ChangeEvent) string {
	return fmt.Sprintf("%s  %-6s  %-14s  rows=%d",
		event.Timestamp.Format(time.RFC3339), event.Op, event.Resource, event.Rows)
}
