package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehouse/internal/handlers"
	"warehouse/internal/models"
	"warehouse/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string // overrides APP_PORT when set
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the product API over HTTP",
		Long: `Serve the product API under /api/v1.

When RABBITMQ_URL is set every product change is also published to
RABBITMQ_QUEUE as a JSON change event.

Example:
  warehouse serve --db ./warehouse.db --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from APP_PORT)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	e, err := openEnv(opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := e.cfg.AppPort
	if opts.Addr != "" {
		addr = opts.Addr
	}

	if e.cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: e.cfg.RabbitMQURL, Queue: e.cfg.RabbitMQQueue}, e.logger)
		if err != nil {
			return failf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()

		// Collection observers see every item change too.
		unsubscribe := e.service.Subscribe(models.CollectionResource(), mqClient.Forward())
		defer unsubscribe()
	}

	app := handlers.NewApp(e.service, e.logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()
	e.logger.Info("Starting server", zap.String("addr", addr), zap.String("db", e.cfg.DBPath))

	select {
	case err := <-listenErr:
		return failf("server failed: %w", err)
	case <-ctx.Done():
	}

	e.logger.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		e.logger.Error("Error during Fiber shutdown", zap.Error(err))
	}
	e.logger.Info("Server gracefully stopped")
	return nil
}
