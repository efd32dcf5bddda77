package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vidaview/internal/app/schedule"
	"vidaview/internal/infra/broker/kafka"
	"vidaview/internal/infra/config"
	mongostore "vidaview/internal/infra/db/mongo"
	"vidaview/internal/infra/db/postgres"
	ginserver "vidaview/internal/infra/http/gin"
	"vidaview/internal/infra/inbox"
	"vidaview/internal/infra/notify"
	"vidaview/internal/infra/obs"
	"vidaview/internal/infra/outbox"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "vidaview",
		Short:         "Apartment rental marketplace ledger service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		serveCmd(),
		relayCmd(),
		consumeCmd(),
		sweepCmd(),
		migrateCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, obs.NewLogger(cfg.Env, cfg.LogLevel), nil
}

func serveCmd() *cobra.Command {
	var withSweeper bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := buildApplication(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			if cfg.SeedFile != "" {
				if err := app.loadSeed(ctx, cfg.SeedFile); err != nil {
					logger.Warn("seed load failed", "error", err, "path", cfg.SeedFile)
				}
			}
			if withSweeper {
				go func() {
					if err := app.scheduler().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						logger.Error("lifecycle sweeper stopped", "error", err)
					}
				}()
			}

			server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.health(), app.handlers)
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("http shutdown failed", "error", err)
				}
			}()

			logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver, "notify", cfg.NotifyMode)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			logger.Info("HTTP server stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&withSweeper, "with-sweeper", false, "run the booking lifecycle sweeper in-process")
	return cmd
}

func relayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Publish outbox events to Kafka as CloudEvents",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Durable() || len(cfg.KafkaBrokers) == 0 {
				return errors.New("relay needs a durable STORAGE_DRIVER and KAFKA_BROKERS")
			}
			store, err := connectMongo(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			producer, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig("vidaview-relay"))
			if err != nil {
				return fmt.Errorf("kafka producer: %w", err)
			}
			defer producer.Close()

			worker := &outbox.Worker{
				Store:       outbox.NewStore(store.DB),
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Source:      "vidaview",
				Backoff:     cfg.RetryBackoff,
				Logger:      logger,
			}
			logger.Info("outbox relay starting", "brokers", cfg.KafkaBrokers)
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func consumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Store notifications published to Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Durable() || len(cfg.KafkaBrokers) == 0 {
				return errors.New("consume needs a durable STORAGE_DRIVER and KAFKA_BROKERS")
			}
			store, err := connectMongo(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			handler := &notify.Consumer{
				Inbox:  inbox.NewStore(store.DB, cfg.KafkaGroupID, 0),
				Sink:   &notify.Store{Repo: mongostore.NewNotificationRepository(store.DB)},
				Logger: logger,
			}
			consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, kafka.NewConfig("vidaview-consumer"), handler, logger)
			if err != nil {
				return fmt.Errorf("kafka consumer: %w", err)
			}
			defer consumer.Close()

			topic := notify.Topic(cfg.KafkaTopicPrefix)
			logger.Info("notification consumer starting", "topic", topic, "group", cfg.KafkaGroupID)
			if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Activate and complete bookings whose term started or ended",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := buildApplication(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			if once {
				result, err := app.sweeper.Sweep(ctx)
				if err != nil {
					return err
				}
				logger.Info("sweep done", "activated", result.Activated, "completed", result.Completed, "failed", result.Failed)
				return nil
			}
			err = app.scheduler().Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, schedule.ErrNoJobs) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres ledger schema and mongo indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Durable() {
				logger.Info("memory storage needs no migration")
				return nil
			}
			store, err := connectMongo(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())
			if err := ensureMongoIndexes(ctx, store, cfg); err != nil {
				return err
			}
			logger.Info("mongo indexes ensured", "database", cfg.MongoDB)

			if cfg.StorageDriver != config.StoragePostgres {
				return nil
			}
			db, err := postgres.Open(ctx, cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			applied, err := postgres.Migrate(ctx, db)
			if err != nil {
				return err
			}
			logger.Info("postgres schema applied", "files", applied)
			return nil
		},
	}
}
