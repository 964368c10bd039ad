package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aduanatrack/core/internal/adapters/advice"
	"github.com/aduanatrack/core/internal/adapters/storage"
	"github.com/aduanatrack/core/internal/application/services"
	"github.com/aduanatrack/core/internal/infrastructure/config"
	"github.com/aduanatrack/core/internal/infrastructure/logger"
	"github.com/aduanatrack/core/internal/infrastructure/server"
	"github.com/aduanatrack/core/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the AduanaTrack API server",
		Long:  "Start the AduanaTrack API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands. Only
// the postgres state store carries schema; the file store needs none.
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "State-store migration commands",
		Long:  "Manage the postgres state-store schema (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			withPostgres(func(store *storage.PostgresStore) error {
				return store.MigrateUp()
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			withPostgres(func(store *storage.PostgresStore) error {
				return store.MigrateDown()
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			withPostgres(func(store *storage.PostgresStore) error {
				version, dirty, err := store.MigrateVersion()
				if err != nil {
					return err
				}
				fmt.Printf("version: %d dirty: %v\n", version, dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print AduanaTrack version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("AduanaTrack Core v1.0.0")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	stateStore, err := newStateStore(cfg)
	if err != nil {
		appLogger.Fatalw("Failed to initialize state store", "error", err)
	}
	defer stateStore.Close()

	var adviceProvider ports.AdviceProvider
	if cfg.Advice.APIKey != "" {
		adviceProvider = advice.NewGeminiClient(cfg.Advice)
	} else {
		appLogger.Warn("No advice API key configured, maintenance advice will be unavailable")
	}

	taskService := services.NewTaskService(stateStore, appLogger)
	adviceService := services.NewAdviceService(adviceProvider, appLogger)

	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := taskService.Load(loadCtx); err != nil {
		appLogger.Fatalw("Failed to load task collection", "error", err)
	}

	srv, err := server.New(cfg, taskService, adviceService, stateStore, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := srv.Start(address); err != nil {
			appLogger.Infow("Server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Graceful shutdown failed", "error", err)
	}
}

func newStateStore(cfg *config.Config) (ports.StateStore, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		return storage.NewPostgresStore(cfg.Storage.Postgres)
	default:
		return storage.NewFileStore(cfg.Storage.DataDir)
	}
}

func withPostgres(fn func(*storage.PostgresStore) error) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := storage.NewPostgresStore(cfg.Storage.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer store.Close()

	if err := fn(store); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}
