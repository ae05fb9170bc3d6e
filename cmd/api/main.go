package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dutchie-backend/internal/config"
	"dutchie-backend/internal/infrastructure/database"
	"dutchie-backend/internal/interfaces/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "api",
		Short:         "Dutchie group-buy API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				log.Error().Err(err).Msg("config load")
				return err
			}
			cfg = loaded
			setupLogger(cfg.Env)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cfg)
		},
	})

	return rootCmd
}

func setupLogger(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func serve(cfg *config.Config) error {
	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Error().Err(err).Msg("app create")
		return err
	}

	// Verify connections before accepting traffic
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			log.Error().Err(err).Msg("database connection failed")
			return err
		}
		log.Info().Msg("database connected")
	} else {
		log.Warn().Msg("no DATABASE_URL set, deal routes are disabled")
	}
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		return err
	}
	log.Info().Msg("redis connected")

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Info().Str("port", cfg.Port).Str("health", "/health/json").Msg("server running")
	return app.Listen(":" + cfg.Port)
}

func migrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("no database URL configured for APP_ENV=%s", cfg.Env)
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Error().Err(err).Msg("migrate")
		return err
	}
	log.Info().Msg("migration complete")
	return nil
}
