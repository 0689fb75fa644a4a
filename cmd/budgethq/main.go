package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hknclub/budgethq/internal/app"
	"github.com/hknclub/budgethq/internal/config"
	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/http/handlers"
	"github.com/hknclub/budgethq/internal/observability/logger"
	"github.com/hknclub/budgethq/internal/store/pg"
	migrations "github.com/hknclub/budgethq/migrations/postgres"
)

func main() {
	// .env is a dev convenience; absence is not an error
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:          "budgethq",
		Short:        "Budget HQ treasury server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to YAML config")

	root.AddCommand(serveCmd(&configPath), migrateCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "budgethq",
	})
	return cfg, nil
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			container, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			srv := httpx.NewServer(cfg.Server.Addr, handlers.NewRouter(container))
			return srv.Run(ctx)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply the embedded PostgreSQL schema",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate: storage driver is %q, need postgres", cfg.Storage.Driver)
			}

			ctx := context.Background()
			store, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{})
			if err != nil {
				return err
			}
			defer store.Close()

			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			switch action {
			case "up":
				err = migrations.Up(ctx, store.Pool())
			case "down":
				err = migrations.Down(ctx, store.Pool())
			}
			if err != nil {
				return err
			}
			logger.L().Info("migrations applied")
			return nil
		},
	}
	return cmd
}
