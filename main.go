package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/config"
	"taskboard/dao/migrate"
	"taskboard/dao/query"
	"taskboard/logutils"
	"taskboard/service"
	"taskboard/util"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "taskboard",
		Short:        "Multi-tenant project and Kanban board backend",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (yaml or toml); defaults to $"+config.EnvConfigPath+" or ./etc/config.yaml")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newMigrateCmd(&configPath))
	cmd.AddCommand(newUserCmd(&configPath))
	cmd.AddCommand(newTokenCmd(&configPath))
	return cmd
}

// setup loads the config, applies the log level and opens the migrated database.
func setup(configPath string) (*config.Config, error) {
	cfg, err := config.Init(configPath)
	if err != nil {
		return nil, err
	}
	if err := logutils.SetLevel(cfg.Log.Level); err != nil {
		logutils.Log.Warn("invalid log level, keeping default: ", err)
	}
	if err := query.InitDB(&cfg.Database); err != nil {
		return nil, err
	}
	if err := migrate.Run(query.DB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return cfg, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(*configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	gin.SetMode(cfg.Server.Mode)
	srv := service.New(query.DB, util.GetTokenMgr())

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logutils.Log.Infof("starting server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logutils.Log.Error("failed to shutdown server: ", err)
		return err
	}
	logutils.Log.Info("server stopped")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
