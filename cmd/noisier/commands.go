package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nv0skar/Noisier/internal/application/scaffold"
	"github.com/nv0skar/Noisier/internal/bootstrap"
	"github.com/nv0skar/Noisier/internal/config"
	"github.com/nv0skar/Noisier/internal/domain/schema"
	"github.com/nv0skar/Noisier/internal/infrastructure/database"
	"github.com/nv0skar/Noisier/internal/logging"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// DefaultClientsDir receives the generated JS API clients
const DefaultClientsDir = "web/js/api"

const shutdownTimeout = 5 * time.Second

// NewCommand builds the CLI. Listings are written to out.
func NewCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "noisier",
		Usage: "Serve a REST API straight from your SQL database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				Usage:   "path to the configuration file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug mode (verbose logs, detailed error responses)",
			},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Start the server",
				Action: runServer,
			},
			{
				Name:        "createapi",
				Usage:       "Write the generated endpoints and their JS clients to disk",
				Description: "Dumps the endpoints generated from the database schema to <endpoints_dir>/_auto and writes an axios client per table.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "js-dir",
						Value: DefaultClientsDir,
						Usage: "directory for the generated JS clients",
					},
				},
				Action: runCreateAPI,
			},
			{
				Name:  "endpoints",
				Usage: "Print every endpoint the server would expose",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runEndpoints(ctx, cmd, out)
				},
			},
		},
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, *logrus.Entry, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if cmd.Bool("debug") {
		cfg.General.Debug = true
	}

	l := logging.New(logging.Options{
		Level:   cfg.General.LogLevel,
		Debug:   cfg.General.Debug,
		Colored: cfg.General.ColoredOutput,
	})
	if cfg.General.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, l, nil
}

func runServer(ctx context.Context, cmd *cli.Command) error {
	cfg, l, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	app, err := bootstrap.New(ctx, l, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if cfg.General.DisplayEndpointsOnStart {
		for _, e := range app.Endpoints() {
			l.Info("🔗 " + e)
		}
	}

	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: app.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	host, port := cfg.Server.Host()
	l.Infof("🚀 Noisier listening on http://%s:%d", host, port)
	if app.Metrics != nil {
		l.Infof("📊 Metrics: http://%s:%d/metrics", host, port)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	case <-ctx.Done():
	}
	l.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	l.Info("Server exiting")
	return nil
}

func runCreateAPI(ctx context.Context, cmd *cli.Command) error {
	cfg, l, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.General.AutoEndpoints {
		return apperrors.NewConfigError("", "general.auto_endpoints is disabled, enable it to create the API files")
	}

	db, err := database.Open(ctx, cfg.DbConn)
	if err != nil {
		return err
	}
	defer db.Close()

	dbSchema := schema.NewDatabaseSchema()
	if err := dbSchema.Load(ctx, bootstrap.SchemaSource(cfg.DbConn.Driver, db)); err != nil {
		return fmt.Errorf("failed to load the database schema: %w", err)
	}
	tables := dbSchema.Tables()

	dumped, err := scaffold.DumpEndpoints(l, cfg.Server.EndpointsDir, tables)
	if err != nil {
		return err
	}
	clients, err := scaffold.WriteClients(cmd.String("js-dir"), tables,
		cfg.AuthEnabled(), cfg.AuthEnabled() && cfg.App.Auth.AllowSignup)
	if err != nil {
		return err
	}

	l.WithFields(logrus.Fields{
		"endpoint_files": len(dumped),
		"client_files":   len(clients),
	}).Info("✅ API files created")
	return nil
}

func runEndpoints(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	cfg, l, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	app, err := bootstrap.New(ctx, l, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	for _, e := range app.Endpoints() {
		fmt.Fprintln(out, e)
	}
	return nil
}
