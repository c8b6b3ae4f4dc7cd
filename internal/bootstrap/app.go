// Package bootstrap assembles the application from its configuration: data
// store, schema snapshot, endpoint registry, dispatcher and HTTP router.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nv0skar/Noisier/internal/application/dispatcher"
	"github.com/nv0skar/Noisier/internal/application/generator"
	"github.com/nv0skar/Noisier/internal/application/loader"
	"github.com/nv0skar/Noisier/internal/application/registry"
	"github.com/nv0skar/Noisier/internal/application/services"
	"github.com/nv0skar/Noisier/internal/config"
	"github.com/nv0skar/Noisier/internal/domain/ports"
	"github.com/nv0skar/Noisier/internal/domain/schema"
	"github.com/nv0skar/Noisier/internal/infrastructure/database"
	"github.com/nv0skar/Noisier/internal/infrastructure/persistence"
	"github.com/nv0skar/Noisier/internal/interfaces/middleware"
	"github.com/nv0skar/Noisier/internal/interfaces/rest"
	"github.com/nv0skar/Noisier/pkg/auth"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/nv0skar/Noisier/pkg/placeholder"
	"github.com/nv0skar/Noisier/pkg/sqllint"
	"github.com/sirupsen/logrus"
)

// App is the assembled server
type App struct {
	Config     *config.Config
	DB         *sql.DB
	Schema     *schema.DatabaseSchema
	Registry   *registry.Registry
	Dispatcher *dispatcher.Dispatcher
	Auth       *services.AuthService
	Metrics    *middleware.Metrics

	l *logrus.Entry
}

// New opens the data store described by cfg and assembles the application
func New(ctx context.Context, l *logrus.Entry, cfg *config.Config) (*App, error) {
	db, err := database.Open(ctx, cfg.DbConn)
	if err != nil {
		return nil, err
	}
	l.WithField("driver", cfg.DbConn.Driver).Info("✅ Database connection established")

	app, err := Assemble(ctx, l, cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

// SchemaSource returns the schema loader for driver
func SchemaSource(driver string, db persistence.Executor) schema.Loader {
	if database.IsMySQL(driver) {
		return persistence.NewMySQLSchemaSource(db)
	}
	return persistence.NewSQLiteSchemaSource(db)
}

// Assemble builds the application over an open database. Registration runs
// in phases: built-in endpoints, declared endpoints (strict), then generated
// endpoints (lenient), so declarations always win over generation.
func Assemble(ctx context.Context, l *logrus.Entry, cfg *config.Config, db *sql.DB) (*App, error) {
	app := &App{
		Config:   cfg,
		DB:       db,
		Schema:   schema.NewDatabaseSchema(),
		Registry: registry.New(),
		l:        l,
	}

	if err := app.Schema.Load(ctx, SchemaSource(cfg.DbConn.Driver, db)); err != nil {
		return nil, fmt.Errorf("failed to load the database schema: %w", err)
	}
	l.WithField("tables", len(app.Schema.Tables())).Info("📦 Database schema loaded")

	var (
		verifier    ports.TokenVerifier
		identityKey string
	)
	if cfg.AuthEnabled() {
		tokens := auth.NewTokenService(cfg.App.Auth.SecretKey, time.Duration(cfg.App.Auth.MaxTokenAge)*time.Second)
		if cfg.App.Auth.SecretKey == "" {
			l.Warn("⚠️  app.auth.secret_key is not set, session tokens are signed with the default secret")
		}

		users, ok := app.Schema.Table(cfg.App.Auth.UserAuthTable)
		if !ok {
			return nil, apperrors.NewConfigError("", fmt.Sprintf(
				"the users table '%s' does not exist in the database", cfg.App.Auth.UserAuthTable))
		}
		ident, ok := users.Field(cfg.App.Auth.UserAuthField)
		if !ok {
			return nil, apperrors.NewConfigError("", fmt.Sprintf(
				"the users table '%s' has no field '%s'", users.Name, cfg.App.Auth.UserAuthField))
		}

		repo := persistence.NewUserRepository(db, users.Name, ident.Name)
		svc, err := services.NewAuthService(l, repo, tokens, users, ident.Name, cfg.App.Auth.RoleField)
		if err != nil {
			return nil, err
		}
		app.Auth = svc
		verifier = tokens
		identityKey = users.PrimaryKeyField
	}

	if err := services.RegisterDefaults(app.Registry, services.DefaultsOptions{
		Login:           cfg.AuthEnabled(),
		Register:        cfg.AuthEnabled() && cfg.App.Auth.AllowSignup,
		Summary:         cfg.Server.SummaryEndpoint,
		IdentifierField: cfg.App.Auth.UserAuthField,
	}); err != nil {
		return nil, err
	}

	if !cfg.Server.ServeAPI {
		l.Info("API serving is disabled, endpoints are not loaded")
		return app, nil
	}

	decls, err := loader.ReadDir(l, cfg.Server.EndpointsDir)
	if err != nil {
		return nil, err
	}
	if err := loader.Register(l, app.Registry, decls); err != nil {
		return nil, err
	}

	if cfg.General.AutoEndpoints {
		if err := generator.Register(l, app.Registry, app.Schema.Tables()); err != nil {
			return nil, err
		}
	}

	opts := dispatcher.Options{
		IdentityKey: identityKey,
		Guard:       services.NewRoleGuard(cfg.App.Auth.RoleField),
		BindStyle:   placeholder.Question,
	}
	if database.IsMySQL(cfg.DbConn.Driver) {
		opts.Linter = sqllint.New()
	}
	store := persistence.NewStore(db, cfg.DbConn.Driver != database.DriverLibSQL)

	app.Dispatcher, err = dispatcher.Setup(l, app.Registry, store, verifier, opts)
	if err != nil {
		return nil, err
	}
	l.WithFields(logrus.Fields{
		"endpoints": app.Registry.Len(),
		"queries":   app.Dispatcher.Len(),
	}).Info("✅ Endpoints loaded")

	if cfg.General.EndpointStatistics {
		app.Metrics = middleware.NewMetrics()
	}
	return app, nil
}

// Router builds the HTTP handler for the application
func (a *App) Router() *gin.Engine {
	opts := rest.RouterOptions{
		Debug:      a.Config.General.Debug,
		Prefix:     a.Config.Server.APIPrefix,
		CacheTime:  a.Config.Server.HTTPCacheTime,
		Registry:   a.Registry,
		Dispatcher: a.Dispatcher,
		Auth:       a.Auth,
		Metrics:    a.Metrics,
	}
	if a.Config.Server.ServeStaticFiles {
		opts.StaticDir = a.Config.Server.StaticDir
	}
	return rest.NewRouter(a.l, opts)
}

// Endpoints lists every registered endpoint as a full URL with its method
func (a *App) Endpoints() []string {
	host, port := a.Config.Server.Host()
	entries := a.Registry.All()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("http://%s:%d%s%s (%s)",
			host, port, a.Config.Server.APIPrefix, e.Pattern.String(), e.Definition.Method))
	}
	return out
}

// Close releases the database
func (a *App) Close() error {
	return a.DB.Close()
}
