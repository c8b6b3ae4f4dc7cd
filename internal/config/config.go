// Package config loads config.toml, applies environment overrides and checks
// the settings for consistency.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
)

// DefaultPath is where the configuration is read from when no path is given
const DefaultPath = "config.toml"

// EnvPrefix prefixes every environment override, e.g. NOISIER_SERVER_LISTEN_ADDR
const EnvPrefix = "NOISIER_"

// Config is the full configuration
type Config struct {
	General General `toml:"general" envPrefix:"GENERAL_"`
	Server  Server  `toml:"server" envPrefix:"SERVER_"`
	App     App     `toml:"app" envPrefix:"APP_"`
	DbConn  DbConn  `toml:"db_conn" envPrefix:"DB_"`
}

// General holds process-wide switches
type General struct {
	AutoEndpoints           bool   `toml:"auto_endpoints" env:"AUTO_ENDPOINTS"`
	EndpointStatistics      bool   `toml:"endpoint_statistics" env:"ENDPOINT_STATISTICS"`
	DisplayEndpointsOnStart bool   `toml:"display_endpoints_on_start" env:"DISPLAY_ENDPOINTS_ON_START"`
	ColoredOutput           bool   `toml:"colored_output" env:"COLORED_OUTPUT"`
	Debug                   bool   `toml:"debug" env:"DEBUG"`
	LogLevel                string `toml:"log_level" env:"LOG_LEVEL" validate:"oneof=trace debug info warn warning error"`
}

// Server holds HTTP settings
type Server struct {
	ListenAddr       string `toml:"listen_addr" env:"LISTEN_ADDR" validate:"required,hostname_port"`
	HTTPCacheTime    int    `toml:"http_cache_time" env:"HTTP_CACHE_TIME" validate:"gte=0"`
	APIPrefix        string `toml:"api_prefix" env:"API_PREFIX" validate:"required,startswith=/"`
	ServeAPI         bool   `toml:"serve_api" env:"SERVE_API"`
	ServeStaticFiles bool   `toml:"serve_static_files" env:"SERVE_STATIC_FILES"`
	StaticDir        string `toml:"static_dir" env:"STATIC_DIR"`
	SummaryEndpoint  bool   `toml:"summary_endpoint" env:"SUMMARY_ENDPOINT"`
	EndpointsDir     string `toml:"endpoints_dir" env:"ENDPOINTS_DIR" validate:"required"`
}

// App holds application features
type App struct {
	Auth Auth `toml:"auth" envPrefix:"AUTH_"`
}

// Auth configures the session subsystem. UserAuthTable and UserAuthField name
// the table and identifier column used by login and register.
type Auth struct {
	Enable        bool   `toml:"enable" env:"ENABLE"`
	UserAuthTable string `toml:"user_auth_table" env:"USER_AUTH_TABLE" validate:"required"`
	UserAuthField string `toml:"user_auth_field" env:"USER_AUTH_FIELD" validate:"required"`
	MaxTokenAge   int    `toml:"max_token_age" env:"MAX_TOKEN_AGE" validate:"gt=0"`
	AllowSignup   bool   `toml:"allow_signup" env:"ALLOW_SIGNUP"`
	SecretKey     string `toml:"secret_key" env:"SECRET_KEY"`
	RoleField     string `toml:"role_field" env:"ROLE_FIELD"`
}

// DbConn describes the data store connection. DSN, when set, is passed to the
// driver verbatim.
type DbConn struct {
	Driver       string `toml:"driver" env:"DRIVER" validate:"oneof=mysql sqlite3 libsql"`
	Host         string `toml:"host" env:"HOST"`
	Port         int    `toml:"port" env:"PORT" validate:"gte=0,lte=65535"`
	Username     string `toml:"username" env:"USERNAME"`
	Password     string `toml:"password" env:"PASSWORD"`
	DB           string `toml:"db" env:"NAME"`
	DSN          string `toml:"dsn" env:"DSN"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS" validate:"gte=0"`
}

// Default returns the settings used for keys missing from the file
func Default() *Config {
	return &Config{
		General: General{
			AutoEndpoints:           true,
			EndpointStatistics:      true,
			DisplayEndpointsOnStart: true,
			ColoredOutput:           true,
			LogLevel:                "info",
		},
		Server: Server{
			ListenAddr:       "127.0.0.1:8080",
			APIPrefix:        "/api",
			ServeAPI:         true,
			ServeStaticFiles: true,
			StaticDir:        "static",
			EndpointsDir:     "endpoints",
		},
		App: App{
			Auth: Auth{
				Enable:        true,
				UserAuthTable: "users",
				UserAuthField: "email",
				MaxTokenAge:   86400,
				AllowSignup:   true,
			},
		},
		DbConn: DbConn{
			Driver:       "mysql",
			Host:         "127.0.0.1",
			Port:         3306,
			Username:     "default_username",
			Password:     "default_password",
			DB:           "default_db",
			MaxOpenConns: 25,
		},
	}
}

// Load reads path over the defaults, then .env and environment overrides, and
// validates the result. A missing file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			wd, _ := os.Getwd()
			return nil, apperrors.WrapConfigError("", fmt.Sprintf(
				"cannot find %s in %s, check whether you're running from the project's root folder", path, wd), err)
		}
		return nil, apperrors.WrapConfigError("", "the config file is not correctly formatted", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apperrors.NewConfigError("", fmt.Sprintf("unknown keys in %s: %s", path, strings.Join(keys, ", ")))
	}

	// .env is optional
	_ = godotenv.Load()

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with NOISIER_* environment variables. Unset variables
// leave the current values alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return apperrors.WrapConfigError("", "failed to parse environment variables", err)
	}
	return nil
}

// Validate checks field constraints and cross-setting consistency
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.WrapConfigError("", "invalid configuration", err)
	}
	if !c.Server.ServeAPI && !c.Server.ServeStaticFiles {
		return apperrors.NewConfigError("", "serving the API and serving static files are both disabled, there is nothing to serve")
	}
	if !c.App.Auth.Enable && c.App.Auth.AllowSignup {
		return apperrors.NewConfigError("", "signup is allowed while authentication is disabled, enable app.auth.enable or disable app.auth.allow_signup")
	}
	if c.DbConn.Driver != "mysql" && c.DbConn.DSN == "" && c.DbConn.DB == "" {
		return apperrors.NewConfigError("", fmt.Sprintf("db_conn.dsn or db_conn.db is required for the %s driver", c.DbConn.Driver))
	}
	return nil
}

// Host returns the listen host and port
func (s Server) Host() (string, int) {
	host, port, err := net.SplitHostPort(s.ListenAddr)
	if err != nil {
		return s.ListenAddr, 0
	}
	p, _ := strconv.Atoi(port)
	return host, p
}

// AuthEnabled reports whether sessions are issued and verified
func (c *Config) AuthEnabled() bool {
	return c.App.Auth.Enable
}
