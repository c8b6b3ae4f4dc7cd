package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nv0skar/Noisier/internal/config"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Supported drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
	DriverLibSQL = "libsql"
)

// Open opens and pings a connection pool for cfg.
// Note: sql.DB is already thread-safe and manages its own connection pool.
func Open(ctx context.Context, cfg config.DbConn) (*sql.DB, error) {
	dsn := DSN(cfg)

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == DriverSQLite && maxOpen == 0 {
		maxOpen = 1
	}
	if maxOpen > 0 {
		// Keep idle equal to open so connections are not churned under load
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot establish connection to the database: %w", err)
	}
	return db, nil
}

// DSN builds the driver connection string. An explicit cfg.DSN wins.
func DSN(cfg config.DbConn) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	switch cfg.Driver {
	case DriverSQLite, DriverLibSQL:
		return "file:" + cfg.DB
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.DB
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// IsMySQL reports whether the driver speaks the MySQL dialect
func IsMySQL(driver string) bool {
	return driver == DriverMySQL
}
