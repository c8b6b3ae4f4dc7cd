package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/nv0skar/Noisier/internal/domain/ports"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
)

// Executor is the subset of *sql.DB the store needs
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Store implements ports.DataStore over database/sql
type Store struct {
	db         Executor
	readOnlyTx bool
}

// NewStore creates a Store. With readOnlyTx, queries run inside a read-only
// transaction; drivers that reject transaction options must pass false.
func NewStore(db Executor, readOnlyTx bool) *Store {
	return &Store{db: db, readOnlyTx: readOnlyTx}
}

// Query runs a read statement and scans every row into a map
func (s *Store) Query(ctx context.Context, query string, args []any) ([]ports.Row, error) {
	if !s.readOnlyTx {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, translate(err)
		}
		defer rows.Close()
		return ScanRows(rows)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read-only transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	result, err := ScanRows(rows)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit read-only transaction: %w", err)
	}
	return result, nil
}

// Execute runs a write statement
func (s *Store) Execute(ctx context.Context, query string, args []any) (ports.Ack, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return ports.Ack{}, translate(err)
	}

	var ack ports.Ack
	// Not every driver reports both values
	if id, err := res.LastInsertId(); err == nil {
		ack.LastID = id
	}
	if n, err := res.RowsAffected(); err == nil {
		ack.AffectedRows = n
	}
	return ack, nil
}

// ScanRows converts rows into maps keyed by column name. []byte values become
// strings.
func ScanRows(rows *sql.Rows) ([]ports.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]ports.Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(ports.Row, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = val
			}
		}

		results = append(results, record)
	}

	return results, rows.Err()
}

// translate maps driver constraint failures to client errors
func translate(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062, 1451, 1452:
			return apperrors.NewConflictError(myErr.Message, err)
		case 1048, 1054, 1264, 1364, 1366, 1406:
			return apperrors.NewValidationError("", myErr.Message)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		return apperrors.NewConflictError(liteErr.Error(), err)
	}
	return err
}
