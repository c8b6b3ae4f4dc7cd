package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nv0skar/Noisier/internal/domain/ports"
)

// UserRepository reads and creates rows of the configured users table.
// Table and column names must come from the loaded schema, never from input.
type UserRepository struct {
	db              Executor
	table           string
	identifierField string
}

func NewUserRepository(db Executor, table, identifierField string) *UserRepository {
	return &UserRepository{db: db, table: table, identifierField: identifierField}
}

// FindByIdentifier returns the first user whose identifier equals value, or
// nil when there is none.
func (r *UserRepository) FindByIdentifier(ctx context.Context, value any) (ports.Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", r.table, r.identifierField)
	rows, err := r.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	defer rows.Close()

	users, err := ScanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

// Insert creates a user from fields. Columns are written in name order.
func (r *UserRepository) Insert(ctx context.Context, fields map[string]any) error {
	cols := make([]string, 0, len(fields))
	for c := range fields {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	args := make([]interface{}, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		args[i] = fields[c]
		marks[i] = "?"
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return translate(err)
	}
	return nil
}
