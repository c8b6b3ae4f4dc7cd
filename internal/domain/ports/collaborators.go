package ports

import (
	"context"
)

// Row is one result row keyed by column name
type Row = map[string]any

// Identity is the decoded session of an authenticated caller, typically the
// user's row without its password.
type Identity = map[string]any

// Ack acknowledges a write
type Ack struct {
	LastID       int64 `json:"lastId"`
	AffectedRows int64 `json:"affectedRows"`
}

// DataStore executes translated queries with positionally ordered arguments.
type DataStore interface {
	// Query runs a read-only statement and returns its rows in order.
	Query(ctx context.Context, query string, args []any) ([]Row, error)

	// Execute runs INSERT, UPDATE or DELETE statements.
	Execute(ctx context.Context, query string, args []any) (Ack, error)
}

// TokenVerifier decodes session tokens
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// RoleGuard enforces an endpoint's role allow-list for an authenticated caller.
// Returning an error rejects the request.
type RoleGuard func(identity Identity, allowedRoles []string) error
