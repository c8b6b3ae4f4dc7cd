// Package sqllint parses translated MySQL-dialect queries to catch syntax
// errors at startup. Results are advisory.
package sqllint

import (
	"fmt"

	"github.com/nv0skar/Noisier/internal/domain/endpoint"
	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // Using test_driver for ValueExpr and ParamMarkerExpr
)

// Linter wraps a TiDB parser. It is not safe for concurrent use.
type Linter struct {
	parser *parser.Parser
}

// New creates a Linter
func New() *Linter {
	return &Linter{parser: parser.New()}
}

// Lint parses query, which must hold exactly one statement, and returns the
// operation its AST represents.
func (l *Linter) Lint(query string) (endpoint.SqlOperation, error) {
	stmts, _, err := l.parser.Parse(query, "", "")
	if err != nil {
		return endpoint.OpOther, fmt.Errorf("SQL parse error: %v", err)
	}
	if len(stmts) != 1 {
		return endpoint.OpOther, fmt.Errorf("expected a single SQL statement, found %d", len(stmts))
	}

	switch stmts[0].(type) {
	case *ast.SelectStmt, *ast.SetOprStmt:
		return endpoint.OpSelect, nil
	case *ast.InsertStmt:
		return endpoint.OpInsert, nil
	case *ast.UpdateStmt:
		return endpoint.OpUpdate, nil
	case *ast.DeleteStmt:
		return endpoint.OpDelete, nil
	}
	return endpoint.OpOther, nil
}
