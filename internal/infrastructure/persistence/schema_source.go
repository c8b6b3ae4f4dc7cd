package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nv0skar/Noisier/internal/domain/schema"
)

// MySQLSchemaSource reads tables and views of the connected MySQL database
type MySQLSchemaSource struct {
	db Executor
}

// NewMySQLSchemaSource creates a MySQL schema source
func NewMySQLSchemaSource(db Executor) *MySQLSchemaSource {
	return &MySQLSchemaSource{db: db}
}

// LoadTables implements schema.Loader
func (s *MySQLSchemaSource) LoadTables(ctx context.Context) ([]schema.TableSchema, error) {
	rows, err := s.db.QueryContext(ctx, "SHOW FULL TABLES")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	type entry struct {
		name string
		view bool
	}
	var entries []entry
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		entries = append(entries, entry{name: name, view: strings.EqualFold(kind, "VIEW")})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	tables := make([]schema.TableSchema, 0, len(entries))
	for _, e := range entries {
		t, err := s.loadColumns(ctx, e.name)
		if err != nil {
			return nil, err
		}
		t.IsView = e.view
		tables = append(tables, t)
	}
	return tables, nil
}

func (s *MySQLSchemaSource) loadColumns(ctx context.Context, table string) (schema.TableSchema, error) {
	t := schema.TableSchema{Name: table}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SHOW COLUMNS FROM `%s`", strings.ReplaceAll(table, "`", "``")))
	if err != nil {
		return t, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var field, colType, null, key string
		var def, extra sql.NullString
		if err := rows.Scan(&field, &colType, &null, &key, &def, &extra); err != nil {
			return t, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		auto := strings.Contains(strings.ToLower(extra.String), "auto_increment")
		t.Fields = append(t.Fields, schema.TableField{Name: field, IsAutoIncrement: &auto})
		if key == "PRI" && t.PrimaryKeyField == "" {
			t.PrimaryKeyField = field
		}
	}
	return t, rows.Err()
}

// SQLiteSchemaSource reads tables and views from sqlite_master
type SQLiteSchemaSource struct {
	db Executor
}

// NewSQLiteSchemaSource creates a SQLite schema source. It also serves libSQL.
func NewSQLiteSchemaSource(db Executor) *SQLiteSchemaSource {
	return &SQLiteSchemaSource{db: db}
}

// LoadTables implements schema.Loader
func (s *SQLiteSchemaSource) LoadTables(ctx context.Context) ([]schema.TableSchema, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.name, m.type, l.name, l.type, l.pk
		FROM sqlite_master m
		JOIN pragma_table_info(m.name) l
		WHERE m.type IN ('table', 'view') AND m.name NOT LIKE 'sqlite_%'
		ORDER BY m.name ASC, l.cid ASC;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	defer rows.Close()

	var tables []schema.TableSchema
	pkCount := map[string]int{}
	for rows.Next() {
		var table, kind, col string
		var colType sql.NullString
		var pk int
		if err := rows.Scan(&table, &kind, &col, &colType, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		if len(tables) == 0 || tables[len(tables)-1].Name != table {
			tables = append(tables, schema.TableSchema{Name: table, IsView: kind == "view"})
		}
		t := &tables[len(tables)-1]

		// an INTEGER PRIMARY KEY column aliases the rowid
		auto := pk == 1 && strings.EqualFold(colType.String, "INTEGER")
		t.Fields = append(t.Fields, schema.TableField{Name: col, IsAutoIncrement: &auto})
		if pk == 1 {
			t.PrimaryKeyField = col
		}
		if pk > 0 {
			pkCount[table]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// a composite key never aliases the rowid
	for i := range tables {
		if pkCount[tables[i].Name] > 1 {
			for j := range tables[i].Fields {
				f := false
				tables[i].Fields[j].IsAutoIncrement = &f
			}
		}
	}
	return tables, nil
}
