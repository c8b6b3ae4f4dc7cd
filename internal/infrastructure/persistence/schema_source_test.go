package persistence

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nv0skar/Noisier/internal/domain/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columnHeaders = []string{"Field", "Type", "Null", "Key", "Default", "Extra"}

func TestMySQLSchemaSource_LoadTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SHOW FULL TABLES")).
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop", "Table_type"}).
			AddRow("Employees", "BASE TABLE").
			AddRow("payroll", "VIEW"))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `Employees`")).
		WillReturnRows(sqlmock.NewRows(columnHeaders).
			AddRow("employeeId", "int", "NO", "PRI", nil, "auto_increment").
			AddRow("name", "varchar(64)", "NO", "", nil, "").
			AddRow("salary", "decimal(10,2)", "YES", "", "0.00", ""))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `payroll`")).
		WillReturnRows(sqlmock.NewRows(columnHeaders).
			AddRow("total", "decimal(32,2)", "YES", "", nil, ""))

	tables, err := NewMySQLSchemaSource(db).LoadTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)

	emp := tables[0]
	assert.Equal(t, "Employees", emp.Name)
	assert.False(t, emp.IsView)
	assert.Equal(t, "employeeId", emp.PrimaryKeyField)
	assert.Equal(t, []string{"employeeId", "name", "salary"}, emp.FieldNames())
	assert.True(t, emp.Fields[0].AutoIncrement())
	assert.False(t, emp.Fields[1].AutoIncrement())

	assert.True(t, tables[1].IsView)
	assert.Equal(t, "", tables[1].PrimaryKeyField)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSchemaSource_LoadTables(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"CREATE TABLE departments (departmentId INTEGER PRIMARY KEY, name TEXT NOT NULL)",
		"CREATE TABLE tags (label TEXT)",
		"CREATE TABLE links (a INTEGER, b INTEGER, PRIMARY KEY (a, b))",
		"CREATE VIEW department_names AS SELECT name FROM departments",
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	tables, err := NewSQLiteSchemaSource(db).LoadTables(context.Background())
	require.NoError(t, err)

	byName := map[string]schema.TableSchema{}
	for _, tb := range tables {
		byName[tb.Name] = tb
	}
	require.Len(t, byName, 4)

	dep := byName["departments"]
	assert.Equal(t, "departmentId", dep.PrimaryKeyField)
	assert.Equal(t, []string{"departmentId", "name"}, dep.FieldNames())
	assert.True(t, dep.Fields[0].AutoIncrement())

	assert.Equal(t, "", byName["tags"].PrimaryKeyField)

	links := byName["links"]
	assert.Equal(t, "a", links.PrimaryKeyField)
	assert.False(t, links.Fields[0].AutoIncrement())

	view := byName["department_names"]
	assert.True(t, view.IsView)
	assert.Equal(t, []string{"name"}, view.FieldNames())
}
