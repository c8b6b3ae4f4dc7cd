package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/nv0skar/Noisier/internal/domain/ports"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_QueryInReadOnlyTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	query := "SELECT * FROM employees WHERE id = ?"
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "salary"}).AddRow(int64(3), []byte("Ann"), nil))
	mock.ExpectCommit()

	rows, err := NewStore(db, true).Query(context.Background(), query, []any{int64(3)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ports.Row{"id": int64(3), "name": "Ann", "salary": nil}, rows[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_QueryWithoutTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM employees")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := NewStore(db, false).Query(context.Background(), "SELECT * FROM employees", nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_QueryErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM nope")).WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'nope' doesn't exist"})
	mock.ExpectRollback()

	_, err = NewStore(db, true).Query(context.Background(), "SELECT * FROM nope", nil)
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.GetHTTPStatus(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Execute(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	query := "INSERT INTO employees (name) VALUES (?)"
	mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs("Ann").WillReturnResult(sqlmock.NewResult(12, 1))

	ack, err := NewStore(db, true).Execute(context.Background(), query, []any{"Ann"})
	require.NoError(t, err)
	assert.Equal(t, ports.Ack{LastID: 12, AffectedRows: 1}, ack)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ExecuteTranslatesConstraintErrors(t *testing.T) {
	tests := []struct {
		number uint16
		status int
	}{
		{1062, 409},
		{1452, 409},
		{1048, 400},
		{1213, 500},
	}

	for _, tt := range tests {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		mock.ExpectExec("INSERT").WillReturnError(&mysql.MySQLError{Number: tt.number, Message: "boom"})
		_, err = NewStore(db, true).Execute(context.Background(), "INSERT INTO t (a) VALUES (?)", []any{1})
		require.Error(t, err)
		assert.Equal(t, tt.status, apperrors.GetHTTPStatus(err), "error %d", tt.number)
		db.Close()
	}
}
