package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_FindByIdentifier(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepository(db, "Users", "Email")
	query := "SELECT * FROM Users WHERE Email = ?"

	// Test Case 1: User exists
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"userId", "Email", "password"}).AddRow(int64(1), "ann@example.com", "hash"))

	user, err := repo.FindByIdentifier(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user["userId"])
	assert.Equal(t, "hash", user["password"])

	// Test Case 2: User does not exist
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"userId", "Email", "password"}))

	user, err = repo.FindByIdentifier(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db, "users", "email")
	query := "INSERT INTO users (email, name, password) VALUES (?, ?, ?)"

	mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs("ann@example.com", "Ann", "hash").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Insert(context.Background(), map[string]any{"password": "hash", "email": "ann@example.com", "name": "Ann"})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(query)).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	err = repo.Insert(context.Background(), map[string]any{"password": "hash", "email": "ann@example.com", "name": "Ann"})
	assert.True(t, apperrors.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
