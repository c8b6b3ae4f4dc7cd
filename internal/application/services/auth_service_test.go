package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nv0skar/Noisier/internal/domain/ports"
	"github.com/nv0skar/Noisier/internal/domain/schema"
	"github.com/nv0skar/Noisier/internal/logging"
	"github.com/nv0skar/Noisier/pkg/auth"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) FindByIdentifier(ctx context.Context, value any) (ports.Row, error) {
	args := m.Called(value)
	row, _ := args.Get(0).(ports.Row)
	return row, args.Error(1)
}

func (m *mockUserStore) Insert(ctx context.Context, fields map[string]any) error {
	return m.Called(fields).Error(0)
}

var usersTable = schema.TableSchema{
	Name:            "users",
	PrimaryKeyField: "userId",
	Fields: []schema.TableField{
		{Name: "userId"},
		{Name: "Email"},
		{Name: "name"},
		{Name: "Password"},
	},
}

func newService(t *testing.T, store UserStore) (*AuthService, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	table := usersTable
	svc, err := NewAuthService(logging.Discard(), store, tokens, &table, "email", "")
	require.NoError(t, err)
	return svc, tokens
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestNewAuthService_MissingFields(t *testing.T) {
	table := schema.TableSchema{Name: "users", Fields: []schema.TableField{{Name: "email"}}}
	_, err := NewAuthService(logging.Discard(), &mockUserStore{}, auth.NewTokenService("", time.Hour), &table, "email", "")
	assert.True(t, apperrors.IsConfig(err))

	_, err = NewAuthService(logging.Discard(), &mockUserStore{}, auth.NewTokenService("", time.Hour), &table, "login", "")
	assert.True(t, apperrors.IsConfig(err))
}

func TestAuthService_Login(t *testing.T) {
	store := &mockUserStore{}
	svc, tokens := newService(t, store)
	assert.Equal(t, "Email", svc.IdentifierField())

	user := ports.Row{"userId": int64(7), "Email": "ann@example.com", "name": "Ann", "Password": hashed(t, "s3cret")}
	store.On("FindByIdentifier", "ann@example.com").Return(user, nil)
	store.On("FindByIdentifier", "nobody@example.com").Return(nil, nil)

	t.Run("success", func(t *testing.T) {
		session, err := svc.Login(context.Background(), map[string]any{"email": "ann@example.com", "password": "s3cret"})
		require.NoError(t, err)
		assert.NotContains(t, session.User, "Password")
		assert.Equal(t, int64(7), session.User["userId"])

		identity, err := tokens.Verify(session.SessionToken)
		require.NoError(t, err)
		assert.Equal(t, "Ann", identity["name"])
		assert.NotContains(t, identity, "Password")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), map[string]any{"email": "ann@example.com", "password": "nope"})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Contains(t, err.Error(), "The user or the password are not correct")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), map[string]any{"email": "nobody@example.com", "password": "s3cret"})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(context.Background(), map[string]any{"email": "ann@example.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Both 'Email' and 'password' are required")
	})
}

func TestAuthService_Register(t *testing.T) {
	store := &mockUserStore{}
	svc, _ := newService(t, store)

	created := ports.Row{"userId": int64(8), "Email": "bob@example.com", "name": "Bob", "Password": "hash"}
	store.On("FindByIdentifier", "bob@example.com").Return(nil, nil).Once()
	store.On("Insert", mock.MatchedBy(func(fields map[string]any) bool {
		hash, _ := fields["Password"].(string)
		_, hasUnknown := fields["favouriteColour"]
		return fields["Email"] == "bob@example.com" &&
			fields["name"] == "Bob" &&
			!hasUnknown &&
			auth.VerifyPassword("pw", hash)
	})).Return(nil).Once()
	store.On("FindByIdentifier", "bob@example.com").Return(created, nil).Once()

	session, err := svc.Register(context.Background(), map[string]any{
		"EMAIL":           "bob@example.com",
		"password":        "pw",
		"NAME":            "Bob",
		"favouriteColour": "green",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionToken)
	assert.Equal(t, int64(8), session.User["userId"])
	assert.NotContains(t, session.User, "Password")
	store.AssertExpectations(t)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	store := &mockUserStore{}
	svc, _ := newService(t, store)
	store.On("FindByIdentifier", "ann@example.com").Return(ports.Row{"userId": int64(7)}, nil)

	_, err := svc.Register(context.Background(), map[string]any{"email": "ann@example.com", "password": "pw"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "There already exists another user with that Email")
	store.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestAuthService_Register_InsertFails(t *testing.T) {
	store := &mockUserStore{}
	svc, _ := newService(t, store)
	store.On("FindByIdentifier", "ann@example.com").Return(nil, nil)
	store.On("Insert", mock.Anything).Return(apperrors.NewConflictError("duplicate entry", errors.New("1062")))

	_, err := svc.Register(context.Background(), map[string]any{"email": "ann@example.com", "password": "pw"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestAuthService_Register_IgnoresRoleField(t *testing.T) {
	store := &mockUserStore{}
	table := schema.TableSchema{
		Name:            "users",
		PrimaryKeyField: "userId",
		Fields:          append(append([]schema.TableField{}, usersTable.Fields...), schema.TableField{Name: "role"}),
	}
	svc, err := NewAuthService(logging.Discard(), store, auth.NewTokenService("test-secret", time.Hour), &table, "email", "Role")
	require.NoError(t, err)

	created := ports.Row{"userId": int64(9), "Email": "eve@example.com", "role": "user", "Password": "hash"}
	store.On("FindByIdentifier", "eve@example.com").Return(nil, nil).Once()
	store.On("Insert", mock.MatchedBy(func(fields map[string]any) bool {
		for k := range fields {
			if k == "role" || k == "ROLE" {
				return false
			}
		}
		return fields["Email"] == "eve@example.com"
	})).Return(nil).Once()
	store.On("FindByIdentifier", "eve@example.com").Return(created, nil).Once()

	session, err := svc.Register(context.Background(), map[string]any{
		"email":    "eve@example.com",
		"password": "pw",
		"ROLE":     "admin",
	})
	require.NoError(t, err)
	store.AssertExpectations(t)

	guard := NewRoleGuard("role")
	assert.ErrorIs(t, guard(session.User, []string{"admin"}), apperrors.ErrRoleNotAllowed)
}

func TestNewRoleGuard(t *testing.T) {
	assert.Nil(t, NewRoleGuard(""))

	guard := NewRoleGuard("role")
	admin := ports.Identity{"role": "admin"}
	noRole := ports.Identity{"userId": int64(1)}

	assert.NoError(t, guard(admin, []string{"editor", "admin"}))
	assert.NoError(t, guard(noRole, []string{Wildcard}))
	assert.ErrorIs(t, guard(admin, []string{"editor"}), apperrors.ErrRoleNotAllowed)
	assert.ErrorIs(t, guard(noRole, []string{"admin"}), apperrors.ErrRoleNotAllowed)
	assert.ErrorIs(t, guard(admin, nil), apperrors.ErrRoleNotAllowed)
	assert.NoError(t, NewRoleGuard("ROLE")(ports.Identity{"Role": 3}, []string{"3"}))
}
