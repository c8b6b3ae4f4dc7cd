package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/nv0skar/Noisier/internal/domain/ports"
	"github.com/nv0skar/Noisier/internal/domain/schema"
	"github.com/nv0skar/Noisier/pkg/auth"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PasswordField is the column holding the bcrypt hash
const PasswordField = "password"

// UserStore reads and creates users
type UserStore interface {
	FindByIdentifier(ctx context.Context, value any) (ports.Row, error)
	Insert(ctx context.Context, fields map[string]any) error
}

// TokenIssuer signs session tokens for a user row
type TokenIssuer interface {
	GenerateToken(user map[string]any) (string, error)
}

// Session is returned by a successful login or registration
type Session struct {
	SessionToken string    `json:"sessionToken"`
	User         ports.Row `json:"user"`
}

// AuthService handles login and signup against the configured users table
type AuthService struct {
	l               *logrus.Entry
	users           UserStore
	tokens          TokenIssuer
	table           *schema.TableSchema
	identifierField string
	passwordField   string
	roleField       string
}

// NewAuthService creates an AuthService. The identifier and password columns
// are resolved against table case-insensitively. When roleField is set, signup
// never writes it and the column default applies.
func NewAuthService(l *logrus.Entry, users UserStore, tokens TokenIssuer, table *schema.TableSchema, identifierField, roleField string) (*AuthService, error) {
	ident, ok := table.Field(identifierField)
	if !ok {
		return nil, apperrors.NewConfigError("", fmt.Sprintf("the users table '%s' has no field '%s'", table.Name, identifierField))
	}
	pass, ok := table.Field(PasswordField)
	if !ok {
		return nil, apperrors.NewConfigError("", fmt.Sprintf("the users table '%s' has no field '%s'", table.Name, PasswordField))
	}

	return &AuthService{
		l:               l.WithField("component", "auth"),
		users:           users,
		tokens:          tokens,
		table:           table,
		identifierField: ident.Name,
		passwordField:   pass.Name,
		roleField:       roleField,
	}, nil
}

// IdentifierField returns the identifier column in its schema casing
func (s *AuthService) IdentifierField() string {
	return s.identifierField
}

// Login checks the credentials in form and issues a session token
func (s *AuthService) Login(ctx context.Context, form map[string]any) (*Session, error) {
	identifier, password, err := s.credentials(form)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		s.l.WithField("identifier", identifier).Warn("⚠️ Login failed: user not found")
		return nil, errBadCredentials()
	}

	hash, _ := lookup(user, s.passwordField)
	if hashStr, ok := hash.(string); !ok || !auth.VerifyPassword(password, hashStr) {
		s.l.WithField("identifier", identifier).Warn("⚠️ Login failed: invalid password")
		return nil, errBadCredentials()
	}

	return s.issue(user)
}

// Register creates a user from form and logs it in. Fields that are not
// columns of the users table are ignored, as is the role field.
func (s *AuthService) Register(ctx context.Context, form map[string]any) (*Session, error) {
	identifier, password, err := s.credentials(form)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	for k, v := range form {
		if s.roleField != "" && strings.EqualFold(k, s.roleField) {
			continue
		}
		if f, ok := s.table.Field(k); ok {
			fields[f.Name] = v
		}
	}

	existing, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to look up user", err)
	}
	if existing != nil {
		return nil, apperrors.NewValidationError(s.identifierField,
			fmt.Sprintf("There already exists another user with that %s", s.identifierField))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}
	fields[s.identifierField] = identifier
	fields[s.passwordField] = hash

	if err := s.users.Insert(ctx, fields); err != nil {
		return nil, err
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read back user", err)
	}
	if user == nil {
		return nil, apperrors.NewInternalError("the user was not found after being created", nil)
	}

	s.l.WithField("identifier", identifier).Info("✅ User registered")
	return s.issue(user)
}

func (s *AuthService) credentials(form map[string]any) (string, string, error) {
	identifier := stringValue(form, s.identifierField)
	password := stringValue(form, PasswordField)
	if identifier == "" || password == "" {
		return "", "", apperrors.NewValidationError("",
			fmt.Sprintf("Both '%s' and '%s' are required", s.identifierField, PasswordField))
	}
	return identifier, password, nil
}

func (s *AuthService) issue(user ports.Row) (*Session, error) {
	public := make(ports.Row, len(user))
	for k, v := range user {
		if !strings.EqualFold(k, s.passwordField) {
			public[k] = v
		}
	}

	token, err := s.tokens.GenerateToken(public)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate token", err)
	}
	return &Session{SessionToken: token, User: public}, nil
}

func errBadCredentials() error {
	return apperrors.NewValidationError("", "The user or the password are not correct")
}

func lookup(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func stringValue(m map[string]any, key string) string {
	v, ok := lookup(m, key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}
