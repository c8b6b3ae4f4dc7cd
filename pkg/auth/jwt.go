package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nv0skar/Noisier/internal/domain/ports"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/nv0skar/Noisier/pkg/utils"
)

// DefaultSecret is used when no secret is configured. Never ship it.
const DefaultSecret = "default-secret-change-in-production"

// Claims represents JWT claims. User is the authenticated user's row.
type Claims struct {
	User map[string]any `json:"user"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session tokens
type TokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service. An empty secret falls back to
// DefaultSecret.
func NewTokenService(secret string, maxAge time.Duration) *TokenService {
	if secret == "" {
		secret = DefaultSecret
	}
	return &TokenService{secret: []byte(secret), maxAge: maxAge, now: time.Now}
}

// GenerateToken creates a JWT token carrying user
func (s *TokenService) GenerateToken(user map[string]any) (string, error) {
	now := s.now()
	claims := &Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates and parses a JWT token
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithJSONNumber())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}

// Verify implements ports.TokenVerifier
func (s *TokenService) Verify(token string) (ports.Identity, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.User == nil {
		return nil, apperrors.ErrInvalidToken
	}
	return utils.NormalizeNumbers(claims.User), nil
}
