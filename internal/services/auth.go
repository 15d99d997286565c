package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/logging"
)

var (
	ErrAuthUnavailable        = errors.New("auth service unavailable")
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthInvalidToken       = errors.New("invalid or expired token")
)

const tokenTTL = 24 * time.Hour

// AuthService authenticates the single shop administrator. Credentials come
// from the environment as an email plus a bcrypt hash; successful logins mint
// an HS256 token for API clients alongside the session cookie.
type AuthService struct {
	adminEmail        string
	adminPasswordHash string
	signingKey        []byte
	adminID           uuid.UUID
	logger            *slog.Logger
}

func NewAuthService(cfg *config.Config, logger *slog.Logger) (*AuthService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth service config is required")
	}
	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("admin credentials are required")
	}

	return &AuthService{
		adminEmail:        cfg.AdminEmail,
		adminPasswordHash: cfg.AdminPasswordHash,
		signingKey:        []byte(cfg.TokenSigningKey),
		// Derived, not random: stable across restarts so sessions survive
		// a deploy.
		adminID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("admin:"+cfg.AdminEmail)),
		logger:  logger,
	}, nil
}

type LoginResult struct {
	AdminID uuid.UUID
	Email   string
	Token   string
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if s == nil {
		return nil, ErrAuthUnavailable
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(s.adminEmail))) != 1 {
		// Burn a comparison anyway so unknown emails cost the same as bad
		// passwords.
		_ = bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password))
		return nil, ErrAuthInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)); err != nil {
		logging.FromContext(ctx, s.logger).Warn("admin login rejected", "email", email)
		return nil, ErrAuthInvalidCredentials
	}

	token, err := s.mintToken()
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}

	return &LoginResult{
		AdminID: s.adminID,
		Email:   s.adminEmail,
		Token:   token,
	}, nil
}

func (s *AuthService) mintToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   s.adminID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		Issuer:    "atelier",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// VerifyToken checks a bearer token and returns the admin id it was minted
// for.
func (s *AuthService) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer("atelier"), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, ErrAuthInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, ErrAuthInvalidToken
	}

	adminID, err := uuid.Parse(claims.Subject)
	if err != nil || adminID != s.adminID {
		return uuid.Nil, ErrAuthInvalidToken
	}
	return adminID, nil
}
