// Package admin exposes the privileged bucket operations and issues admin
// session tokens.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/rameshdebur/filebucket/internal/apperror"
	"github.com/rameshdebur/filebucket/internal/bucket"
	"github.com/rameshdebur/filebucket/internal/config"
	"github.com/rameshdebur/filebucket/internal/middleware"
)

// Buckets is the lifecycle surface the admin endpoints drive.
type Buckets interface {
	ListActive(ctx context.Context, search string) ([]bucket.Summary, error)
	ResetPIN(ctx context.Context, id string) (string, error)
	AdminDelete(ctx context.Context, id string) error
}

// Session is a signed admin token and its expiry.
type Session struct {
	Token     string    `json:"token"     example:"eyJhbGci..."`
	ExpiresAt time.Time `json:"expiresAt" example:"2026-02-28T02:48:34Z"`
}

// Service contains the admin business logic.
type Service struct {
	buckets Buckets
	cfg     *config.Config
	now     func() time.Time
}

// NewService creates a new admin Service.
func NewService(buckets Buckets, cfg *config.Config) *Service {
	return &Service{buckets: buckets, cfg: cfg, now: time.Now}
}

// OpenSession exchanges the master PIN for a signed token valid for
// ADMIN_SESSION_TTL.
func (s *Service) OpenSession(_ context.Context, pin string) (*Session, error) {
	if !middleware.SecretEqual(pin, s.cfg.AdminMasterPIN) {
		log.Warn().Msg("admin session refused: wrong pin")
		return nil, apperror.ErrUnauthorized
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.AdminSessionTTL)
	claims := jwt.MapClaims{
		"sub":  "admin",
		"role": middleware.AdminRole,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign admin token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// ListBuckets returns active buckets filtered by search.
func (s *Service) ListBuckets(ctx context.Context, search string) ([]bucket.Summary, error) {
	return s.buckets.ListActive(ctx, search)
}

// ResetPIN rotates the PIN of bucket id.
func (s *Service) ResetPIN(ctx context.Context, id string) (string, error) {
	return s.buckets.ResetPIN(ctx, id)
}

// DeleteBucket removes bucket id with all of its objects.
func (s *Service) DeleteBucket(ctx context.Context, id string) error {
	return s.buckets.AdminDelete(ctx, id)
}
