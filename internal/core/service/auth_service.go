package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/archery/auth-system/internal/api/metrics"
	"github.com/archery/auth-system/internal/core/crypto"
	"github.com/archery/auth-system/internal/core/domain"
	"github.com/archery/auth-system/internal/core/ports"
	"github.com/archery/auth-system/internal/core/token"
)

// minPasswordLen is the minimum accepted password length for new or changed
// passwords. Existing stored credentials are never re-validated against it.
const minPasswordLen = 8

// AuthService implements login and self-service password changes.
type AuthService struct {
	repo     ports.AccountRepository
	codec    *token.Codec
	throttle ports.LoginThrottle // optional; nil disables throttling
	logger   zerolog.Logger
}

func NewAuthService(repo ports.AccountRepository, codec *token.Codec, throttle ports.LoginThrottle, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, codec: codec, throttle: throttle, logger: logger}
}

// Login authenticates a username/password pair and mints a session token.
// Unknown usernames and wrong passwords produce the same error so callers
// cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.Account, error) {
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, username)
		if err != nil {
			// Fail open: the throttle backend must never block logins.
			s.logger.Warn().Err(err).Str("username", username).Msg("login throttle check failed, allowing attempt")
		} else if !allowed {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.recordFailure(ctx, username)
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", nil, err
	}

	if !crypto.Verify(password, account.PasswordHash) {
		s.recordFailure(ctx, username)
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	if !account.Active {
		metrics.LoginsTotal.WithLabelValues("disabled").Inc()
		return "", nil, domain.ErrAccountDisabled
	}

	tok, err := s.codec.Mint(account.Username, account.Role, time.Now().UTC())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", nil, fmt.Errorf("mint token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
		}
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Str("username", account.Username).Str("role", string(account.Role)).Msg("login succeeded")
	return tok, account, nil
}

// ChangePassword re-runs the credential check against the current password
// before accepting the new one.
func (s *AuthService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if !crypto.Verify(currentPassword, account.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}

	hash, err := crypto.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	if err := s.repo.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return err
	}

	s.logger.Info().Str("username", username).Msg("password changed")
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}
