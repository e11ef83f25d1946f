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
)

const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// AccountService implements the privileged provisioning workflow plus the
// super-admin account mutations.
type AccountService struct {
	repo     ports.AccountRepository
	notifier ports.NotificationEnqueuer // optional; nil disables notifications
	logger   zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, notifier ports.NotificationEnqueuer, logger zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, notifier: notifier, logger: logger}
}

// Provision creates an account on behalf of actor: policy check, uniqueness
// fast path, hash, insert, best-effort credential notification. The storage
// layer's unique indexes remain the authoritative duplicate guard; the
// lookups here only produce friendlier errors on the common path.
func (s *AccountService) Provision(ctx context.Context, actor ports.Actor, in ports.ProvisionInput) (*domain.Account, error) {
	if in.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if !in.Role.Provisionable() {
		return nil, fmt.Errorf("%w: role must be %s or %s", domain.ErrValidation, domain.RoleClientAdmin, domain.RoleOrganizer)
	}
	if !domain.CanCreate(actor.Role, in.Role) {
		return nil, domain.ErrForbidden
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}

	parentID, err := s.resolveParent(ctx, actor, in)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if in.Email != "" {
		if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
			return nil, domain.ErrDuplicateEmail
		} else if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
	}

	hash, err := crypto.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  hash,
		Role:          in.Role,
		Active:        true,
		// Accounts created through this privileged path are pre-verified;
		// self-registration is out of scope.
		Verified:      true,
		ParentAdminID: parentID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	metrics.AccountsProvisionedTotal.WithLabelValues(string(created.Role)).Inc()
	s.logger.Info().
		Str("username", created.Username).
		Str("role", string(created.Role)).
		Str("issuer", actor.Username).
		Msg("account provisioned")

	if s.notifier != nil && created.Email != "" {
		s.notifier.Enqueue(ports.CredentialNotice{
			Recipient:  created.Email,
			Username:   created.Username,
			Password:   in.Password,
			Role:       created.Role,
			IssuerName: actor.Username,
		})
	}

	return created, nil
}

// resolveParent applies the ownership rule of the role hierarchy: organizers
// created by a client admin always belong to that admin, any caller-supplied
// value notwithstanding. A super admin creating an organizer must name an
// existing client admin as the owner so no organizer is left invisible to
// every admin listing.
func (s *AccountService) resolveParent(ctx context.Context, actor ports.Actor, in ports.ProvisionInput) (string, error) {
	if in.Role != domain.RoleOrganizer {
		return "", nil
	}

	if actor.Role == domain.RoleClientAdmin {
		return actor.ID, nil
	}

	if in.ParentAdminID == "" {
		return "", fmt.Errorf("%w: parent_admin_id is required when creating an organizer", domain.ErrValidation)
	}
	parent, err := s.repo.FindByID(ctx, in.ParentAdminID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", fmt.Errorf("%w: parent_admin_id does not reference an existing account", domain.ErrValidation)
		}
		return "", err
	}
	if parent.Role != domain.RoleClientAdmin {
		return "", fmt.Errorf("%w: parent_admin_id must reference a client admin", domain.ErrValidation)
	}
	return parent.ID, nil
}

// List returns the accounts visible to actor. The visibility decision lives
// in the domain policy; this only translates its scope into a repository
// filter.
func (s *AccountService) List(ctx context.Context, actor ports.Actor, in ports.ListAccountsInput) ([]*domain.Account, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	role, ownedOnly, ok := domain.ListScope(actor.Role, in.Role)
	if !ok {
		return nil, domain.ErrForbidden
	}

	filter := ports.ListAccountsFilter{Role: role, Page: page, Limit: limit}
	if ownedOnly {
		filter.ParentAdminID = actor.ID
	}

	return s.repo.List(ctx, filter)
}

// Verify marks an account as verified. Super admin only.
func (s *AccountService) Verify(ctx context.Context, actor ports.Actor, accountID string) error {
	if !domain.CanAdminister(actor.Role) {
		return domain.ErrForbidden
	}
	if err := s.repo.SetVerified(ctx, accountID); err != nil {
		return err
	}
	s.logger.Info().Str("account_id", accountID).Str("issuer", actor.Username).Msg("account verified")
	return nil
}

// Activate re-enables a deactivated account. Super admin only.
func (s *AccountService) Activate(ctx context.Context, actor ports.Actor, accountID string) error {
	return s.setActive(ctx, actor, accountID, true)
}

// Deactivate disables an account; its tokens keep verifying until expiry but
// authenticated requests re-check the stored account and are rejected.
func (s *AccountService) Deactivate(ctx context.Context, actor ports.Actor, accountID string) error {
	return s.setActive(ctx, actor, accountID, false)
}

func (s *AccountService) setActive(ctx context.Context, actor ports.Actor, accountID string, active bool) error {
	if !domain.CanAdminister(actor.Role) {
		return domain.ErrForbidden
	}
	if err := s.repo.SetActive(ctx, accountID, active); err != nil {
		return err
	}
	s.logger.Info().Str("account_id", accountID).Bool("active", active).Str("issuer", actor.Username).Msg("account status changed")
	return nil
}

// BootstrapSuperAdmin creates the single super-admin account from
// configuration-supplied credentials iff none exists. Safe to run on every
// startup.
func (s *AccountService) BootstrapSuperAdmin(ctx context.Context, username, password, email string) error {
	exists, err := s.repo.ExistsByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if exists {
		s.logger.Debug().Msg("super admin already present, skipping bootstrap")
		return nil
	}

	hash, err := crypto.Hash(password)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.repo.Create(ctx, &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		Active:       true,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Two processes racing the bootstrap: the unique index lets exactly
		// one insert win, the loser finds the account already there.
		if errors.Is(err, domain.ErrDuplicateUsername) || errors.Is(err, domain.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("bootstrap: %w", err)
	}

	s.logger.Info().Str("username", username).Msg("super admin bootstrapped")
	return nil
}
