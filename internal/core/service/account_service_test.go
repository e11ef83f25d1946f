package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/archery/auth-system/internal/core/domain"
	"github.com/archery/auth-system/internal/core/ports"
)

// stubEnqueuer records enqueued notices. Enqueue never fails, mirroring the
// fire-and-forget dispatcher.
type stubEnqueuer struct {
	mu      sync.Mutex
	notices []ports.CredentialNotice
}

func (e *stubEnqueuer) Enqueue(notice ports.CredentialNotice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notices = append(e.notices, notice)
}

func (e *stubEnqueuer) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.notices)
}

func superActor(id string) ports.Actor {
	return ports.Actor{ID: id, Username: "root", Role: domain.RoleSuperAdmin}
}

func clientActor(id, username string) ports.Actor {
	return ports.Actor{ID: id, Username: username, Role: domain.RoleClientAdmin}
}

func TestAccountService_Provision_ClientAdminBySuper(t *testing.T) {
	repo := newStubAccountRepo()
	notifier := &stubEnqueuer{}
	svc := NewAccountService(repo, notifier, zerolog.Nop())

	account, err := svc.Provision(context.Background(), superActor("sa1"), ports.ProvisionInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw123456",
		Role:     domain.RoleClientAdmin,
	})
	if err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	if account.Role != domain.RoleClientAdmin {
		t.Fatalf("unexpected role: %s", account.Role)
	}
	if !account.Verified || !account.Active {
		t.Fatalf("provisioned accounts must be active and pre-verified")
	}
	if account.ParentAdminID != "" {
		t.Fatalf("client admins have no parent, got %q", account.ParentAdminID)
	}
	if account.PasswordHash == "pw123456" || account.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if notifier.count() != 1 {
		t.Fatalf("expected one credential notice, got %d", notifier.count())
	}
	if notifier.notices[0].Recipient != "alice@example.com" {
		t.Fatalf("notice sent to wrong recipient: %s", notifier.notices[0].Recipient)
	}
}

func TestAccountService_Provision_OrganizerOwnedByCreatingAdmin(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	alice := mustSeedAccount(t, repo, "alice", "pw123456", domain.RoleClientAdmin, true)

	bob, err := svc.Provision(context.Background(), clientActor(alice.ID, "alice"), ports.ProvisionInput{
		Username: "bob",
		Password: "pw123456",
		Role:     domain.RoleOrganizer,
		// A caller-supplied parent must be overridden by the actor's own ID.
		ParentAdminID: "someone-else",
	})
	if err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	if bob.ParentAdminID != alice.ID {
		t.Fatalf("organizer parent = %q, want %q", bob.ParentAdminID, alice.ID)
	}
}

func TestAccountService_Provision_ClientAdminCannotCreatePeer(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	_, err := svc.Provision(context.Background(), clientActor("ca1", "alice"), ports.ProvisionInput{
		Username: "mallory",
		Password: "pw123456",
		Role:     domain.RoleClientAdmin,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAccountService_Provision_OrganizerCannotCreateAnyone(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())
	organizer := ports.Actor{ID: "o1", Username: "bob", Role: domain.RoleOrganizer}

	for _, target := range []domain.Role{domain.RoleClientAdmin, domain.RoleOrganizer} {
		_, err := svc.Provision(context.Background(), organizer, ports.ProvisionInput{
			Username: "x",
			Password: "pw123456",
			Role:     target,
		})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("target %s: expected ErrForbidden, got %v", target, err)
		}
	}
}

func TestAccountService_Provision_SuperAdminRoleRejected(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	// A second super admin is a validation error, distinct from the
	// insufficient-privilege denial.
	_, err := svc.Provision(context.Background(), superActor("sa1"), ports.ProvisionInput{
		Username: "root2",
		Password: "pw123456",
		Role:     domain.RoleSuperAdmin,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAccountService_Provision_SuperCreatesOrganizerNeedsParent(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	_, err := svc.Provision(context.Background(), superActor("sa1"), ports.ProvisionInput{
		Username: "bob",
		Password: "pw123456",
		Role:     domain.RoleOrganizer,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation without parent_admin_id, got %v", err)
	}

	alice := mustSeedAccount(t, repo, "alice", "pw123456", domain.RoleClientAdmin, true)
	bob, err := svc.Provision(context.Background(), superActor("sa1"), ports.ProvisionInput{
		Username:      "bob",
		Password:      "pw123456",
		Role:          domain.RoleOrganizer,
		ParentAdminID: alice.ID,
	})
	if err != nil {
		t.Fatalf("provision with explicit parent failed: %v", err)
	}
	if bob.ParentAdminID != alice.ID {
		t.Fatalf("organizer parent = %q, want %q", bob.ParentAdminID, alice.ID)
	}
}

func TestAccountService_Provision_ParentMustBeClientAdmin(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	organizer := mustSeedAccount(t, repo, "carol", "pw123456", domain.RoleOrganizer, true)
	_, err := svc.Provision(context.Background(), superActor("sa1"), ports.ProvisionInput{
		Username:      "bob",
		Password:      "pw123456",
		Role:          domain.RoleOrganizer,
		ParentAdminID: organizer.ID,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for non-admin parent, got %v", err)
	}
}

func TestAccountService_Provision_Duplicates(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	in := ports.ProvisionInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw123456",
		Role:     domain.RoleClientAdmin,
	}
	if _, err := svc.Provision(context.Background(), superActor("sa1"), in); err != nil {
		t.Fatalf("first provision failed: %v", err)
	}

	if _, err := svc.Provision(context.Background(), superActor("sa1"), in); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	in.Username = "alice2"
	if _, err := svc.Provision(context.Background(), superActor("sa1"), in); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAccountService_Provision_ConcurrentSameUsername(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Provision(context.Background(), superActor("sa1"), ports.ProvisionInput{
				Username: "alice",
				Password: "pw123456",
				Role:     domain.RoleClientAdmin,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var created, duplicates int
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicateUsername):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 || duplicates != attempts-1 {
		t.Fatalf("want exactly one winner, got %d created / %d duplicates", created, duplicates)
	}
}

// blindFindRepo misses every lookup, so the insert-time uniqueness guard is
// the only thing between two racing creates that both passed the fast path.
type blindFindRepo struct{ *stubAccountRepo }

func (r *blindFindRepo) FindByUsername(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (r *blindFindRepo) FindByEmail(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func TestAccountService_Provision_DuplicateSurfacedByInsert(t *testing.T) {
	repo := &blindFindRepo{newStubAccountRepo()}
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	in := ports.ProvisionInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw123456",
		Role:     domain.RoleClientAdmin,
	}
	if _, err := svc.Provision(context.Background(), superActor("sa1"), in); err != nil {
		t.Fatalf("first provision failed: %v", err)
	}

	if _, err := svc.Provision(context.Background(), superActor("sa1"), in); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername from the insert, got %v", err)
	}

	in.Username = "alice2"
	if _, err := svc.Provision(context.Background(), superActor("sa1"), in); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail from the insert, got %v", err)
	}
}

func TestAccountService_Provision_ShortPassword(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	_, err := svc.Provision(context.Background(), superActor("sa1"), ports.ProvisionInput{
		Username: "alice",
		Password: "short",
		Role:     domain.RoleClientAdmin,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAccountService_Provision_NoEmailNoNotice(t *testing.T) {
	repo := newStubAccountRepo()
	notifier := &stubEnqueuer{}
	svc := NewAccountService(repo, notifier, zerolog.Nop())

	if _, err := svc.Provision(context.Background(), superActor("sa1"), ports.ProvisionInput{
		Username: "alice",
		Password: "pw123456",
		Role:     domain.RoleClientAdmin,
	}); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	if notifier.count() != 0 {
		t.Fatalf("no notice expected without an email address")
	}
}

func TestAccountService_List_Scoping(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	alice := mustSeedAccount(t, repo, "alice", "pw123456", domain.RoleClientAdmin, true)
	carol := mustSeedAccount(t, repo, "carol", "pw123456", domain.RoleClientAdmin, true)

	bob, err := svc.Provision(context.Background(), clientActor(alice.ID, "alice"), ports.ProvisionInput{
		Username: "bob",
		Password: "pw123456",
		Role:     domain.RoleOrganizer,
	})
	if err != nil {
		t.Fatalf("provision failed: %v", err)
	}

	// Alice sees her organizer.
	got, err := svc.List(context.Background(), clientActor(alice.ID, "alice"), ports.ListAccountsInput{})
	if err != nil {
		t.Fatalf("list as alice failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != bob.ID {
		t.Fatalf("alice should see exactly bob, got %d accounts", len(got))
	}

	// A different client admin sees nothing.
	got, err = svc.List(context.Background(), clientActor(carol.ID, "carol"), ports.ListAccountsInput{})
	if err != nil {
		t.Fatalf("list as carol failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("carol should see no organizers, got %d", len(got))
	}

	// The super admin sees everyone.
	got, err = svc.List(context.Background(), superActor("sa1"), ports.ListAccountsInput{})
	if err != nil {
		t.Fatalf("list as super admin failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("super admin should see all 3 accounts, got %d", len(got))
	}

	// Client admins may not list other admins; organizers may not list at all.
	if _, err := svc.List(context.Background(), clientActor(alice.ID, "alice"), ports.ListAccountsInput{Role: domain.RoleClientAdmin}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin-role filter, got %v", err)
	}
	organizer := ports.Actor{ID: bob.ID, Username: "bob", Role: domain.RoleOrganizer}
	if _, err := svc.List(context.Background(), organizer, ports.ListAccountsInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for organizer, got %v", err)
	}
}

func TestAccountService_Mutations_SuperAdminOnly(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	target := mustSeedAccount(t, repo, "bob", "pw123456", domain.RoleOrganizer, true)

	if err := svc.Deactivate(context.Background(), clientActor("ca1", "alice"), target.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for client admin, got %v", err)
	}

	if err := svc.Deactivate(context.Background(), superActor("sa1"), target.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	got, _ := repo.FindByID(context.Background(), target.ID)
	if got.Active {
		t.Fatalf("account should be inactive")
	}

	if err := svc.Activate(context.Background(), superActor("sa1"), target.ID); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	got, _ = repo.FindByID(context.Background(), target.ID)
	if !got.Active {
		t.Fatalf("account should be active again")
	}

	if err := svc.Verify(context.Background(), superActor("sa1"), "missing-id"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_BootstrapIdempotent(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if err := svc.BootstrapSuperAdmin(context.Background(), "root", "bootpass1", "root@example.com"); err != nil {
			t.Fatalf("bootstrap run %d failed: %v", i+1, err)
		}
	}

	admins, err := repo.List(context.Background(), ports.ListAccountsFilter{Role: domain.RoleSuperAdmin})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(admins) != 1 {
		t.Fatalf("expected exactly one super admin after two bootstraps, got %d", len(admins))
	}
	if !admins[0].Active || !admins[0].Verified {
		t.Fatalf("bootstrapped super admin must be active and verified")
	}
}

// staleExistsRepo reports no super admin even when one is stored, modelling
// two processes both passing the existence check before either insert lands.
type staleExistsRepo struct{ *stubAccountRepo }

func (r *staleExistsRepo) ExistsByRole(context.Context, domain.Role) (bool, error) {
	return false, nil
}

func TestAccountService_BootstrapRaceLoserSucceeds(t *testing.T) {
	repo := &staleExistsRepo{newStubAccountRepo()}
	svc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if err := svc.BootstrapSuperAdmin(context.Background(), "root", "bootpass1", "root@example.com"); err != nil {
			t.Fatalf("bootstrap run %d failed: %v", i+1, err)
		}
	}

	admins, err := repo.List(context.Background(), ports.ListAccountsFilter{Role: domain.RoleSuperAdmin})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(admins) != 1 {
		t.Fatalf("the losing insert must not create a second super admin, got %d", len(admins))
	}
}

func TestAccountService_ProvisionThenLogin(t *testing.T) {
	repo := newStubAccountRepo()
	accountSvc := NewAccountService(repo, &stubEnqueuer{}, zerolog.Nop())
	authSvc := newTestAuthService(repo, nil)

	if _, err := accountSvc.Provision(context.Background(), superActor("sa1"), ports.ProvisionInput{
		Username: "alice",
		Password: "pw123456",
		Role:     domain.RoleClientAdmin,
	}); err != nil {
		t.Fatalf("provision failed: %v", err)
	}

	tok, account, err := authSvc.Login(context.Background(), "alice", "pw123456")
	if err != nil {
		t.Fatalf("login after provisioning failed: %v", err)
	}
	if tok == "" || account.Role != domain.RoleClientAdmin {
		t.Fatalf("unexpected login result: token=%q role=%s", tok, account.Role)
	}
}
