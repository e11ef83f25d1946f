package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/archery/auth-system/internal/core/domain"
	"github.com/archery/auth-system/internal/core/ports"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []ports.CredentialNotice
	err   error
	woken chan struct{}
}

func newRecordingSender(err error) *recordingSender {
	return &recordingSender{err: err, woken: make(chan struct{}, 16)}
}

func (s *recordingSender) Send(_ context.Context, notice ports.CredentialNotice) error {
	s.mu.Lock()
	s.sent = append(s.sent, notice)
	s.mu.Unlock()
	s.woken <- struct{}{}
	return s.err
}

func (s *recordingSender) deliveries() []ports.CredentialNotice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.CredentialNotice, len(s.sent))
	copy(out, s.sent)
	return out
}

func waitDeliveries(t *testing.T, sender *recordingSender, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-sender.woken:
		case <-deadline:
			t.Fatalf("timed out waiting for %d deliveries, got %d", n, len(sender.deliveries()))
		}
	}
}

func TestDispatcher_DeliversNotices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := newRecordingSender(nil)
	d := NewDispatcher(2, sender, zerolog.Nop())
	d.Start(ctx)

	d.Enqueue(ports.CredentialNotice{Recipient: "a@example.com", Username: "alice", Role: domain.RoleOrganizer})
	d.Enqueue(ports.CredentialNotice{Recipient: "b@example.com", Username: "bob", Role: domain.RoleClientAdmin})

	waitDeliveries(t, sender, 2)

	got := sender.deliveries()
	names := map[string]bool{}
	for _, n := range got {
		names[n.Username] = true
	}
	if !names["alice"] || !names["bob"] {
		t.Fatalf("missing deliveries: %+v", got)
	}
}

func TestDispatcher_SameRecipientInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := newRecordingSender(nil)
	d := NewDispatcher(4, sender, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		d.Enqueue(ports.CredentialNotice{Recipient: "same@example.com", Username: "user", Password: string(rune('a' + i))})
	}

	waitDeliveries(t, sender, 5)

	got := sender.deliveries()
	for i, n := range got {
		if n.Password != string(rune('a'+i)) {
			t.Fatalf("delivery %d out of order: %+v", i, got)
		}
	}
}

func TestDispatcher_SenderFailureDoesNotStopWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := newRecordingSender(errors.New("smtp unreachable"))
	d := NewDispatcher(1, sender, zerolog.Nop())
	d.Start(ctx)

	d.Enqueue(ports.CredentialNotice{Recipient: "x@example.com", Username: "first"})
	d.Enqueue(ports.CredentialNotice{Recipient: "x@example.com", Username: "second"})

	// Both notices are attempted even though every send fails.
	waitDeliveries(t, sender, 2)

	got := sender.deliveries()
	if len(got) != 2 || got[1].Username != "second" {
		t.Fatalf("worker stopped after failure: %+v", got)
	}
}
