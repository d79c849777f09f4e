package authority

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a settable clock for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 10, 8, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier captures delivered secrets.
type recordingNotifier struct {
	mu          sync.Mutex
	invitations []Invitation
	resets      []ResetRequest
}

func (n *recordingNotifier) InvitationIssued(_ context.Context, inv Invitation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invitations = append(n.invitations, inv)
}

func (n *recordingNotifier) ResetRequested(_ context.Context, req ResetRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, req)
}

func sequenceGenerator(prefix string) func() (string, error) {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n), nil
	}
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	base := []Option{WithClock(clock.Now)}
	return New(append(base, opts...)...), clock
}

// newBootstrappedStore returns a store holding the "admin"/"adminpass" bootstrap admin.
func newBootstrappedStore(t *testing.T, opts ...Option) (*Store, *User, *fakeClock) {
	t.Helper()
	s, clock := newTestStore(t, opts...)
	admin, err := s.CreateFirstUser(context.Background(), "admin", "adminpass")
	if err != nil {
		t.Fatalf("CreateFirstUser: %v", err)
	}
	return s, admin, clock
}
