// Package authority implements the in-memory account authority: the single
// owner of users, invitations and password reset requests.
//
// A Store is safe for concurrent use. Every exported method runs under one
// store-wide mutex, and the multi-step protocols (RedeemInvitation,
// CompletePasswordReset) execute as a single critical section so a code or
// one-time password cannot be consumed twice.
//
// All state lives in process memory and is lost on restart.
package authority

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/authority/internal/common"
	"github.com/dmitrijs2005/authority/internal/logging"
	"github.com/google/uuid"
)

// maxCodeAttempts bounds retries when a generated invitation code collides
// with an outstanding one.
const maxCodeAttempts = 8

// Store owns the user, invitation and reset-request registries.
type Store struct {
	mu sync.Mutex

	users       []*User
	invitations map[string]*Invitation
	inviteOrder []string
	resets      []*ResetRequest

	now      func() time.Time
	newCode  func() (string, error)
	newOTP   func() (string, error)
	resetTTL time.Duration
	logger   logging.Logger
	notifier Notifier
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for state transitions. nil is ignored.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, mostly for tests of reset expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCodeGenerator overrides the invitation code generator.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Store) {
		if gen != nil {
			s.newCode = gen
		}
	}
}

// WithOTPGenerator overrides the one-time password generator.
func WithOTPGenerator(gen func() (string, error)) Option {
	return func(s *Store) {
		if gen != nil {
			s.newOTP = gen
		}
	}
}

// WithResetTTL sets how long reset requests stay valid. Non-positive values
// keep the default.
func WithResetTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithNotifier sets where invitation codes and one-time passwords are
// delivered. Defaults to a LogNotifier on the store logger.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// New constructs an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		invitations: make(map[string]*Invitation),
		now:         time.Now,
		newCode:     newUUIDCode,
		newOTP:      func() (string, error) { return common.GenerateNumericOTP(common.OTPDigits) },
		resetTTL:    common.DefaultResetRequestTTL,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "authority")
	if s.notifier == nil {
		s.notifier = NewLogNotifier(s.logger)
	}
	return s
}

func newUUIDCode() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
