package authority

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/authority/internal/common"
)

// RequestPasswordReset records a reset request for email with a fresh
// one-time password that expires after the store's reset TTL. The email is
// not required to belong to a registered user, and earlier requests for the
// same email are kept.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) (*ResetRequest, error) {
	otp, err := s.newOTP()
	if err != nil {
		s.logger.Error(ctx, "otp generation failed", "error", err)
		return nil, fmt.Errorf("generate one-time password: %w", err)
	}

	s.mu.Lock()
	now := s.now()
	req := &ResetRequest{
		Email:           email,
		OneTimePassword: otp,
		ExpirationTime:  now.Add(s.resetTTL),
		CreatedAt:       now,
	}
	s.resets = append(s.resets, req)
	issued := *req
	s.mu.Unlock()

	s.logger.Info(ctx, "password reset requested", "email", email, "expires_at", issued.ExpirationTime)
	s.notifier.ResetRequested(ctx, issued)
	return req, nil
}

// FindRequestByEmail returns the oldest outstanding request for email
// (exact match). Expired requests are still returned.
func (s *Store) FindRequestByEmail(ctx context.Context, email string) (*ResetRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req := s.findRequestLocked(email); req != nil {
		return req, nil
	}
	return nil, common.ErrorNotFound
}

func (s *Store) findRequestLocked(email string) *ResetRequest {
	for _, r := range s.resets {
		if r.Email == email {
			return r
		}
	}
	return nil
}

// IsExpired evaluates req against the store clock. A nil request is not
// expired.
func (s *Store) IsExpired(req *ResetRequest) bool {
	if req == nil {
		return false
	}
	return req.IsExpired(s.now())
}

// RemoveRequest deletes req (matched by identity) and reports whether it was present.
func (s *Store) RemoveRequest(ctx context.Context, req *ResetRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeRequestLocked(req)
}

func (s *Store) removeRequestLocked(req *ResetRequest) bool {
	i := slices.Index(s.resets, req)
	if i < 0 {
		return false
	}
	s.resets = slices.Delete(s.resets, i, i+1)
	return true
}

// CompletePasswordReset checks otp against the oldest request for email and,
// if valid, sets the matching user's password and consumes the request.
//
// Failures, in evaluation order: common.ErrorNotFound (no request),
// common.ErrExpiredRequest, common.ErrOtpMismatch, common.ErrorNotFound (no
// user with that email). The request is left in place on every failure.
func (s *Store) CompletePasswordReset(ctx context.Context, email, otp, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := s.findRequestLocked(email)
	if req == nil {
		s.logger.Warn(ctx, "reset without request", "email", email)
		return fmt.Errorf("complete reset: %w", common.ErrorNotFound)
	}
	if req.IsExpired(s.now()) {
		s.logger.Warn(ctx, "reset with expired request", "email", email)
		return common.ErrExpiredRequest
	}
	if !checkSecret(req.OneTimePassword, otp) {
		s.logger.Warn(ctx, "reset with wrong one-time password", "email", email)
		return common.ErrOtpMismatch
	}
	if err := s.updatePasswordLocked(ctx, email, newPassword); err != nil {
		return fmt.Errorf("complete reset: %w", err)
	}

	s.removeRequestLocked(req)
	s.logger.Info(ctx, "password reset completed", "email", email)
	return nil
}

// ResetRequests returns copies of all outstanding requests in insertion order.
func (s *Store) ResetRequests(ctx context.Context) []ResetRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ResetRequest, len(s.resets))
	for i, r := range s.resets {
		out[i] = *r
	}
	return out
}

// EvictExpired drops every expired reset request and returns how many were removed.
func (s *Store) EvictExpired(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	before := len(s.resets)
	s.resets = slices.DeleteFunc(s.resets, func(r *ResetRequest) bool { return r.IsExpired(now) })
	n := before - len(s.resets)
	if n > 0 {
		s.logger.Info(ctx, "expired reset requests evicted", "count", n)
	}
	return n
}

// RunEvictor calls EvictExpired every interval until ctx is cancelled.
func (s *Store) RunEvictor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.EvictExpired(ctx)
		case <-ctx.Done():
			return
		}
	}
}
