package authority

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/authority/internal/common"
)

// InviteUser issues an invitation for username/email granting roles and
// returns its code. The code is delivered through the store's Notifier.
func (s *Store) InviteUser(ctx context.Context, username, email string, roles RoleSet) (string, error) {
	if len(roles) == 0 {
		return "", common.ErrEmptyRoleSet
	}

	s.mu.Lock()
	code, err := s.uniqueCodeLocked()
	if err != nil {
		s.mu.Unlock()
		s.logger.Error(ctx, "invitation code generation failed", "error", err)
		return "", err
	}
	inv := &Invitation{
		Code:      code,
		Username:  username,
		Email:     email,
		Roles:     roles.Clone(),
		CreatedAt: s.now(),
	}
	s.invitations[code] = inv
	s.inviteOrder = append(s.inviteOrder, code)
	issued := *inv
	issued.Roles = inv.Roles.Clone()
	s.mu.Unlock()

	s.logger.Info(ctx, "invitation issued", "username", username, "roles", issued.Roles.String())
	s.notifier.InvitationIssued(ctx, issued)
	return code, nil
}

func (s *Store) uniqueCodeLocked() (string, error) {
	for range maxCodeAttempts {
		code, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("generate invitation code: %w", err)
		}
		if _, taken := s.invitations[code]; !taken && code != "" {
			return code, nil
		}
	}
	return "", fmt.Errorf("generate invitation code: %w: no unique code after %d attempts",
		common.ErrorInternal, maxCodeAttempts)
}

// IsUserInvited reports whether code belongs to an outstanding invitation.
func (s *Store) IsUserInvited(ctx context.Context, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.invitations[code]
	return ok
}

// InvitationByCode returns a copy of the outstanding invitation for code.
func (s *Store) InvitationByCode(ctx context.Context, code string) (*Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[code]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *inv
	c.Roles = inv.Roles.Clone()
	return &c, nil
}

// DeleteInvitation withdraws the invitation for code; unknown codes are ignored.
func (s *Store) DeleteInvitation(ctx context.Context, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteInvitationLocked(code) {
		s.logger.Info(ctx, "invitation deleted", "code", code)
	}
}

func (s *Store) deleteInvitationLocked(code string) bool {
	if _, ok := s.invitations[code]; !ok {
		return false
	}
	delete(s.invitations, code)
	s.inviteOrder = slices.DeleteFunc(s.inviteOrder, func(c string) bool { return c == code })
	return true
}

// Invitations returns copies of the outstanding invitations in issue order.
func (s *Store) Invitations(ctx context.Context) []*Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Invitation, 0, len(s.inviteOrder))
	for _, code := range s.inviteOrder {
		c := *s.invitations[code]
		c.Roles = c.Roles.Clone()
		out = append(out, &c)
	}
	return out
}

// RedeemInvitation consumes code and creates the invited account with the
// given password and the invitation's roles. Validation, creation and
// removal happen under one lock, so a code can be redeemed at most once.
func (s *Store) RedeemInvitation(ctx context.Context, code, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[code]
	if !ok {
		s.logger.Warn(ctx, "redemption with unknown invitation code")
		return nil, fmt.Errorf("redeem invitation: %w", common.ErrorNotFound)
	}
	if len(inv.Roles) == 0 {
		return nil, fmt.Errorf("redeem invitation: %w", common.ErrEmptyRoleSet)
	}

	u := s.addUserLocked(inv.Username, password, inv.Roles)
	s.deleteInvitationLocked(code)
	s.logger.Info(ctx, "invitation redeemed", "username", u.Username, "roles", u.Roles.String())
	return u, nil
}
