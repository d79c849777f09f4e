package authority

import "context"

// AddRole grants role to u. Granting a held role is a no-op.
func (s *Store) AddRole(ctx context.Context, u *User, role Role) {
	if u == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Roles.Has(role) {
		return
	}
	if u.Roles == nil {
		u.Roles = NewRoleSet()
	}
	u.Roles[role] = struct{}{}
	s.logger.Info(ctx, "role added", "username", u.Username, "role", role)
}

// RemoveRole revokes role from u. Revoking an absent role is a no-op.
// Nothing prevents a user from ending up with no roles at all.
func (s *Store) RemoveRole(ctx context.Context, u *User, role Role) {
	if u == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !u.Roles.Has(role) {
		return
	}
	delete(u.Roles, role)
	s.logger.Info(ctx, "role removed", "username", u.Username, "role", role)
	if len(u.Roles) == 0 {
		s.logger.Warn(ctx, "user has no roles left", "username", u.Username)
	}
}

// UserRoles returns u's roles in display order.
func (s *Store) UserRoles(ctx context.Context, u *User) []Role {
	if u == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return u.Roles.Slice()
}
