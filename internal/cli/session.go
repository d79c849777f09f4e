package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/authority/internal/authority"
	"github.com/dmitrijs2005/authority/internal/common"
)

// requireSession verifies the held token. An expired or invalid token ends
// the session.
func (a *App) requireSession(ctx context.Context) error {
	if !a.isLoggedIn() {
		return fmt.Errorf("%w: login required", common.ErrorForbidden)
	}
	claims, err := a.issuer.Parse(a.token)
	if err != nil {
		a.logger.Info(ctx, "session ended", "username", a.user.Username, "reason", err)
		a.clearSession()
		if errors.Is(err, common.ErrTokenExpired) {
			return fmt.Errorf("session expired, please log in again: %w", err)
		}
		return err
	}
	if claims.Username != a.user.Username || claims.Role != string(a.role) {
		a.clearSession()
		return common.ErrInvalidToken
	}
	return nil
}

// requireAdmin additionally demands that the session acts as ADMIN, that
// the user still holds that role and that their account setup is complete.
func (a *App) requireAdmin(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if a.role != authority.RoleAdmin || !slices.Contains(a.store.UserRoles(ctx, a.user), authority.RoleAdmin) {
		a.logger.Warn(ctx, "admin command refused", "username", a.user.Username, "role", a.role)
		return fmt.Errorf("%w: administrator role required", common.ErrorForbidden)
	}
	if !a.user.SetupComplete {
		return fmt.Errorf("%w: complete account setup first", common.ErrorForbidden)
	}
	return nil
}

// chooseRole picks the role to act as. A single role is taken as is;
// otherwise the user is asked to pick one of theirs.
func (a *App) chooseRole(ctx context.Context, u *authority.User) (authority.Role, error) {
	roles := a.store.UserRoles(ctx, u)
	switch len(roles) {
	case 0:
		return "", fmt.Errorf("%w: account has no roles", common.ErrorForbidden)
	case 1:
		return roles[0], nil
	}

	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Select role %s", authority.NewRoleSet(roles...)), a.out)
	if err != nil {
		return "", err
	}
	r, err := authority.ParseRole(answer)
	if err != nil {
		return "", err
	}
	if !slices.Contains(roles, r) {
		return "", fmt.Errorf("%w: role %s not granted", common.ErrorForbidden, r)
	}
	return r, nil
}
