package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authority/internal/authority"
	"github.com/dmitrijs2005/authority/internal/common"
)

// Invite issues an invitation code for a new account.
func (a *App) Invite(ctx context.Context) error {
	if err := a.requireAdmin(ctx); err != nil {
		return err
	}

	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	if username == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	rolesText, err := GetSimpleText(a.reader, "Enter roles (e.g. student,instructor)", a.out)
	if err != nil {
		return err
	}
	roles, err := authority.ParseRoleSet(rolesText)
	if err != nil {
		return err
	}

	code, err := a.store.InviteUser(ctx, username, email, roles)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Invitation code for %s: %s\n", username, code)
	return nil
}

func (a *App) Users(ctx context.Context) error {
	if err := a.requireAdmin(ctx); err != nil {
		return err
	}
	return a.store.WriteUsers(ctx, a.out)
}

func (a *App) Invites(ctx context.Context) error {
	if err := a.requireAdmin(ctx); err != nil {
		return err
	}
	return a.store.WriteInvitations(ctx, a.out)
}

// Revoke deletes an outstanding invitation.
func (a *App) Revoke(ctx context.Context) error {
	if err := a.requireAdmin(ctx); err != nil {
		return err
	}

	code, err := GetSimpleText(a.reader, "Enter invitation code", a.out)
	if err != nil {
		return err
	}
	if _, err := a.store.InvitationByCode(ctx, code); err != nil {
		return err
	}
	a.store.DeleteInvitation(ctx, code)
	fmt.Fprintln(a.out, "Invitation revoked")
	return nil
}

// DeleteUser removes an account. Deleting yourself ends the session.
func (a *App) DeleteUser(ctx context.Context) error {
	if err := a.requireAdmin(ctx); err != nil {
		return err
	}

	u, err := a.promptUser(ctx)
	if err != nil {
		return err
	}
	if !a.store.DeleteUser(ctx, u) {
		return common.ErrorNotFound
	}
	fmt.Fprintf(a.out, "User %s deleted\n", u.Username)

	if u == a.user {
		a.clearSession()
	}
	return nil
}

func (a *App) AddRole(ctx context.Context) error {
	return a.changeRole(ctx, a.store.AddRole, "granted to")
}

func (a *App) RemoveRole(ctx context.Context) error {
	return a.changeRole(ctx, a.store.RemoveRole, "revoked from")
}

func (a *App) changeRole(ctx context.Context, apply func(context.Context, *authority.User, authority.Role), verb string) error {
	if err := a.requireAdmin(ctx); err != nil {
		return err
	}

	u, err := a.promptUser(ctx)
	if err != nil {
		return err
	}
	text, err := GetSimpleText(a.reader, "Enter role", a.out)
	if err != nil {
		return err
	}
	role, err := authority.ParseRole(text)
	if err != nil {
		return err
	}

	apply(ctx, u, role)
	fmt.Fprintf(a.out, "Role %s %s %s, now %s\n", role, verb, u.Username,
		authority.NewRoleSet(a.store.UserRoles(ctx, u)...))
	return nil
}

func (a *App) promptUser(ctx context.Context) (*authority.User, error) {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return nil, err
	}
	u, err := a.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return u, nil
}

// RequestReset issues a password reset for a registered email. Expired
// requests for that email are dropped first so the new one-time password is
// the one a later reset checks.
func (a *App) RequestReset(ctx context.Context) error {
	if err := a.requireAdmin(ctx); err != nil {
		return err
	}

	email, err := GetSimpleText(a.reader, "Enter user email", a.out)
	if err != nil {
		return err
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	if !a.store.UserExistsForEmail(ctx, email) {
		return fmt.Errorf("no user with email %q: %w", email, common.ErrorNotFound)
	}

	if n := a.dropExpiredRequests(ctx, email); n > 0 {
		a.logger.Info(ctx, "stale reset requests dropped", "email", email, "count", n)
	}
	if _, err := a.store.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Password reset request created for %s\n", email)
	return nil
}

func (a *App) dropExpiredRequests(ctx context.Context, email string) int {
	n := 0
	for {
		req, err := a.store.FindRequestByEmail(ctx, email)
		if err != nil || !a.store.IsExpired(req) || !a.store.RemoveRequest(ctx, req) {
			return n
		}
		n++
	}
}
