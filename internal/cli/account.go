package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authority/internal/authority"
	"github.com/dmitrijs2005/authority/internal/common"
)

// Bootstrap creates the first administrator. It only works on an empty store.
func (a *App) Bootstrap(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter administrator username", a.out)
	if err != nil {
		return err
	}
	if username == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}

	password, err := GetNewPassword(a.out)
	if err != nil {
		return err
	}

	if _, err := a.store.CreateFirstUser(ctx, username, password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Administrator %s created. Log in to continue.\n", username)
	return nil
}

// Login authenticates and starts a session. Users holding several roles
// choose the one to act as.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.store.Login(ctx, username, string(password))
	if err != nil {
		return err
	}

	role, err := a.chooseRole(ctx, u)
	if err != nil {
		return err
	}

	token, err := a.issuer.Issue(u.Username, string(role))
	if err != nil {
		return err
	}

	a.token, a.user, a.role = token, u, role
	a.logger.Info(ctx, "session started", "username", u.Username, "role", role)
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", u.Username, role)

	if !u.SetupComplete {
		fmt.Fprintln(a.out, "Your account setup is incomplete. Run 'setup' before anything else.")
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return nil
	}
	a.logger.Info(ctx, "session ended", "username", a.user.Username, "reason", "logout")
	a.clearSession()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Setup collects and validates the profile of the logged-in user.
func (a *App) Setup(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	var p authority.Profile
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"First name", &p.FirstName},
		{"Middle name (optional)", &p.MiddleName},
		{"Last name", &p.LastName},
		{"Preferred name (optional)", &p.PreferredName},
		{"Email", &p.Email},
	}
	for _, f := range fields {
		v, err := GetSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if err := authority.ValidateProfile(p); err != nil {
		return err
	}
	if err := a.store.CompleteAccountSetup(ctx, a.user, p); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account setup complete")
	return nil
}

// Redeem turns an invitation code into an account.
func (a *App) Redeem(ctx context.Context) error {
	code, err := GetSimpleText(a.reader, "Enter invitation code", a.out)
	if err != nil {
		return err
	}
	if !a.store.IsUserInvited(ctx, code) {
		return fmt.Errorf("invitation: %w", common.ErrorNotFound)
	}

	password, err := GetNewPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.store.RedeemInvitation(ctx, code, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account %s created. Log in and run 'setup' to finish.\n", u.Username)
	return nil
}

// Reset completes a password reset with the one-time password.
func (a *App) Reset(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter your email", a.out)
	if err != nil {
		return err
	}
	otp, err := GetSimpleText(a.reader, "Enter one-time password", a.out)
	if err != nil {
		return err
	}

	password, err := GetNewPassword(a.out)
	if err != nil {
		return err
	}

	err = a.store.CompletePasswordReset(ctx, email, otp, password)
	switch {
	case errors.Is(err, common.ErrExpiredRequest):
		return fmt.Errorf("the one-time password has expired, ask an administrator for a new one: %w", err)
	case err != nil:
		return err
	}
	fmt.Fprintln(a.out, "Password updated. You can log in now.")
	return nil
}
