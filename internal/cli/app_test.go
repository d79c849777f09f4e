package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authority/internal/authority"
	"github.com/dmitrijs2005/authority/internal/common"
	"github.com/dmitrijs2005/authority/internal/config"
	"github.com/dmitrijs2005/authority/internal/logging"
	"github.com/dmitrijs2005/authority/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, input string, opts ...authority.Option) (*App, *authority.Store, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	store := authority.New(append([]authority.Option{authority.WithLogger(logging.Discard())}, opts...)...)
	out := &bytes.Buffer{}
	return NewApp(store, cfg, logging.Discard(), strings.NewReader(input), out), store, out
}

// startSession logs u in as role without going through the prompts.
func startSession(t *testing.T, a *App, u *authority.User, role authority.Role) {
	t.Helper()
	tok, err := a.issuer.Issue(u.Username, string(role))
	require.NoError(t, err)
	a.token, a.user, a.role = tok, u, role
}

// completeSetup gives u a valid profile so admin commands accept it.
func completeSetup(t *testing.T, store *authority.Store, u *authority.User) {
	t.Helper()
	require.NoError(t, store.CompleteAccountSetup(context.Background(), u, authority.Profile{
		FirstName: "Site", LastName: "Admin", Email: u.Username + "@example.com",
	}))
}

func fixed(v string) func() (string, error) {
	return func() (string, error) { return v, nil }
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestBootstrapThenLogin(t *testing.T) {
	ctx := context.Background()
	app, _, out := newTestApp(t, "admin\nadmin\n")
	stubPasswords(t, "pw", "pw", "pw")

	require.NoError(t, app.Bootstrap(ctx))
	require.NoError(t, app.Login(ctx))

	assert.True(t, app.isLoggedIn())
	assert.Equal(t, authority.RoleAdmin, app.role)
	assert.Equal(t, " (admin ADMIN)", app.getStatus())
	assert.Contains(t, out.String(), "setup is incomplete")
}

func TestBootstrap_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("already bootstrapped", func(t *testing.T) {
		app, store, _ := newTestApp(t, "second\n")
		_, err := store.CreateFirstUser(ctx, "first", "pw")
		require.NoError(t, err)
		stubPasswords(t, "pw", "pw")

		require.ErrorIs(t, app.Bootstrap(ctx), common.ErrAlreadyBootstrapped)
		assert.Len(t, store.AllUsers(ctx), 1)
	})

	t.Run("password mismatch", func(t *testing.T) {
		app, store, _ := newTestApp(t, "admin\n")
		stubPasswords(t, "pw", "wp")

		require.ErrorIs(t, app.Bootstrap(ctx), common.ErrPasswordMismatch)
		assert.Empty(t, store.AllUsers(ctx))
	})

	t.Run("empty username", func(t *testing.T) {
		app, _, _ := newTestApp(t, "\n")

		require.ErrorIs(t, app.Bootstrap(ctx), common.ErrorValidation)
	})
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	app, store, _ := newTestApp(t, "admin\nghost\n")
	_, err := store.CreateFirstUser(ctx, "admin", "pw")
	require.NoError(t, err)
	stubPasswords(t, "wrong", "pw")

	require.ErrorIs(t, app.Login(ctx), common.ErrorInvalidCredentials)
	require.ErrorIs(t, app.Login(ctx), common.ErrorInvalidCredentials)
	assert.False(t, app.isLoggedIn())
}

func TestLogin_RoleSelection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		choice   string
		wantRole authority.Role
		wantErr  error
	}{
		{name: "held role", choice: "instructor", wantRole: authority.RoleInstructor},
		{name: "role not held", choice: "admin", wantErr: common.ErrorForbidden},
		{name: "unknown role", choice: "janitor", wantErr: common.ErrorValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, store, _ := newTestApp(t, "bob\n"+tt.choice+"\n")
			_, err := store.CreateUser(ctx, "bob", "pw", authority.NewRoleSet(authority.RoleStudent, authority.RoleInstructor))
			require.NoError(t, err)
			stubPasswords(t, "pw")

			err = app.Login(ctx)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, app.isLoggedIn())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, app.role)
		})
	}
}

func TestLogin_UserWithoutRoles(t *testing.T) {
	ctx := context.Background()
	app, store, _ := newTestApp(t, "bob\n")
	u, err := store.CreateUser(ctx, "bob", "pw", authority.NewRoleSet(authority.RoleStudent))
	require.NoError(t, err)
	store.RemoveRole(ctx, u, authority.RoleStudent)
	stubPasswords(t, "pw")

	require.ErrorIs(t, app.Login(ctx), common.ErrorForbidden)
	assert.False(t, app.isLoggedIn())
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	app, store, out := newTestApp(t, "")
	u, err := store.CreateFirstUser(ctx, "admin", "pw")
	require.NoError(t, err)
	startSession(t, app, u, authority.RoleAdmin)

	require.NoError(t, app.Logout(ctx))
	assert.False(t, app.isLoggedIn())
	assert.Equal(t, "", app.getStatus())
	assert.Contains(t, out.String(), "Logged out")

	require.NoError(t, app.Logout(ctx), "logout without a session is a no-op")
}

func TestAdminCommands_Guard(t *testing.T) {
	ctx := context.Background()
	app, store, _ := newTestApp(t, "")
	student, err := store.CreateUser(ctx, "stu", "pw", authority.NewRoleSet(authority.RoleStudent, authority.RoleAdmin))
	require.NoError(t, err)

	cmds := map[string]func(context.Context) error{
		"invite":   app.Invite,
		"users":    app.Users,
		"invites":  app.Invites,
		"revoke":   app.Revoke,
		"deluser":  app.DeleteUser,
		"addrole":  app.AddRole,
		"rmrole":   app.RemoveRole,
		"resetreq": app.RequestReset,
	}

	for name, cmd := range cmds {
		app.clearSession()
		require.ErrorIs(t, cmd(ctx), common.ErrorForbidden, "%s without session", name)

		startSession(t, app, student, authority.RoleStudent)
		require.ErrorIs(t, cmd(ctx), common.ErrorForbidden, "%s as student", name)
	}

	// ADMIN session whose role was revoked meanwhile
	startSession(t, app, student, authority.RoleAdmin)
	store.RemoveRole(ctx, student, authority.RoleAdmin)
	require.ErrorIs(t, app.Users(ctx), common.ErrorForbidden)
}

func TestSession_ExpiredTokenEndsSession(t *testing.T) {
	ctx := context.Background()
	app, store, _ := newTestApp(t, "")
	u, err := store.CreateFirstUser(ctx, "admin", "pw")
	require.NoError(t, err)

	app.issuer = session.NewIssuer("k", -time.Minute)
	startSession(t, app, u, authority.RoleAdmin)

	require.ErrorIs(t, app.Users(ctx), common.ErrTokenExpired)
	assert.False(t, app.isLoggedIn())
}

func TestSession_TamperedRole(t *testing.T) {
	ctx := context.Background()
	app, store, _ := newTestApp(t, "")
	u, err := store.CreateUser(ctx, "stu", "pw", authority.NewRoleSet(authority.RoleStudent))
	require.NoError(t, err)

	startSession(t, app, u, authority.RoleStudent)
	app.role = authority.RoleAdmin

	require.ErrorIs(t, app.Users(ctx), common.ErrInvalidToken)
	assert.False(t, app.isLoggedIn())
}

func TestInviteThenRedeem(t *testing.T) {
	ctx := context.Background()
	app, store, out := newTestApp(t,
		"carol\ncarol@example.com\nstudent, instructor\ncode-1\n",
		authority.WithCodeGenerator(fixed("code-1")))
	admin, err := store.CreateFirstUser(ctx, "admin", "pw")
	require.NoError(t, err)
	completeSetup(t, store, admin)
	startSession(t, app, admin, authority.RoleAdmin)
	stubPasswords(t, "carolpw", "carolpw")

	require.NoError(t, app.Invite(ctx))
	assert.Contains(t, out.String(), "Invitation code for carol: code-1")
	assert.True(t, store.IsUserInvited(ctx, "code-1"))

	require.NoError(t, app.Redeem(ctx))
	assert.False(t, store.IsUserInvited(ctx, "code-1"))

	u, err := store.Login(ctx, "carol", "carolpw")
	require.NoError(t, err)
	assert.Equal(t, []authority.Role{authority.RoleStudent, authority.RoleInstructor}, store.UserRoles(ctx, u))
	assert.False(t, u.SetupComplete)
}

func TestInvite_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "no username", input: "\n", wantErr: common.ErrorValidation},
		{name: "unknown role", input: "dan\ndan@example.com\nwizard\n", wantErr: common.ErrorValidation},
		{name: "no roles", input: "dan\ndan@example.com\n\n", wantErr: common.ErrEmptyRoleSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, store, _ := newTestApp(t, tt.input)
			admin, err := store.CreateFirstUser(ctx, "admin", "pw")
			require.NoError(t, err)
			completeSetup(t, store, admin)
			startSession(t, app, admin, authority.RoleAdmin)

			require.ErrorIs(t, app.Invite(ctx), tt.wantErr)
			assert.Empty(t, store.Invitations(ctx))
		})
	}
}

func TestRedeem_UnknownCodeDoesNotAskForPassword(t *testing.T) {
	ctx := context.Background()
	app, store, _ := newTestApp(t, "nope\n")
	stubPasswords(t)

	require.ErrorIs(t, app.Redeem(ctx), common.ErrorNotFound)
	assert.Empty(t, store.AllUsers(ctx))
}

func TestRedeem_PasswordMismatchKeepsInvitation(t *testing.T) {
	ctx := context.Background()
	app, store, _ := newTestApp(t, "code-1\n", authority.WithCodeGenerator(fixed("code-1")))
	_, err := store.InviteUser(ctx, "carol", "carol@example.com", authority.NewRoleSet(authority.RoleStudent))
	require.NoError(t, err)
	stubPasswords(t, "a", "b")

	require.ErrorIs(t, app.Redeem(ctx), common.ErrPasswordMismatch)
	assert.True(t, store.IsUserInvited(ctx, "code-1"))
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	app, store, out := newTestApp(t, "code-1\ncode-1\n", authority.WithCodeGenerator(fixed("code-1")))
	admin, err := store.CreateFirstUser(ctx, "admin", "pw")
	require.NoError(t, err)
	completeSetup(t, store, admin)
	_, err = store.InviteUser(ctx, "carol", "", authority.NewRoleSet(authority.RoleStudent))
	require.NoError(t, err)
	startSession(t, app, admin, authority.RoleAdmin)

	require.NoError(t, app.Revoke(ctx))
	assert.Contains(t, out.String(), "Invitation revoked")
	assert.False(t, store.IsUserInvited(ctx, "code-1"))

	require.ErrorIs(t, app.Revoke(ctx), common.ErrorNotFound)
}

func TestUsersAndInvitesListing(t *testing.T) {
	ctx := context.Background()
	app, store, out := newTestApp(t, "", authority.WithCodeGenerator(fixed("code-7")))
	admin, err := store.CreateFirstUser(ctx, "admin", "pw")
	require.NoError(t, err)
	completeSetup(t, store, admin)
	_, err = store.CreateUser(ctx, "stu", "pw", authority.NewRoleSet(authority.RoleStudent))
	require.NoError(t, err)
	_, err = store.InviteUser(ctx, "carol", "carol@example.com", authority.NewRoleSet(authority.RoleInstructor))
	require.NoError(t, err)
	startSession(t, app, admin, authority.RoleAdmin)

	require.NoError(t, app.Users(ctx))
	require.NoError(t, app.Invites(ctx))

	s := out.String()
	assert.Contains(t, s, "stu")
	assert.Contains(t, s, "code-7")
	assert.Contains(t, s, "carol@example.com")
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	app, store, _ := newTestApp(t, "stu\nghost\nadmin\n")
	admin, err := store.CreateFirstUser(ctx, "admin", "pw")
	require.NoError(t, err)
	completeSetup(t, store, admin)
	_, err = store.CreateUser(ctx, "stu", "pw", authority.NewRoleSet(authority.RoleStudent))
	require.NoError(t, err)
	startSession(t, app, admin, authority.RoleAdmin)

	require.NoError(t, app.DeleteUser(ctx))
	_, err = store.FindUserByUsername(ctx, "stu")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.ErrorIs(t, app.DeleteUser(ctx), common.ErrorNotFound)

	require.NoError(t, app.DeleteUser(ctx))
	assert.False(t, app.isLoggedIn(), "deleting yourself ends the session")
	assert.Empty(t, store.AllUsers(ctx))
}

func TestAddAndRemoveRole(t *testing.T) {
	ctx := context.Background()
	app, store, out := newTestApp(t, "stu\ninstructor\nstu\nstudent\nstu\nbogus\n")
	admin, err := store.CreateFirstUser(ctx, "admin", "pw")
	require.NoError(t, err)
	completeSetup(t, store, admin)
	stu, err := store.CreateUser(ctx, "stu", "pw", authority.NewRoleSet(authority.RoleStudent))
	require.NoError(t, err)
	startSession(t, app, admin, authority.RoleAdmin)

	require.NoError(t, app.AddRole(ctx))
	assert.Contains(t, out.String(), "Role INSTRUCTOR granted to stu, now [STUDENT, INSTRUCTOR]")

	require.NoError(t, app.RemoveRole(ctx))
	assert.Equal(t, []authority.Role{authority.RoleInstructor}, store.UserRoles(ctx, stu))

	require.ErrorIs(t, app.AddRole(ctx), common.ErrorValidation)
}

func TestSetup(t *testing.T) {
	ctx := context.Background()

	t.Run("valid profile", func(t *testing.T) {
		app, store, _ := newTestApp(t, "Ada\n\nLovelace\nAda\nada@example.com\n")
		u, err := store.CreateFirstUser(ctx, "ada", "pw")
		require.NoError(t, err)
		startSession(t, app, u, authority.RoleAdmin)

		require.NoError(t, app.Setup(ctx))
		assert.True(t, u.SetupComplete)
		assert.Equal(t, "ada@example.com", u.Email())
		assert.True(t, store.UserExistsForEmail(ctx, "ADA@example.com"))
	})

	t.Run("invalid profile is not stored", func(t *testing.T) {
		app, store, _ := newTestApp(t, "Ada\n\nLovelace\n\nnot-an-email\n")
		u, err := store.CreateFirstUser(ctx, "ada", "pw")
		require.NoError(t, err)
		startSession(t, app, u, authority.RoleAdmin)

		require.ErrorIs(t, app.Setup(ctx), common.ErrorValidation)
		assert.False(t, u.SetupComplete)
	})

	t.Run("requires session", func(t *testing.T) {
		app, _, _ := newTestApp(t, "")
		require.ErrorIs(t, app.Setup(ctx), common.ErrorForbidden)
	})
}

// resetFixture holds an admin session and a set-up user ada@example.com
// whose password is "old".
func resetFixture(t *testing.T, input string, opts ...authority.Option) (*App, *authority.Store) {
	t.Helper()
	ctx := context.Background()
	app, store, _ := newTestApp(t, input, opts...)

	admin, err := store.CreateFirstUser(ctx, "admin", "pw")
	require.NoError(t, err)
	completeSetup(t, store, admin)
	startSession(t, app, admin, authority.RoleAdmin)

	ada, err := store.CreateUser(ctx, "ada", "old", authority.NewRoleSet(authority.RoleStudent))
	require.NoError(t, err)
	require.NoError(t, store.CompleteAccountSetup(ctx, ada, authority.Profile{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	}))
	return app, store
}

func TestRequestResetThenReset(t *testing.T) {
	ctx := context.Background()
	app, store := resetFixture(t,
		"ada@example.com\nada@example.com\n000000\nada@example.com\n123456\n",
		authority.WithOTPGenerator(fixed("123456")))
	stubPasswords(t, "new", "new", "new", "new")

	require.NoError(t, app.RequestReset(ctx))

	require.ErrorIs(t, app.Reset(ctx), common.ErrOtpMismatch)
	require.NoError(t, app.Reset(ctx))

	_, err := store.Login(ctx, "ada", "new")
	require.NoError(t, err)
	_, err = store.FindRequestByEmail(ctx, "ada@example.com")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRequestReset_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "unknown email", input: "nobody@example.com\n", wantErr: common.ErrorNotFound},
		{name: "empty email", input: "\n", wantErr: common.ErrorValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, store := resetFixture(t, tt.input)

			require.ErrorIs(t, app.RequestReset(ctx), tt.wantErr)
			assert.Empty(t, store.ResetRequests(ctx))
		})
	}

	t.Run("guest", func(t *testing.T) {
		app, store := resetFixture(t, "ada@example.com\n")
		app.clearSession()

		require.ErrorIs(t, app.RequestReset(ctx), common.ErrorForbidden)
		assert.Empty(t, store.ResetRequests(ctx))
	})
}

func TestRequestReset_ReplacesExpiredRequest(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2024, 10, 8, 12, 0, 0, 0, time.UTC)}
	otps := []string{"111111", "222222"}
	nextOTP := func() (string, error) {
		otp := otps[0]
		otps = otps[1:]
		return otp, nil
	}
	app, store := resetFixture(t,
		"ada@example.com\nada@example.com\nada@example.com\n222222\n",
		authority.WithClock(clock.Now),
		authority.WithOTPGenerator(nextOTP))
	stubPasswords(t, "new", "new")

	require.NoError(t, app.RequestReset(ctx))
	clock.Advance(73 * time.Hour)
	require.NoError(t, app.RequestReset(ctx))

	reqs := store.ResetRequests(ctx)
	require.Len(t, reqs, 1, "the expired request is dropped")
	assert.Equal(t, "222222", reqs[0].OneTimePassword)

	require.NoError(t, app.Reset(ctx))
	_, err := store.Login(ctx, "ada", "new")
	require.NoError(t, err)
}

func TestRequestReset_KeepsLiveRequest(t *testing.T) {
	ctx := context.Background()
	app, store := resetFixture(t, "ada@example.com\nada@example.com\n")

	require.NoError(t, app.RequestReset(ctx))
	require.NoError(t, app.RequestReset(ctx))

	assert.Len(t, store.ResetRequests(ctx), 2)
}

func TestAdminCommands_RequireCompletedSetup(t *testing.T) {
	ctx := context.Background()
	app, store, out := newTestApp(t, "admin\nFirst\n\nAdmin\n\nadmin@example.com\n")
	_, err := store.CreateFirstUser(ctx, "admin", "pw")
	require.NoError(t, err)
	stubPasswords(t, "pw")

	require.NoError(t, app.Login(ctx))
	assert.Contains(t, out.String(), "Run 'setup' before anything else")

	require.ErrorIs(t, app.Users(ctx), common.ErrorForbidden)
	require.ErrorIs(t, app.Invite(ctx), common.ErrorForbidden)

	require.NoError(t, app.Setup(ctx))
	require.NoError(t, app.Users(ctx))
}

func TestReset_Expired(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2024, 10, 8, 12, 0, 0, 0, time.UTC)}
	app, store, _ := newTestApp(t, "ada@example.com\n123456\n",
		authority.WithClock(clock.Now),
		authority.WithResetTTL(time.Hour),
		authority.WithOTPGenerator(fixed("123456")))
	_, err := store.RequestPasswordReset(ctx, "ada@example.com")
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	stubPasswords(t, "new", "new")

	require.ErrorIs(t, app.Reset(ctx), common.ErrExpiredRequest)
}

func TestRun_GreetsAndServes(t *testing.T) {
	capturePrintln(t)
	app, _, out := newTestApp(t, "help\nexit\n")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "Run 'bootstrap'")
}
