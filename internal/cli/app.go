package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/authority/internal/authority"
	"github.com/dmitrijs2005/authority/internal/config"
	"github.com/dmitrijs2005/authority/internal/logging"
	"github.com/dmitrijs2005/authority/internal/session"
)

// App is the interactive client state: the store it drives and the
// session of the user currently logged in, if any.
type App struct {
	store  *authority.Store
	issuer *session.Issuer
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	token string
	user  *authority.User
	role  authority.Role
}

// NewApp wires an App reading commands from in and writing to out.
func NewApp(store *authority.Store, cfg *config.Config, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		store:  store,
		issuer: session.NewIssuer(cfg.SessionSecret, cfg.SessionValidity),
		logger: logger.With("component", "cli"),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run prints a greeting and serves commands until EOF, exit, or ctx is done.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Account authority (type 'help' for commands)")
	if len(a.store.AllUsers(ctx)) == 0 {
		fmt.Fprintln(a.out, "No accounts yet. Run 'bootstrap' to create the first administrator.")
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	return fmt.Sprintf(" (%s %s)", a.user.Username, a.role)
}

func (a *App) clearSession() {
	a.token = ""
	a.user = nil
	a.role = ""
}
