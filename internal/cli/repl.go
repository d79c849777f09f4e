package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Bootstrap(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Setup(ctx context.Context) error
	Invite(ctx context.Context) error
	Redeem(ctx context.Context) error
	Users(ctx context.Context) error
	Invites(ctx context.Context) error
	Revoke(ctx context.Context) error
	DeleteUser(ctx context.Context) error
	AddRole(ctx context.Context) error
	RemoveRole(ctx context.Context) error
	RequestReset(ctx context.Context) error
	Reset(ctx context.Context) error
}

const (
	helpGuest = "Available commands: bootstrap, login, redeem, reset, exit"
	helpUser  = "Available commands: setup, logout, exit\n" +
		"Admin commands: users, invites, invite, revoke, deluser, addrole, rmrole, resetreq"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The first token of a line is the command; further tokens are ignored and
// handlers prompt for what they need. The loop ends on EOF, on "exit" or
// "quit", or when ctx is cancelled.
//
// A handler's error is printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("auth%s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var handler func(context.Context) error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}
		case "bootstrap":
			handler = a.Bootstrap
		case "login":
			handler = a.Login
		case "logout":
			handler = a.Logout
		case "setup":
			handler = a.Setup
		case "invite":
			handler = a.Invite
		case "redeem":
			handler = a.Redeem
		case "users":
			handler = a.Users
		case "invites":
			handler = a.Invites
		case "revoke":
			handler = a.Revoke
		case "deluser":
			handler = a.DeleteUser
		case "addrole":
			handler = a.AddRole
		case "rmrole":
			handler = a.RemoveRole
		case "resetreq":
			handler = a.RequestReset
		case "reset":
			handler = a.Reset
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if handler != nil {
			if err := handler(ctx); err != nil {
				printlnFn("error:", err)
			}
		}

		if err != nil {
			// EOF after a final unterminated line
			return
		}
	}
}
