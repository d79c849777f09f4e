// Package cli implements the interactive front end of the account authority.
//
// It is a thin caller of the authority store: it prompts for input, keeps
// the current session (a signed token plus the chosen role) and prints the
// results. All account rules live in package authority.
package cli
