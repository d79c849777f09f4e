// Package common defines shared constants, sentinel errors and random helpers
// used across the account authority, its configuration and the CLI.
// Callers should use errors.Is to match the error values.
package common

import "errors"

var (
	// Lookup errors (user, invitation or reset request absent).
	ErrorNotFound = errors.New("not found")

	// Account lifecycle errors.
	ErrAlreadyBootstrapped  = errors.New("first user already created")
	ErrorInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyRoleSet         = errors.New("role set is empty")

	// Password reset errors.
	ErrExpiredRequest = errors.New("reset request expired")
	ErrOtpMismatch    = errors.New("one-time password mismatch")

	// Caller-side confirmation check; the store never returns it.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// Validation / internal flow control.
	ErrorValidation = errors.New("validation error")
	ErrorInternal   = errors.New("internal error")
	ErrorForbidden  = errors.New("forbidden")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
