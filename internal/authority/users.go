package authority

import (
	"context"
	"crypto/subtle"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/authority/internal/common"
	"golang.org/x/text/cases"
)

// CreateFirstUser bootstraps the store with an ADMIN account. It succeeds
// only while the registry is empty; afterwards it returns
// common.ErrAlreadyBootstrapped and leaves state unchanged.
func (s *Store) CreateFirstUser(ctx context.Context, username, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) > 0 {
		s.logger.Warn(ctx, "bootstrap rejected", "username", username)
		return nil, common.ErrAlreadyBootstrapped
	}

	u := s.addUserLocked(username, password, NewRoleSet(RoleAdmin))
	s.logger.Info(ctx, "bootstrap admin created", "username", username)
	return u, nil
}

// CreateUser stores a new account with a copy of roles. Usernames are not
// checked for uniqueness; lookups resolve duplicates by insertion order.
// An empty role set is rejected with common.ErrEmptyRoleSet.
func (s *Store) CreateUser(ctx context.Context, username, password string, roles RoleSet) (*User, error) {
	if len(roles) == 0 {
		return nil, common.ErrEmptyRoleSet
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.addUserLocked(username, password, roles)
	s.logger.Info(ctx, "user created", "username", username, "roles", u.Roles.String())
	return u, nil
}

func (s *Store) addUserLocked(username, password string, roles RoleSet) *User {
	u := &User{
		Username:  username,
		Password:  password,
		Roles:     roles.Clone(),
		CreatedAt: s.now(),
	}
	s.users = append(s.users, u)
	return u
}

// Login returns the first user whose username and password both match.
// Unknown usernames and wrong passwords yield the same
// common.ErrorInvalidCredentials.
func (s *Store) Login(ctx context.Context, username, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username && checkSecret(u.Password, password) {
			s.logger.Debug(ctx, "login succeeded", "username", username)
			return u, nil
		}
	}
	s.logger.Warn(ctx, "login failed", "username", username)
	return nil, common.ErrorInvalidCredentials
}

// CompleteAccountSetup overwrites u's profile and marks setup complete.
// Fields are not validated here; see ValidateProfile.
func (s *Store) CompleteAccountSetup(ctx context.Context, u *User, p Profile) error {
	if u == nil {
		return fmt.Errorf("complete setup: %w", common.ErrorNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u.Profile = p
	u.SetupComplete = true
	s.logger.Info(ctx, "account setup completed", "username", u.Username)
	return nil
}

// FindUserByUsername returns the first user registered under username.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// UserExistsForEmail reports whether any user has a recorded email equal to
// email under case folding. Users without an email never match.
func (s *Store) UserExistsForEmail(ctx context.Context, email string) bool {
	fold := cases.Fold()
	want := fold.String(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email() != "" && fold.String(u.Email()) == want {
			return true
		}
	}
	return false
}

// UpdateUserPassword sets the password of the first user whose email equals
// email exactly (case-sensitive).
func (s *Store) UpdateUserPassword(ctx context.Context, email, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updatePasswordLocked(ctx, email, newPassword)
}

func (s *Store) updatePasswordLocked(ctx context.Context, email, newPassword string) error {
	if email == "" {
		return common.ErrorNotFound
	}
	for _, u := range s.users {
		if u.Email() == email {
			u.Password = newPassword
			s.logger.Info(ctx, "password updated", "username", u.Username)
			return nil
		}
	}
	s.logger.Warn(ctx, "password update for unknown email", "email", email)
	return common.ErrorNotFound
}

// AllUsers returns a snapshot of the registry in insertion order. The slice
// is the caller's; later deletions are not reflected in it.
func (s *Store) AllUsers(ctx context.Context) []*User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.users)
}

// DeleteUser removes u (matched by identity) and reports whether it was
// present. Deleting the last administrator is allowed and only logged.
func (s *Store) DeleteUser(ctx context.Context, u *User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.users, u)
	if i < 0 {
		return false
	}
	s.users = slices.Delete(s.users, i, i+1)
	s.logger.Info(ctx, "user deleted", "username", u.Username)
	if u.Roles.Has(RoleAdmin) && !s.hasAdminLocked() {
		s.logger.Warn(ctx, "no administrator remains")
	}
	return true
}

func (s *Store) hasAdminLocked() bool {
	for _, u := range s.users {
		if u.Roles.Has(RoleAdmin) {
			return true
		}
	}
	return false
}

func checkSecret(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
