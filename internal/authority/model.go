package authority

import "time"

// Profile holds the personal details collected during account setup.
// MiddleName and PreferredName are optional.
type Profile struct {
	FirstName     string
	MiddleName    string
	LastName      string
	PreferredName string
	Email         string
}

// User is an account owned by a Store. Values handed out by the Store are
// live records: mutate them only through Store methods.
type User struct {
	Username      string
	Password      string
	Profile       Profile
	Roles         RoleSet
	SetupComplete bool
	CreatedAt     time.Time
}

// Email returns the address recorded at setup, or "" if none was set yet.
func (u *User) Email() string { return u.Profile.Email }

// Invitation is a one-time code that lets a prospective user create an
// account with a predefined username and role set.
type Invitation struct {
	Code      string
	Username  string
	Email     string
	Roles     RoleSet
	CreatedAt time.Time
}

// ResetRequest authorizes a password change for the account registered
// under Email, gated by OneTimePassword until ExpirationTime.
type ResetRequest struct {
	Email           string
	OneTimePassword string
	ExpirationTime  time.Time
	CreatedAt       time.Time
}

// IsExpired reports whether now is past the request's expiration time.
func (r *ResetRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpirationTime)
}
