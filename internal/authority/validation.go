package authority

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/authority/internal/common"
)

var (
	emailPattern = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// ValidateProfile applies the account-setup form rules: first name, last
// name and email are required, the email must look like an address, and the
// optional middle and preferred names may contain only letters and spaces.
// All problems are reported together; the result matches common.ErrorValidation.
func ValidateProfile(p Profile) error {
	var errs []error
	invalid := func(msg string) {
		errs = append(errs, fmt.Errorf("%w: %s", common.ErrorValidation, msg))
	}

	if p.FirstName == "" {
		invalid("first name is required")
	}
	if p.LastName == "" {
		invalid("last name is required")
	}
	if p.Email == "" {
		invalid("email is required")
	} else if !emailPattern.MatchString(p.Email) {
		invalid("email format is invalid")
	}
	if p.MiddleName != "" && !namePattern.MatchString(p.MiddleName) {
		invalid("middle name should not contain numbers or special characters")
	}
	if p.PreferredName != "" && !namePattern.MatchString(p.PreferredName) {
		invalid("preferred name should not contain numbers or special characters")
	}

	return errors.Join(errs...)
}
