package common

import "time"

// DefaultResetRequestTTL is how long a password reset request stays valid.
const DefaultResetRequestTTL = 72 * time.Hour

// OTPDigits is the length of generated one-time passwords.
const OTPDigits = 6
