package common

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericOTP returns a zero-padded decimal string of the given number
// of digits drawn uniformly from crypto/rand.
func GenerateNumericOTP(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("%w: otp length must be positive", ErrorValidation)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// WipeByteArray overwrites b with zeros. Used to scrub passwords read from the
// terminal once they have been handed over. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
