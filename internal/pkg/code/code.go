// Package code generates and checks numeric one-time codes.
package code

import (
	"crypto/rand"
	"math/big"
)

// DefaultLength is the number of digits in a verification code.
const DefaultLength = 6

const digits = "0123456789"

// Generate returns a uniformly random string of length decimal digits drawn from
// crypto/rand. Leading zeros are kept. A non-positive length means DefaultLength.
func Generate(length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	max := big.NewInt(int64(len(digits)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(err)
		}
		b[i] = digits[n.Int64()]
	}
	return string(b)
}

// IsCanonical reports whether s is exactly length ASCII digits.
func IsCanonical(s string, length int) bool {
	if length <= 0 {
		length = DefaultLength
	}
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
