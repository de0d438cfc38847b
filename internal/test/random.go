package test

import (
	"fmt"
	"math/rand/v2"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomString returns a lowercase alphanumeric string of length n.
func RandomString(n int) string {
	if n <= 0 {
		n = 1
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}
	return string(buf)
}

// RandomEmail returns a unique-looking partner login.
func RandomEmail() string {
	return RandomString(8) + "@" + RandomString(6) + ".dk"
}

// RandomPostalCode returns a four digit Danish postal code.
func RandomPostalCode() string {
	return fmt.Sprintf("%04d", 1000+rand.IntN(9000))
}
