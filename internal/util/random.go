package util

import (
	"math/rand"

	"github.com/lithammer/shortuuid/v4"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// RandomString generates a random string of length n.
func RandomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// NewSessionID returns a compact unique identifier for a page session.
func NewSessionID() string {
	return shortuuid.New()
}

// RandomEmail generates a random email address, used in tests and seeds.
func RandomEmail() string {
	return RandomString(8) + "@example.com"
}
