package util

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPassword(t *testing.T) {
	password := RandomString(8)

	hashedPassword, err := HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hashedPassword == "" {
		t.Fatal("expected a non-empty hash")
	}

	if err := CheckPassword(password, hashedPassword); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}

	wrongPassword := RandomString(8)
	err = CheckPassword(wrongPassword, hashedPassword)
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		t.Fatalf("expected mismatch error, got %v", err)
	}

	// Same password, different salt, different hash.
	hashedAgain, err := HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hashedAgain == hashedPassword {
		t.Fatal("expected a fresh salt per hash")
	}
}

func TestTruncateContent(t *testing.T) {
	if got := TruncateContent("short", 10); got != "short" {
		t.Fatalf("got %q, want unchanged content", got)
	}
	if got := TruncateContent("a very long notification title", 10); got != "a very lon..." {
		t.Fatalf("got %q", got)
	}
}

func TestNewSessionIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		if id == "" {
			t.Fatal("expected a non-empty session id")
		}
		if seen[id] {
			t.Fatalf("duplicate session id %s", id)
		}
		seen[id] = true
	}
}
