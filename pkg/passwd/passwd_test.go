package passwd

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if string(hash) == "secret" {
		t.Fatal("Hash() returned the plaintext")
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"match", "secret", true},
		{"wrong", "wrong", false},
		{"empty", "", false},
		{"prefix", "secre", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify(hash, tt.password); got != tt.want {
				t.Errorf("Verify(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestVerify_EmptyHash(t *testing.T) {
	if Verify(nil, "secret") {
		t.Error("Verify() with nil hash should fail")
	}
}

func TestHash_Cost(t *testing.T) {
	hash, err := Hash("secret", 5)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if got := Cost(hash); got != 5 {
		t.Errorf("Cost() = %d, want 5", got)
	}

	// Out of range falls back to the default.
	hash, err = Hash("secret", 99)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if got := Cost(hash); got != DefaultCost {
		t.Errorf("Cost() = %d, want %d", got, DefaultCost)
	}
}

func TestHash_TooLong(t *testing.T) {
	_, err := Hash(strings.Repeat("x", 73), bcrypt.MinCost)
	if !errors.Is(err, ErrTooLong) {
		t.Errorf("Hash() error = %v, want ErrTooLong", err)
	}
}

func TestCost_Invalid(t *testing.T) {
	if got := Cost([]byte("not-a-hash")); got != 0 {
		t.Errorf("Cost() = %d, want 0", got)
	}
}
