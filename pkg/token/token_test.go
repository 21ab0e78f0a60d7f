package token

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		prefix string
		n      int
	}{
		{"", 1},
		{"req-", 12},
		{"dmjt_", 24},
		{"x", 32},
	}
	for _, tt := range tests {
		tok, err := New(tt.prefix, tt.n)
		if err != nil {
			t.Fatalf("New(%q, %d) error = %v", tt.prefix, tt.n, err)
		}
		if !strings.HasPrefix(tok, tt.prefix) {
			t.Errorf("New(%q, %d) = %q, missing prefix", tt.prefix, tt.n, tok)
		}
		body := strings.TrimPrefix(tok, tt.prefix)
		if len(body) != EncodedLen(tt.n) {
			t.Errorf("body length = %d, want %d", len(body), EncodedLen(tt.n))
		}
		raw, err := base64.RawURLEncoding.DecodeString(body)
		if err != nil {
			t.Errorf("body %q is not base64url: %v", body, err)
		}
		if len(raw) != tt.n {
			t.Errorf("decoded %d bytes, want %d", len(raw), tt.n)
		}
	}
}

func TestNew_InvalidLength(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := New("p", n); err == nil {
			t.Errorf("New(p, %d) should fail", n)
		}
	}
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		tok, err := New("", 16)
		if err != nil {
			t.Fatal(err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q after %d draws", tok, i)
		}
		seen[tok] = true
	}
}

func TestEncodedLen(t *testing.T) {
	for n, want := range map[int]int{12: 16, 16: 22, 24: 32, 32: 43} {
		if got := EncodedLen(n); got != want {
			t.Errorf("EncodedLen(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestHash(t *testing.T) {
	// sha256("abc")
	const abc = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Hash("abc"); got != abc {
		t.Errorf("Hash(abc) = %s", got)
	}
	if Hash("a") == Hash("b") {
		t.Error("different inputs share a digest")
	}
}

func TestMatches(t *testing.T) {
	digest := Hash("dmjt_secret")
	tests := []struct {
		plaintext string
		digest    string
		want      bool
	}{
		{"dmjt_secret", digest, true},
		{"dmjt_Secret", digest, false},
		{"", digest, false},
		{"dmjt_secret", "", false},
		{"dmjt_secret", digest[:10], false},
	}
	for _, tt := range tests {
		if got := Matches(tt.plaintext, tt.digest); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.plaintext, tt.digest, got, tt.want)
		}
	}
}
