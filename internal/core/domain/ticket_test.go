package domain

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateTicket(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	plaintext, ticket, err := GenerateTicket("doc-B", 5*time.Minute, now)
	if err != nil {
		t.Fatalf("GenerateTicket() error = %v", err)
	}

	if !ValidateTicketFormat(plaintext) {
		t.Errorf("ticket %q has invalid format", plaintext)
	}
	if ticket.DocumentID != "doc-B" {
		t.Errorf("DocumentID = %q, want doc-B", ticket.DocumentID)
	}
	if ticket.Hash != HashTicket(plaintext) {
		t.Error("Hash should be the digest of the plaintext")
	}
	if strings.Contains(ticket.Hash, plaintext) {
		t.Error("Hash must not contain the plaintext")
	}
	if !ticket.ExpiresAt.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("ExpiresAt = %v", ticket.ExpiresAt)
	}
}

func TestJoinTicketExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ticket := &JoinTicket{ExpiresAt: now.Add(time.Minute)}

	if ticket.Expired(now) {
		t.Error("ticket should be live before expiry")
	}
	if !ticket.Expired(now.Add(time.Minute)) {
		t.Error("ticket should be expired at its expiry instant")
	}
}

func TestValidateTicketFormat(t *testing.T) {
	tests := []struct {
		name   string
		ticket string
		want   bool
	}{
		{"valid", TicketPrefix + strings.Repeat("a", 32), true},
		{"wrong prefix", "tmtk_" + strings.Repeat("a", 32), false},
		{"short", TicketPrefix + "abc", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTicketFormat(tt.ticket); got != tt.want {
				t.Errorf("ValidateTicketFormat(%q) = %v, want %v", tt.ticket, got, tt.want)
			}
		})
	}
}

func TestMaskTicket(t *testing.T) {
	ticket := TicketPrefix + "ABCDEFGHIJKLMNOPQRSTUVWXYZ012xyz"
	if got := MaskTicket(ticket); got != "dmjt_ABC...xyz" {
		t.Errorf("MaskTicket() = %q", got)
	}
	if got := MaskTicket("short"); got != "***REDACTED***" {
		t.Errorf("MaskTicket(short) = %q", got)
	}
}
