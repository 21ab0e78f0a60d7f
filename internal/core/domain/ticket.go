package domain

import (
	"strings"
	"time"

	"github.com/yndnr/docmesh-go/pkg/token"
)

// Ticket constants.
const (
	// TicketPrefix is the prefix for join tickets.
	TicketPrefix = "dmjt_"

	// TicketBytesLength is the number of random bytes in a ticket.
	TicketBytesLength = 24

	// TicketLength is the total ticket length: the prefix plus 32
	// base64url characters.
	TicketLength = len(TicketPrefix) + 32
)

// JoinTicket is proof that a client passed the access gate for one
// private document. Only the hash of the plaintext is retained server-side.
type JoinTicket struct {
	Hash       string
	DocumentID string
	ExpiresAt  time.Time
}

// Expired reports whether the ticket is past its expiry at now.
func (t *JoinTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// GenerateTicket issues a ticket for documentID valid for ttl.
// The plaintext is returned to the caller exactly once.
func GenerateTicket(documentID string, ttl time.Duration, now time.Time) (string, *JoinTicket, error) {
	plaintext, err := token.New(TicketPrefix, TicketBytesLength)
	if err != nil {
		return "", nil, ErrInternalServer.Wrap(err)
	}
	return plaintext, &JoinTicket{
		Hash:       HashTicket(plaintext),
		DocumentID: documentID,
		ExpiresAt:  now.Add(ttl),
	}, nil
}

// HashTicket returns the hex SHA-256 digest of a plaintext ticket.
func HashTicket(plaintext string) string {
	return token.Hash(plaintext)
}

// ValidateTicketFormat checks prefix and length only.
func ValidateTicketFormat(ticket string) bool {
	return len(ticket) == TicketLength && strings.HasPrefix(ticket, TicketPrefix)
}

// MaskTicket masks a ticket for safe logging.
// Example: dmjt_ABC...xyz
func MaskTicket(ticket string) string {
	if !ValidateTicketFormat(ticket) {
		return "***REDACTED***"
	}
	body := ticket[len(TicketPrefix):]
	return TicketPrefix + body[:3] + "..." + body[len(body)-3:]
}
