package domain

import (
	"crypto/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Document constraints.
const (
	// MaxDocumentIDLength bounds caller-chosen ids; generated ids are 36 chars.
	MaxDocumentIDLength = 128

	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72

	// MaxTitleLength bounds the title mirrored into listings.
	MaxTitleLength = 256

	// ConnectionIDPrefix is the prefix for connection ids.
	ConnectionIDPrefix = "dmcn-"
)

// Visibility controls whether a document is listed and whether joining it
// requires a password.
type Visibility int

const (
	// VisibilityPublic documents are listed and joinable by anyone.
	VisibilityPublic Visibility = iota

	// VisibilityPrivate documents are unlisted and gated by a password hash.
	VisibilityPrivate
)

// String returns the lowercase name of the visibility.
func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// Access is the immutable access policy of a document, fixed at creation.
type Access struct {
	Visibility   Visibility
	PasswordHash []byte // bcrypt hash; set only for private documents
}

// PublicAccess returns the access policy of a public document.
func PublicAccess() Access {
	return Access{Visibility: VisibilityPublic}
}

// PrivateAccess returns the access policy of a private document guarded by hash.
func PrivateAccess(hash []byte) Access {
	return Access{Visibility: VisibilityPrivate, PasswordHash: hash}
}

// IsPublic reports whether the document is public.
func (a Access) IsPublic() bool {
	return a.Visibility == VisibilityPublic
}

// Validate checks the policy is internally consistent.
func (a Access) Validate() error {
	switch a.Visibility {
	case VisibilityPublic:
		if len(a.PasswordHash) != 0 {
			return ErrDocumentValidation.WithDetail("public document must not carry a password hash")
		}
	case VisibilityPrivate:
		if len(a.PasswordHash) == 0 {
			return ErrDocumentValidation.WithDetail("private document requires a password")
		}
	default:
		return ErrDocumentValidation.WithDetail("unknown visibility")
	}
	return nil
}

// DocumentSummary is the listing view of a live document session.
type DocumentSummary struct {
	ID           string
	Title        string
	Visibility   Visibility
	UserCount    int
	LastActivity time.Time
}

// NewDocumentID generates a random (version 4) UUID document id.
func NewDocumentID() string {
	return uuid.NewString()
}

// ValidateDocumentID checks that id is usable as a registry key and URL segment.
func ValidateDocumentID(id string) error {
	if id == "" {
		return ErrMissingArgument.WithDetail("document id is required")
	}
	if len(id) > MaxDocumentIDLength {
		return ErrInvalidArgument.WithDetail("document id exceeds 128 characters")
	}
	if strings.ContainsAny(id, "/?#% \t\r\n") {
		return ErrInvalidArgument.WithDetail("document id contains reserved characters")
	}
	return nil
}

// ValidatePassword checks a password supplied at creation.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrDocumentValidation.WithDetail("private document requires a password")
	}
	if len(password) > MaxPasswordLength {
		return ErrDocumentValidation.WithDetail("password exceeds 72 bytes")
	}
	return nil
}

// NormalizeTitle trims a title and caps it at MaxTitleLength bytes
// without splitting a rune.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if len(title) <= MaxTitleLength {
		return title
	}
	cut := MaxTitleLength
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return title[:cut]
}

// GenerateConnectionID generates a connection id using ULID.
// Format: dmcn-{ulid_lowercase}, 31 characters total.
func GenerateConnectionID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternalServer.Wrap(err)
	}
	return ConnectionIDPrefix + strings.ToLower(id.String()), nil
}
