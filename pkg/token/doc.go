// Package token generates opaque random tokens and their digests.
//
// A token is a caller chosen prefix plus crypto/rand bytes in unpadded
// base64url, so it is safe in URLs and query strings. Only the SHA-256
// digest returned by Hash should be retained.
package token
