package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// tokenHashLen uses 8 bytes (64 bits) of the SHA-256 digest. Collisions
	// between two real browsers only merge their cached sessions; the secret
	// boundary is the encrypted store plus the upstream credential check, so
	// a short, filesystem-friendly identifier is preferred over full width.
	tokenHashLen = 8

	// TokenLen is the length of a derived identity token in characters
	// (hex encoding of tokenHashLen bytes).
	TokenLen = tokenHashLen * 2
)

// Derive computes a deterministic identity token from client request
// metadata. The same (userAgent, sourceAddr) pair always yields the same
// token; distinct pairs overwhelmingly yield distinct tokens.
//
// Empty inputs are valid and hash to a constant token. The result is
// lowercase hex and safe for use in file names and cache keys.
func Derive(userAgent, sourceAddr string) string {
	// Join with a pipe delimiter so ("ab", "c") and ("a", "bc") cannot
	// produce the same digest.
	hash := sha256.Sum256([]byte(userAgent + "|" + sourceAddr))
	return hex.EncodeToString(hash[:tokenHashLen])
}

// Valid reports whether s has the shape of a derived identity token.
// Useful for filtering persisted session files during sweeps.
func Valid(s string) bool {
	if len(s) != TokenLen {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
