package authsession

import (
	"time"

	"github.com/google/uuid"
)

// Session binds a validated credential bundle to the identity token of the
// browser that supplied it.
type Session struct {
	// ID is an opaque unique token generated fresh on every successful
	// authentication. It is not derived from the identity token.
	ID uuid.UUID `json:"session_id"`

	// IdentityToken groups requests believed to originate from the same
	// browser. A later authentication for the same token overwrites the
	// earlier session (last write wins).
	IdentityToken string `json:"identity_token"`

	Credentials Credentials `json:"credentials"`

	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`

	// Valid is cleared on explicit logout.
	Valid bool `json:"valid"`
}

// IsUsable reports whether the session may still be honored at the given
// time: it must not be logged out and must be younger than ttl. The age
// check uses CreatedAt, so refreshing LastAccessed never extends a
// session's lifetime.
func (s Session) IsUsable(now time.Time, ttl time.Duration) bool {
	return s.Valid && now.Sub(s.CreatedAt) < ttl
}
