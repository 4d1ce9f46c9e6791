// Package sessionstore provides durable, encrypted persistence for
// credential sessions.
//
// Two implementations of authsession.Store are available: FileStore, the
// primary backend keeping one AES-256-GCM encrypted file per identity
// token in a storage directory, and RedisStore, an alternate backend for
// hosts without durable local disk. Both derive their encryption key from
// a 32-byte master key via HKDF-SHA256, so plaintext credentials never
// reach persistent storage.
//
// The master key is owned by LoadOrCreateKey: generated once per storage
// directory, written to a dedicated 0600 key file, and reused afterwards.
// Losing the key file orphans every persisted session; the corrupt-payload
// handling in both stores then removes them on next access.
package sessionstore
