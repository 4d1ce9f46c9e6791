package authsession

import "sync"

// cache is the in-memory identity-token to session map sitting in front of
// the Store. Sessions are stored by value, so a caller mutating its copy
// never affects what other readers observe. Write-through ordering is the
// Service's responsibility; the cache only guards its own map.
type cache struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func newCache() *cache {
	return &cache{sessions: make(map[string]Session)}
}

func (c *cache) get(identityToken string) (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	session, ok := c.sessions[identityToken]
	return session, ok
}

func (c *cache) put(session Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session.IdentityToken] = session
}

func (c *cache) delete(identityToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, identityToken)
}
