// Package fingerprint derives stable identity tokens from client request
// metadata (user agent and source address) so sessions can be keyed without
// a bearer cookie.
//
// The derivation is a convenience mechanism, not a security perimeter: a
// spoofed user agent plus address yields the same token, and two clients
// behind the same proxy with identical browsers will collide. Both cases
// only affect which cached session a request resolves to; credentials are
// still protected by at-rest encryption and upstream validation.
//
// Usage:
//
//	token := fingerprint.Derive(r.UserAgent(), clientip.FromRequest(r))
package fingerprint
