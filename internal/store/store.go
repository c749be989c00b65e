// Package store provides the client-local key/value stores the storefront
// keeps its state in: a durable store that survives restarts (auth token,
// cart snapshot) and a session store that lives for the process lifetime
// (cached profile, splash flag).
package store

// Well-known keys.
const (
	KeyToken      = "token"
	KeyCart       = "cart"
	KeyProfile    = "profile"
	KeySplashSeen = "splash_seen"
)

// Store is a flat key/value store. Get reports absence via the bool rather
// than an error so callers can treat missing and present uniformly.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
