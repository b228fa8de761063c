// Package token issues opaque single-use tokens for email verification and
// password reset. The tokens carry no claims; their validity lives server-side.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultSize is the number of random bytes in a token (64 hex characters).
const DefaultSize = 32

// Generator creates random tokens with an explicit expiry.
type Generator struct {
	size int
	now  func() time.Time
}

// NewGenerator creates a Generator. A size below 16 bytes falls back to DefaultSize.
func NewGenerator(size int) *Generator {
	if size < 16 {
		size = DefaultSize
	}
	return &Generator{size: size, now: time.Now}
}

// Issue returns a new random token expiring ttl from now.
func (g *Generator) Issue(ttl time.Duration) (string, time.Time, error) {
	b := make([]byte, g.size)
	if _, err := rand.Read(b); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), g.now().Add(ttl), nil
}
