// Package sha256 provides the SHA-256 digests used for notice content hashes
// and snapshot object names.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher implements notice.Hasher using SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Sum returns the lower-case hex digest of s.
func (h *Hasher) Sum(s string) string {
	return h.SumBytes([]byte(s))
}

// SumBytes returns the lower-case hex digest of data.
func (*Hasher) SumBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
