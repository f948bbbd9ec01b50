package uid

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewMatchID returns a random identifier for a match report.
func NewMatchID() string {
	return uuid.NewString()
}

// Digest is the hex sha256 of an uploaded artifact.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
