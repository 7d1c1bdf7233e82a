package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const (
	SessionTokenBytes = 32
	CSRFTokenBytes    = 24
	ResetTokenBytes   = 32
)

// NewToken returns n random bytes hex-encoded. The raw value is handed to
// the client exactly once; only its digest is ever stored.
func NewToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Digest returns the SHA-256 hex digest of a raw token.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// DigestEqual compares two digests in constant time.
func DigestEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// NewID returns a fresh entity id.
func NewID() string {
	return uuid.NewString()
}
