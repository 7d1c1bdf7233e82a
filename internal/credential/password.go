package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is applied to newly created credentials. The
	// iteration count is stored per user, so raising this does not break
	// existing hashes.
	DefaultIterations = 210_000

	keyLength  = 32
	saltLength = 16
)

// HashPassword derives a new salted hash for the password. The salt and
// iteration count must be stored alongside the hash.
func HashPassword(password string) (hash, salt string, iterations int, err error) {
	rawSalt := make([]byte, saltLength)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", 0, fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), rawSalt, DefaultIterations, keyLength, sha256.New)
	return hex.EncodeToString(key), hex.EncodeToString(rawSalt), DefaultIterations, nil
}

// VerifyPassword recomputes the derivation with the stored parameters and
// compares in constant time.
func VerifyPassword(password, hash, salt string, iterations int) bool {
	rawSalt, err := hex.DecodeString(salt)
	if err != nil {
		return false
	}
	stored, err := hex.DecodeString(hash)
	if err != nil || len(stored) == 0 {
		return false
	}
	key := pbkdf2.Key([]byte(password), rawSalt, iterations, len(stored), sha256.New)
	return subtle.ConstantTimeCompare(key, stored) == 1
}
