package crypto

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// loginTokenBytes is the entropy of a magic-link token. 32 bytes comfortably
// clears the 128-bit floor for single-use capabilities.
const loginTokenBytes = 32

// NewLoginToken generates a random magic-link token and the digest under
// which it is stored. The plaintext token only ever appears in the emailed
// link; the database holds the digest.
func NewLoginToken() (token, digest string, err error) {
	buf := make([]byte, loginTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, DigestLoginToken(token), nil
}

// DigestLoginToken returns the hex-encoded blake2b-256 digest of a token,
// the form in which tokens are persisted and looked up.
func DigestLoginToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
