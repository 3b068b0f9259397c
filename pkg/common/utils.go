package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureToken returns n random bytes hex-encoded. Used for download
// and invoice access tokens, where unguessability is the whole access model.
func GenerateSecureToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process cannot mint tokens at all.
		panic(err)
	}
	return hex.EncodeToString(b)
}
