package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// IDBytes is the amount of randomness in a meeting id (128 bits).
const IDBytes = 16

var encodedLen = base64.RawURLEncoding.EncodedLen(IDBytes)

// Generate returns a URL-safe random identifier. Uniqueness is probabilistic;
// the store still rejects a create on collision.
func Generate() (string, error) {
	return generate(rand.Reader)
}

func generate(r io.Reader) (string, error) {
	b := make([]byte, IDBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("idgen: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Valid reports whether s could have been produced by Generate.
func Valid(s string) bool {
	if len(s) != encodedLen {
		return false
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil && len(b) == IDBytes
}
