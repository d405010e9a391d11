package licensekey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	// byteLen random bytes become 2*byteLen hex characters.
	byteLen   = 8
	groupSize = 4
)

var keyPattern = regexp.MustCompile(`^[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}$`)

// Generate returns a new key in the form XXXX-XXXX-XXXX-XXXX using crypto/rand.
func Generate() (string, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom builds a key from 8 bytes read from r.
func GenerateFrom(r io.Reader) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return format(hex.EncodeToString(buf)), nil
}

// Valid reports whether key matches the generated key format.
func Valid(key string) bool {
	return keyPattern.MatchString(key)
}

func format(digits string) string {
	groups := make([]string, 0, len(digits)/groupSize)
	for i := 0; i < len(digits); i += groupSize {
		groups = append(groups, digits[i:i+groupSize])
	}
	return strings.Join(groups, "-")
}
