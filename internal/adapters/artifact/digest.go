package artifact

import (
	"encoding/hex"
	"fmt"
	"strings"

	"lukechampine.com/blake3"
)

// Digest returns the hex blake3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify checks data against an expected hex digest. An empty expectation
// always passes.
func Verify(data []byte, expected string) (string, error) {
	got := Digest(data)
	expected = strings.ToLower(strings.TrimSpace(expected))
	if expected != "" && expected != got {
		return got, fmt.Errorf("%w: want %s, got %s", ErrChecksumMismatch, expected, got)
	}
	return got, nil
}
