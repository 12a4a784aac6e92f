package tuple_hash

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Version is the algorithm version prefixed to every identifier.
const Version = "1"

var (
	ErrInvalidSeed = fmt.Errorf("seed must be an integer between 0 and 65535")
)

// Encode returns "<Version>:" followed by the standard padded base64 of the
// SHA-1 digest of normalized.
func Encode(normalized []byte) string {
	digest := sha1.Sum(normalized)
	return Version + ":" + base64.StdEncoding.EncodeToString(digest[:])
}

// Digest decodes the raw digest from an identifier.
func Digest(id string) ([]byte, error) {
	version, encoded, found := strings.Cut(id, ":")
	if !found || version != Version {
		return nil, fmt.Errorf("unsupported identifier %q", id)
	}
	digest, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode identifier %q: %w", id, err)
	}
	if len(digest) != sha1.Size {
		return nil, fmt.Errorf("identifier %q: digest has %d bytes", id, len(digest))
	}
	return digest, nil
}

// ParseSeed parses a configured seed. The empty string is seed 0.
func ParseSeed(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeed, s)
	}
	return uint16(n), nil
}
