package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/ruudy-sib/payhook/internal/domain"
)

// ComputeDigest returns the lowercase hex SHA-256 of
// identifier|sharedSecret|merchantID|statusCode.
// Fields are not escaped; a '|' inside a field makes the string ambiguous,
// which is acceptable because every field is gateway controlled.
func ComputeDigest(identifier, statusCode, sharedSecret, merchantID string) string {
	canonical := strings.Join([]string{identifier, sharedSecret, merchantID, statusCode}, domain.DigestSeparator)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether supplied matches the digest of the notification
// fields, ignoring letter case.
func Verify(identifier, statusCode, sharedSecret, merchantID, supplied string) bool {
	computed := ComputeDigest(identifier, statusCode, sharedSecret, merchantID)
	return digestsEqual(computed, supplied)
}

func digestsEqual(computed, supplied string) bool {
	a := []byte(strings.ToLower(computed))
	b := []byte(strings.ToLower(strings.TrimSpace(supplied)))
	return subtle.ConstantTimeCompare(a, b) == 1
}
