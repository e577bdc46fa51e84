// Package checksum provides content digests used for manifest ETags
// and catalog change detection.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns a 12-character digest prefix, enough for ETag use.
func Short(data []byte) string {
	s := Sum(data)
	return s[:12]
}
