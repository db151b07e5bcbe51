package archiver

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the full-length hex sha256 digest of a script's raw bytes.
// Dedup comparisons always use the full digest; only filenames use a prefix.
type Fingerprint string

// ComputeFingerprint hashes the exact raw bytes, whitespace included. No
// normalization happens before hashing: dedup means byte-identical, nothing
// weaker.
func ComputeFingerprint(data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Prefix returns the display prefix used in artifact filenames.
func (f Fingerprint) Prefix(length int) string {
	if length <= 0 || length > len(f) {
		return string(f)
	}
	return string(f[:length])
}
