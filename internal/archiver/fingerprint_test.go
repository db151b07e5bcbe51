package archiver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFingerprint(t *testing.T) {
	a := ComputeFingerprint([]byte("console.log(1);"))
	b := ComputeFingerprint([]byte("console.log(1);"))
	c := ComputeFingerprint([]byte("console.log(1);\n"))

	assert.Equal(t, a, b, "byte-identical scripts must share a fingerprint")
	assert.NotEqual(t, a, c, "a trailing newline must change the fingerprint")
	assert.Len(t, string(a), 64)
}

func TestFingerprintPrefix(t *testing.T) {
	f := ComputeFingerprint([]byte("x"))
	assert.Len(t, f.Prefix(8), 8)
	assert.Equal(t, string(f)[:8], f.Prefix(8))
	assert.Equal(t, string(f), f.Prefix(0))
	assert.Equal(t, string(f), f.Prefix(100))
}
