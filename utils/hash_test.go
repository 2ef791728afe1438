package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintString(t *testing.T) {
	assert.Equal(t, FingerprintString("SELECT 1"), FingerprintString("SELECT 1"))
	assert.NotEqual(t, FingerprintString("SELECT 1"), FingerprintString("SELECT 2"))
}

func TestFingerprintStatement(t *testing.T) {
	pg := FingerprintStatement("postgres", "SELECT 1")
	my := FingerprintStatement("mysql", "SELECT 1")
	assert.NotEqual(t, pg, my)
	assert.Equal(t, pg, FingerprintStatement("postgres", "SELECT 1"))
}

func TestU64ToBytes(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, U64ToBytes(0x0102))
}
