package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random identifier such as "okr_3f2a..." scoped by prefix.
func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}
