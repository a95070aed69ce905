package common

import (
	"crypto/rand"
	"fmt"
	"io"
)

// RandomBytes reads exactly size bytes from r. A nil r means crypto/rand.
//
// The error is returned as-is (wrapped) so callers can decide whether a
// missing entropy source is fatal.
func RandomBytes(r io.Reader, size int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("read %d random bytes: %w", size, err)
	}
	return b, nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// This is useful for removing sensitive data such as passwords or derived
// keys from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
