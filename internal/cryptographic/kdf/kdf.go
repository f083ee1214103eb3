package kdf

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const KeySize = 32

// HKDF fills buffer from HKDF-SHA256(secret, salt, info).
func HKDF(secret, salt, info, buffer []byte) (int, error) {
	h := hkdf.New(sha256.New, secret, salt, info)
	return io.ReadFull(h, buffer)
}

// DeriveKey expands a master secret into a 32-byte key bound to label.
// Distinct labels give independent keys from the same master.
func DeriveKey(master []byte, label string) ([]byte, error) {
	if len(master) == 0 {
		return nil, fmt.Errorf("derive %q: empty master secret", label)
	}
	key := make([]byte, KeySize)
	if _, err := HKDF(master, []byte("toorak-tier-key"), []byte(label), key); err != nil {
		return nil, fmt.Errorf("derive %q: %w", label, err)
	}
	return key, nil
}
