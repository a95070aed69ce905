package cryptox

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KeySize is the length of every derived key (AES-256).
const KeySize = 32

// DefaultPBKDF2Iterations is the PBKDF2-HMAC-SHA256 round count used when
// nothing else is configured. Treat it as a floor.
const DefaultPBKDF2Iterations = 600_000

// KDF stretches a password and salt into a KeySize-byte key. Identical inputs
// must always yield the identical key.
type KDF interface {
	DeriveKey(password, salt []byte) ([]byte, error)
}

// PBKDF2 derives keys with PBKDF2-HMAC-SHA256.
type PBKDF2 struct {
	Iterations int
}

func (k PBKDF2) DeriveKey(password, salt []byte) ([]byte, error) {
	if k.Iterations < 1 {
		return nil, fmt.Errorf("pbkdf2: iterations must be positive, got %d", k.Iterations)
	}
	return pbkdf2.Key(password, salt, k.Iterations, KeySize, sha256.New), nil
}

func (k PBKDF2) String() string {
	return fmt.Sprintf("pbkdf2-sha256(i=%d)", k.Iterations)
}

// Argon2id derives keys with Argon2id.
type Argon2id struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultArgon2id returns the parameters used for password stretching
// elsewhere in the ecosystem: 3 passes over 64 MiB with 2 lanes.
func DefaultArgon2id() Argon2id {
	return Argon2id{Time: 3, MemoryKiB: 64 * 1024, Threads: 2}
}

// Validate checks the parameters without deriving anything.
func (k Argon2id) Validate() error {
	if k.Time == 0 || k.Threads == 0 {
		return errors.New("argon2id: time and threads must be positive")
	}
	if k.MemoryKiB < 8*uint32(k.Threads) {
		return fmt.Errorf("argon2id: memory must be at least %d KiB", 8*uint32(k.Threads))
	}
	return nil
}

func (k Argon2id) DeriveKey(password, salt []byte) ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return argon2.IDKey(password, salt, k.Time, k.MemoryKiB, k.Threads, KeySize), nil
}

func (k Argon2id) String() string {
	return fmt.Sprintf("argon2id(t=%d,m=%d,p=%d)", k.Time, k.MemoryKiB, k.Threads)
}
