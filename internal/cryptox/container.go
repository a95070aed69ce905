// Package cryptox implements the password-protected backup container.
//
// A container is the concatenation
//
//	salt (16 bytes) || nonce (12 bytes) || AES-256-GCM ciphertext+tag
//
// with no header, magic number or password verifier. The key is derived from
// the password and the salt with the configured KDF, which is not recorded in
// the container and must be the same on both sides.
//
// Codec values are stateless and safe for concurrent use. Nothing here logs.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/growkeeper/growkeeper/internal/common"
)

const (
	SaltSize   = 16
	NonceSize  = 12
	TagSize    = 16
	HeaderSize = SaltSize + NonceSize

	// Overhead is the number of bytes a container adds to its plaintext.
	Overhead = HeaderSize + TagSize
)

// Codec encrypts and decrypts containers.
//
// KDF selects the key derivation; Rand is the source for salts and nonces
// and must be cryptographically secure.
type Codec struct {
	KDF  KDF
	Rand io.Reader
}

// NewCodec returns a Codec reading randomness from crypto/rand. A nil kdf
// selects PBKDF2 with DefaultPBKDF2Iterations.
func NewCodec(kdf KDF) Codec {
	if kdf == nil {
		kdf = PBKDF2{Iterations: DefaultPBKDF2Iterations}
	}
	return Codec{KDF: kdf, Rand: rand.Reader}
}

// Encrypt serializes v to JSON and seals it into a new container.
//
// A value that cannot be marshaled returns the JSON error; a failure of
// the random source or cipher setup returns ErrEnvironmentUnavailable.
//
// Example:
//
//	codec := cryptox.NewCodec(nil)
//	blob, err := codec.Encrypt(map[string]any{"version": 1}, "correct-horse")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var out map[string]any
//	err = codec.Decrypt(blob, "correct-horse", &out)
func (c Codec) Encrypt(v any, password string) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize payload: %w", err)
	}
	defer common.WipeByteArray(plaintext)

	return c.Seal(plaintext, password)
}

// Decrypt opens the container and unmarshals the plaintext JSON into v.
//
// Any failure other than ErrEnvironmentUnavailable is reported as
// ErrInvalidPasswordOrCorruptFile. On error the contents of v are undefined
// and must be discarded.
func (c Codec) Decrypt(container []byte, password string, v any) error {
	plaintext, err := c.Open(container, password)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	if err := json.Unmarshal(plaintext, v); err != nil {
		return ErrInvalidPasswordOrCorruptFile
	}
	return nil
}

// Seal encrypts plaintext under a key derived from password and a fresh salt.
// A fresh nonce is drawn on every call.
func (c Codec) Seal(plaintext []byte, password string) ([]byte, error) {
	salt, err := common.RandomBytes(c.Rand, SaltSize)
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %w", ErrEnvironmentUnavailable, err)
	}
	nonce, err := common.RandomBytes(c.Rand, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrEnvironmentUnavailable, err)
	}

	aead, err := c.newAEAD(password, salt)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, HeaderSize+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal. The returned plaintext is owned by the caller.
func (c Codec) Open(container []byte, password string) ([]byte, error) {
	if len(container) < Overhead {
		return nil, ErrInvalidPasswordOrCorruptFile
	}

	salt := container[:SaltSize]
	nonce := container[SaltSize:HeaderSize]
	ciphertext := container[HeaderSize:]

	aead, err := c.newAEAD(password, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPasswordOrCorruptFile
	}
	return plaintext, nil
}

// newAEAD derives the key and builds AES-256-GCM. The key is wiped before
// returning; the cipher keeps its own expanded schedule.
func (c Codec) newAEAD(password string, salt []byte) (cipher.AEAD, error) {
	if c.KDF == nil {
		return nil, fmt.Errorf("%w: no key derivation configured", ErrEnvironmentUnavailable)
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key, err := c.KDF.DeriveKey(pw, salt)
	if err != nil {
		return nil, fmt.Errorf("%w: derive key: %w", ErrEnvironmentUnavailable, err)
	}
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: new cipher: %w", ErrEnvironmentUnavailable, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: new gcm: %w", ErrEnvironmentUnavailable, err)
	}
	return aesgcm, nil
}
