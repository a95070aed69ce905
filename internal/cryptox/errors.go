package cryptox

import "errors"

var (
	// ErrInvalidPasswordOrCorruptFile is returned by Open and Decrypt for every
	// failure after the key was derived: short input, authentication failure,
	// undecodable plaintext. Wrong password and damaged data are indistinguishable.
	ErrInvalidPasswordOrCorruptFile = errors.New("invalid password or corrupt file")

	// ErrEnvironmentUnavailable means a required primitive (secure randomness,
	// the cipher, the KDF) could not be set up. Not retryable.
	ErrEnvironmentUnavailable = errors.New("cryptographic environment unavailable")
)
