package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/meisaku/ms-go-user/config"

	"golang.org/x/crypto/argon2"
)

var (
	ErrPasswordHashing = errors.New("password hashing failed")
	ErrInvalidHash     = errors.New("invalid password hash encoding")
)

const (
	saltLength = 16
	keyLength  = 32
)

// PasswordHasher derives argon2id hashes from plaintext passwords.
// Work factors are fixed at construction; a fresh random salt is drawn on
// every Hash call, so hashing the same password twice yields different
// results. Verification recomputes the hash from the parameters and salt
// embedded in the encoded string.
type PasswordHasher struct {
	memoryKiB   uint32
	iterations  uint32
	parallelism uint8
}

func NewPasswordHasher(cfg config.Argon2Config) *PasswordHasher {
	return &PasswordHasher{
		memoryKiB:   cfg.MemoryKiB,
		iterations:  cfg.Iterations,
		parallelism: cfg.Parallelism,
	}
}

// Hash derives a key from the plaintext and returns the PHC-encoded hash
// string together with the base64 salt. Length and format of the plaintext
// are the caller's concern; Hash only fails when the entropy source does.
func (h *PasswordHasher) Hash(plain string) (hash, salt string, err error) {
	saltBytes := make([]byte, saltLength)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrPasswordHashing, err)
	}

	key := argon2.IDKey([]byte(plain), saltBytes, h.iterations, h.memoryKiB, h.parallelism, keyLength)

	encodedSalt := base64.RawStdEncoding.EncodeToString(saltBytes)
	encodedKey := base64.RawStdEncoding.EncodeToString(key)

	hash = fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memoryKiB, h.iterations, h.parallelism, encodedSalt, encodedKey)

	return hash, encodedSalt, nil
}

// Verify reports whether the plaintext matches the PHC-encoded hash. The
// salt and work factors come from the encoded string, not the hasher, so
// hashes survive configuration changes.
func (h *PasswordHasher) Verify(plain, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrInvalidHash
	}
	if version != argon2.Version {
		return false, ErrInvalidHash
	}

	var memoryKiB, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memoryKiB, &iterations, &parallelism); err != nil {
		return false, ErrInvalidHash
	}

	saltBytes, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrInvalidHash
	}

	candidate := argon2.IDKey([]byte(plain), saltBytes, iterations, memoryKiB, parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}
