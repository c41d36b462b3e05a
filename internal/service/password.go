package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultPasswordIterations is the PBKDF2 work factor for new hashes.
	DefaultPasswordIterations = 600000
	// DefaultSaltLength is the number of salt characters for new hashes.
	DefaultSaltLength = 16

	saltChars     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	hashKeyLength = sha256.Size
)

var errMalformedHash = errors.New("malformed password hash")

// PasswordHasher produces and checks "pbkdf2:sha256:<iterations>$<salt>$<hex>" digests.
type PasswordHasher struct {
	Iterations int
	SaltLength int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		Iterations: DefaultPasswordIterations,
		SaltLength: DefaultSaltLength,
	}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	iterations := h.Iterations
	if iterations <= 0 {
		iterations = DefaultPasswordIterations
	}
	saltLen := h.SaltLength
	if saltLen <= 0 {
		saltLen = DefaultSaltLength
	}

	salt, err := randomSalt(saltLen)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, hashKeyLength, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", iterations, salt, hex.EncodeToString(key)), nil
}

// Verify reports whether password matches encoded. The iteration count stored
// in the hash is honoured so older hashes keep working.
func (h *PasswordHasher) Verify(encoded, password string) bool {
	iterations, salt, want, err := parseHash(encoded)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func parseHash(encoded string) (int, string, []byte, error) {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return 0, "", nil, errMalformedHash
	}
	method := strings.Split(parts[0], ":")
	if len(method) < 2 || method[0] != "pbkdf2" || method[1] != "sha256" {
		return 0, "", nil, fmt.Errorf("%w: unsupported method %q", errMalformedHash, parts[0])
	}
	iterations := DefaultPasswordIterations
	if len(method) == 3 {
		n, err := strconv.Atoi(method[2])
		if err != nil || n <= 0 {
			return 0, "", nil, fmt.Errorf("%w: bad iteration count", errMalformedHash)
		}
		iterations = n
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil || len(want) == 0 {
		return 0, "", nil, fmt.Errorf("%w: bad digest", errMalformedHash)
	}
	return iterations, parts[1], want, nil
}

func randomSalt(n int) (string, error) {
	max := big.NewInt(int64(len(saltChars)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(saltChars[idx.Int64()])
	}
	return b.String(), nil
}
