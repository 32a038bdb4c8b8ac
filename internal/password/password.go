// Package password verifies user secrets against stored hashes.
//
// Stored hashes are either bcrypt ($2a$, $2b$, $2y$) or argon2id PHC strings
// ($argon2id$v=19$m=...,t=...,p=...$salt$hash). New hashes are bcrypt.
package password

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/admin-session/internal/model"
)

var _ model.CredentialVerifier = (*Verifier)(nil)

// ErrEmptyPassword is returned by Hash for an empty secret.
var ErrEmptyPassword = errors.New("password is empty")

// Verifier checks raw secrets against bcrypt or argon2id hashes.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify reports whether raw matches hash. Unknown or malformed hashes never match.
func (v *Verifier) Verify(raw, hash string) bool {
	if raw == "" || hash == "" {
		return false
	}

	switch {
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
	case strings.HasPrefix(hash, "$argon2id$"):
		ok, err := verifyArgon2(raw, hash)
		return err == nil && ok
	default:
		return false
	}
}

// DummyHash returns a process-wide bcrypt hash of a random secret. Verifying against it
// costs the same as verifying a real password and never succeeds.
var DummyHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(h)
})

// Hash returns a bcrypt hash of raw with the default cost.
func Hash(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

type argon2Params struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func verifyArgon2(raw, encoded string) (bool, error) {
	p, err := parseArgon2(encoded)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(raw), p.salt, p.time, p.memory, p.parallelism, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(computed, p.key) == 1, nil
}

func parseArgon2(encoded string) (argon2Params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return argon2Params{}, errors.New("invalid argon2id hash format")
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return argon2Params{}, errors.New("unsupported argon2 version")
	}

	var p argon2Params
	for _, pair := range strings.Split(parts[3], ",") {
		k, val, ok := strings.Cut(pair, "=")
		if !ok {
			return argon2Params{}, errors.New("invalid argon2 parameter")
		}
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil || n == 0 {
			return argon2Params{}, fmt.Errorf("invalid argon2 parameter %q", k)
		}
		switch k {
		case "m":
			p.memory = uint32(n)
		case "t":
			p.time = uint32(n)
		case "p":
			if n > 255 {
				return argon2Params{}, errors.New("invalid argon2 parallelism")
			}
			p.parallelism = uint8(n)
		default:
			return argon2Params{}, fmt.Errorf("unknown argon2 parameter %q", k)
		}
	}
	if p.memory == 0 || p.time == 0 || p.parallelism == 0 {
		return argon2Params{}, errors.New("missing argon2 parameters")
	}

	var err error
	if p.salt, err = decodeB64(parts[4]); err != nil || len(p.salt) == 0 {
		return argon2Params{}, errors.New("invalid argon2 salt")
	}
	if p.key, err = decodeB64(parts[5]); err != nil || len(p.key) == 0 {
		return argon2Params{}, errors.New("invalid argon2 key")
	}

	return p, nil
}

// PHC strings are unpadded, some encoders pad anyway.
func decodeB64(s string) ([]byte, error) {
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
