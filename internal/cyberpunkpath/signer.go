package cyberpunkpath

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Memory      = 15_000
	argon2Time        = 2
	argon2Parallelism = 1
	argon2Version     = argon2.Version // 0x13
	saltLength        = 16
	keyLength         = 32
)

// Signer computes and verifies the Argon2id PHC-string signatures that gate
// access to a signed cyberpunkpath: only a request whose path hash matches
// the one baked into the URL is honoured.
type Signer struct {
	secret []byte
}

// NewSigner returns a Signer keyed on secret. The secret is mixed into every
// hash as additional data so a leaked PHC string from one deployment can't be
// replayed against another with a different secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the PHC-encoded Argon2id hash of path, salted with fresh
// random bytes.
func (s *Signer) Sign(path string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	hash := argon2.IDKey(s.keyed(path), salt, argon2Time, argon2Memory, argon2Parallelism, keyLength)
	return encodePHC(salt, hash), nil
}

// Verify reports whether candidate hashes to the same value as
// expectedPHC, a string previously returned by Sign.
func (s *Signer) Verify(expectedPHC, candidate string) (bool, error) {
	salt, hash, err := decodePHC(expectedPHC)
	if err != nil {
		return false, fmt.Errorf("parse hash in PHC string format: %w", err)
	}
	computed := argon2.IDKey(s.keyed(candidate), salt, argon2Time, argon2Memory, argon2Parallelism, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

func (s *Signer) keyed(path string) []byte {
	if len(s.secret) == 0 {
		return []byte(path)
	}
	return append([]byte(path), s.secret...)
}

// encodePHC and decodePHC use URL-safe base64 (no '+' or '/') since the
// encoded string is embedded as a path segment ahead of the signed key.
func encodePHC(salt, hash []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version, argon2Memory, argon2Time, argon2Parallelism,
		base64.RawURLEncoding.EncodeToString(salt),
		base64.RawURLEncoding.EncodeToString(hash),
	)
}

func decodePHC(phc string) (salt, hash []byte, err error) {
	parts := strings.Split(phc, "$")
	// ["", "argon2id", "v=19", "m=...,t=...,p=...", salt, hash]
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, fmt.Errorf("malformed PHC string")
	}
	salt, err = base64.RawURLEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	hash, err = base64.RawURLEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, fmt.Errorf("decode hash: %w", err)
	}
	return salt, hash, nil
}

// UnsafePrefix marks a path as deliberately unsigned. A request whose first
// path segment is this value skips signature verification entirely.
const UnsafePrefix = "unsafe/"

// ToUnsafeString prepends the unsafe marker to a Params' canonical string.
func ToUnsafeString(p Params) string {
	return UnsafePrefix + p.String()
}

// ToSignedString signs a Params' canonical string and prefixes the result
// with the resulting PHC hash, e.g. "$argon2id$.../key?query".
func ToSignedString(p Params, signer *Signer) (string, error) {
	path := p.String()
	sig, err := signer.Sign(path)
	if err != nil {
		return "", err
	}
	return sig + "/" + path, nil
}
