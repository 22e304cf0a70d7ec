package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the size of fingerprint keys in bytes.
const KeySize = 32

// FingerprintContext is the HKDF info string for duplicate-detection keys.
const FingerprintContext = "vaultguard-fingerprint-v1"

// GenerateKey generates a 32-byte cryptographically secure random key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return key, nil
}

// DeriveKey derives a 32-byte key from secret using HKDF-SHA256.
func DeriveKey(secret []byte, context string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("deriving key: empty secret")
	}
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, secret, nil, []byte(context))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return key, nil
}

// Fingerprinter produces keyed password fingerprints. Two entries share a
// fingerprint exactly when they share a password, and the fingerprint
// cannot be reversed without the key.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter creates a Fingerprinter keyed from secret. An empty secret
// yields a random per-process key.
func NewFingerprinter(secret string) (*Fingerprinter, error) {
	var (
		key []byte
		err error
	)
	if secret == "" {
		key, err = GenerateKey()
	} else {
		key, err = DeriveKey([]byte(secret), FingerprintContext)
	}
	if err != nil {
		return nil, err
	}
	return &Fingerprinter{key: key}, nil
}

// Fingerprint returns the hex HMAC-SHA256 of password.
func (f *Fingerprinter) Fingerprint(password string) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

// BreachFingerprint returns the uppercase SHA-1 hex digest used by
// k-anonymity breach corpora.
func BreachFingerprint(password string) string {
	sum := sha1.Sum([]byte(password))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
