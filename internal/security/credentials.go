// Package security handles at-rest encryption of venue API credentials for
// the live executor path. Paper trading never touches this package.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrCiphertextTooShort = errors.New("security: ciphertext too short")
	ErrDecryptionFailed   = errors.New("security: decryption failed: authentication error")
)

// deriveKey stretches an operator-supplied passphrase of any length into a
// 32-byte AES-256 key via HKDF-SHA256, so the security.passphrase setting
// need not already be exactly 32 bytes.
func deriveKey(passphrase string) ([]byte, error) {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(passphrase), nil, []byte("arbitrage-venue-credentials"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt seals plaintext with AES-256-GCM under a key derived from
// passphrase, returning a base64-encoded envelope safe to store on disk.
func Encrypt(plaintext, passphrase string) (string, error) {
	key, err := deriveKey(passphrase)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens a base64 envelope produced by Encrypt under the same
// passphrase. Returns ErrCiphertextTooShort if the envelope is not valid
// base64 or is shorter than a nonce, and ErrDecryptionFailed if GCM
// authentication fails (tampered ciphertext or wrong passphrase).
func Decrypt(envelope, passphrase string) (string, error) {
	key, err := deriveKey(passphrase)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", ErrCiphertextTooShort
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", ErrCiphertextTooShort
	}
	nonce, data := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, data, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// Credential holds one venue's decrypted API key material. Only ever held
// in memory; never logged, never round-tripped back to disk in plaintext.
type Credential struct {
	Venue      string
	APIKey     string
	Secret     string
	Passphrase string // OKX-style venues only
}

// Store decrypts a set of on-disk VenueCredential envelopes into in-memory
// Credentials at startup.
type Store struct {
	passphrase string
}

// NewStore builds a Store that derives its AES key from passphrase.
func NewStore(passphrase string) *Store {
	return &Store{passphrase: passphrase}
}

// Resolve decrypts one venue's credential envelope.
func (s *Store) Resolve(venue, apiKeyEnvelope, secretEnvelope, passphraseEnvelope string) (Credential, error) {
	apiKey, err := Decrypt(apiKeyEnvelope, s.passphrase)
	if err != nil {
		return Credential{}, err
	}
	secret, err := Decrypt(secretEnvelope, s.passphrase)
	if err != nil {
		return Credential{}, err
	}

	var pass string
	if passphraseEnvelope != "" {
		pass, err = Decrypt(passphraseEnvelope, s.passphrase)
		if err != nil {
			return Credential{}, err
		}
	}

	return Credential{Venue: venue, APIKey: apiKey, Secret: secret, Passphrase: pass}, nil
}
