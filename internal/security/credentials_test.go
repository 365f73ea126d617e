package security

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	envelope, err := Encrypt("super-secret-api-key", "correct-passphrase")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	plain, err := Decrypt(envelope, "correct-passphrase")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "super-secret-api-key" {
		t.Fatalf("round trip mismatch: got %q", plain)
	}
}

func TestDecryptWrongPassphraseFails(t *testing.T) {
	envelope, err := Encrypt("secret", "right")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(envelope, "wrong"); err == nil {
		t.Fatalf("expected decryption to fail with the wrong passphrase")
	}
}

func TestDecryptTamperedCiphertextRejected(t *testing.T) {
	envelope, err := Encrypt("secret", "pass")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	tampered := []byte(envelope)
	tampered[len(tampered)-1] ^= 0x01
	if _, err := Decrypt(string(tampered), "pass"); err == nil {
		t.Fatalf("expected tampered ciphertext to be rejected")
	}
}

func TestStoreResolve(t *testing.T) {
	store := NewStore("op-passphrase")

	apiKeyEnv, _ := Encrypt("key123", "op-passphrase")
	secretEnv, _ := Encrypt("secret456", "op-passphrase")

	cred, err := store.Resolve("bybit", apiKeyEnv, secretEnv, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cred.Venue != "bybit" || cred.APIKey != "key123" || cred.Secret != "secret456" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
	if cred.Passphrase != "" {
		t.Fatalf("expected empty passphrase when none supplied")
	}
}

func TestStoreResolveWithPassphrase(t *testing.T) {
	store := NewStore("op-passphrase")

	apiKeyEnv, _ := Encrypt("key", "op-passphrase")
	secretEnv, _ := Encrypt("secret", "op-passphrase")
	passEnv, _ := Encrypt("okx-passphrase", "op-passphrase")

	cred, err := store.Resolve("okx", apiKeyEnv, secretEnv, passEnv)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cred.Passphrase != "okx-passphrase" {
		t.Fatalf("passphrase = %q, want okx-passphrase", cred.Passphrase)
	}
}
