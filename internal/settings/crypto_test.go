package settings

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	salt := "test-salt"
	enc, err := encryptStringValue("super-secret", salt)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if !strings.HasPrefix(enc, "v2:") {
		t.Fatalf("expected v2 prefix, got %q", enc)
	}

	got := decryptStringValue(enc, salt)
	if got != "super-secret" {
		t.Errorf("decrypt = %q, want %q", got, "super-secret")
	}
}

func TestDecryptWrongSaltReturnsCiphertextUnchanged(t *testing.T) {
	enc, err := encryptStringValue("super-secret", "salt-a")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got := decryptStringValue(enc, "salt-b")
	if got != enc {
		t.Errorf("decrypt with wrong salt = %q, want unchanged %q", got, enc)
	}
}

func TestEncryptIdempotentOnAlreadyEncrypted(t *testing.T) {
	enc, err := encryptStringValue("super-secret", "salt")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	again, err := encryptStringValue(enc, "salt")
	if err != nil {
		t.Fatalf("encrypt again: %v", err)
	}
	if again != enc {
		t.Errorf("re-encrypting a v2 value changed it: %q != %q", again, enc)
	}
}

func TestLegacyV1Decryption(t *testing.T) {
	salt := "legacy-salt"
	plaintext := "legacy-plaintext"

	key := deriveKey(salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	iv := make([]byte, v1IVLen)
	for i := range iv {
		iv[i] = byte(i)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	v1 := hex.EncodeToString(iv) + ":" + hex.EncodeToString(ct)

	got := decryptStringValue(v1, salt)
	if got != plaintext {
		t.Fatalf("decrypt v1 = %q, want %q", got, plaintext)
	}

	migrated, err := migrateEncryptedStringValue(v1, salt)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.HasPrefix(migrated, "v2:") {
		t.Fatalf("migrated value missing v2 prefix: %q", migrated)
	}
	if decryptStringValue(migrated, salt) != plaintext {
		t.Fatalf("migrated value does not decrypt back to original plaintext")
	}
}

func TestMigratePlaintextPassesThrough(t *testing.T) {
	migrated, err := migrateEncryptedStringValue("just a plain string", "salt")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if migrated != "just a plain string" {
		t.Errorf("migrate(plaintext) = %q, want unchanged", migrated)
	}
}

func TestLooksEncryptedRejectsGarbage(t *testing.T) {
	cases := []string{"", "hello", "a:b", "v2:nothex:nothex:nothex"}
	for _, c := range cases {
		if looksEncrypted(c) {
			t.Errorf("looksEncrypted(%q) = true, want false", c)
		}
	}
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	pad := make([]byte, padLen)
	for i := range pad {
		pad[i] = byte(padLen)
	}
	return append(append([]byte{}, data...), pad...)
}
