package authenc

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecrypt(t *testing.T) {
	key, err := NewAeKey()
	if err != nil {
		t.Fatalf("NewAeKey: %v", err)
	}
	for _, amount := range []uint64{0, 1, 120, 1<<64 - 1} {
		ct, err := key.Encrypt(amount)
		if err != nil {
			t.Fatalf("Encrypt(%d): %v", amount, err)
		}
		got, err := key.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt(%d): %v", amount, err)
		}
		if got != amount {
			t.Fatalf("Decrypt: got %d want %d", got, amount)
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	a, _ := NewAeKey()
	b, _ := NewAeKey()
	ct, err := a.Encrypt(77)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := b.Decrypt(ct); !errors.Is(err, ErrDecryption) {
		t.Fatalf("expected decryption failure, got %v", err)
	}
	ct[NonceSize] ^= 1
	if _, err := a.Decrypt(ct); !errors.Is(err, ErrDecryption) {
		t.Fatalf("expected tampered ciphertext to fail, got %v", err)
	}
}

func TestDeriveAeKey(t *testing.T) {
	seed := bytes.Repeat([]byte{3}, 32)
	k1, err := DeriveAeKey(seed)
	if err != nil {
		t.Fatalf("DeriveAeKey: %v", err)
	}
	k2, _ := DeriveAeKey(seed)
	if *k1 != *k2 {
		t.Fatal("derivation is not deterministic")
	}
	if _, err := DeriveAeKey(seed[:16]); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected short seed to be rejected, got %v", err)
	}
}
