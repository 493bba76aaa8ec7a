// Package authenc implements the authenticated encryption used for the
// decryptable balance mirrors. Only the key holder can read them, and they
// never take part in any proof.
package authenc

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

const (
	KeySize        = chacha20poly1305.KeySize
	NonceSize      = chacha20poly1305.NonceSize
	CiphertextSize = NonceSize + 8 + chacha20poly1305.Overhead

	keyDerivationInfo = "ctoken-ae-key"
)

var (
	ErrInvalidKey        = errors.New("authenc: invalid key")
	ErrInvalidCiphertext = errors.New("authenc: invalid ciphertext")
	ErrDecryption        = errors.New("authenc: decryption failed")
)

// AeKey is a symmetric key for balance mirrors.
type AeKey [KeySize]byte

// AeCiphertext is nonce || sealed(amount) and is 36 bytes long.
type AeCiphertext [CiphertextSize]byte

func NewAeKey() (*AeKey, error) {
	var k AeKey
	if _, err := rand.Read(k[:]); err != nil {
		return nil, fmt.Errorf("authenc: read randomness: %w", err)
	}
	return &k, nil
}

// DeriveAeKey deterministically derives a key from seed material, such as
// the bytes of an ElGamal secret key.
func DeriveAeKey(seed []byte) (*AeKey, error) {
	if len(seed) < 32 {
		return nil, ErrInvalidKey
	}
	var k AeKey
	kdf := hkdf.New(sha3.New256, seed, nil, []byte(keyDerivationInfo))
	if _, err := io.ReadFull(kdf, k[:]); err != nil {
		return nil, err
	}
	return &k, nil
}

func AeKeyFromBytes(raw []byte) (*AeKey, error) {
	if len(raw) != KeySize {
		return nil, ErrInvalidKey
	}
	var k AeKey
	copy(k[:], raw)
	return &k, nil
}

func (k *AeKey) Encrypt(amount uint64) (AeCiphertext, error) {
	var out AeCiphertext
	aead, err := chacha20poly1305.New(k[:])
	if err != nil {
		return out, err
	}
	if _, err := rand.Read(out[:NonceSize]); err != nil {
		return out, fmt.Errorf("authenc: read nonce: %w", err)
	}
	var plain [8]byte
	binary.LittleEndian.PutUint64(plain[:], amount)
	aead.Seal(out[NonceSize:NonceSize], out[:NonceSize], plain[:], nil)
	return out, nil
}

func (k *AeKey) Decrypt(ct AeCiphertext) (uint64, error) {
	aead, err := chacha20poly1305.New(k[:])
	if err != nil {
		return 0, err
	}
	plain, err := aead.Open(nil, ct[:NonceSize], ct[NonceSize:], nil)
	if err != nil {
		return 0, ErrDecryption
	}
	return binary.LittleEndian.Uint64(plain), nil
}

func AeCiphertextFromBytes(raw []byte) (AeCiphertext, error) {
	var ct AeCiphertext
	if len(raw) != CiphertextSize {
		return ct, ErrInvalidCiphertext
	}
	copy(ct[:], raw)
	return ct, nil
}
