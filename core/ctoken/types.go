package ctoken

import (
	"fmt"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

const (
	PointSize      = elgamal.PointSize
	CiphertextSize = elgamal.CiphertextSize
)

// Ciphertext is the stored form of an ElGamal ciphertext. The zero value is
// the zero ciphertext.
type Ciphertext struct {
	Commitment [PointSize]byte
	Handle     [PointSize]byte
}

// Pubkey is the stored form of an ElGamal public key. The zero value is the
// identity key used for an absent auditor.
type Pubkey [PointSize]byte

func CiphertextFrom(ct *elgamal.Ciphertext) Ciphertext {
	var out Ciphertext
	copy(out.Commitment[:], ct.Commitment.Bytes())
	copy(out.Handle[:], ct.Handle.Bytes())
	return out
}

func CiphertextFromBytes(raw []byte) (Ciphertext, error) {
	if len(raw) != CiphertextSize {
		return Ciphertext{}, fmt.Errorf("%w: %d bytes", ErrMalformedCiphertext, len(raw))
	}
	var out Ciphertext
	copy(out.Commitment[:], raw[:PointSize])
	copy(out.Handle[:], raw[PointSize:])
	return out, nil
}

// Decode parses the stored points.
func (c Ciphertext) Decode() (*elgamal.Ciphertext, error) {
	ct, err := elgamal.CiphertextFromBytes(c.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return ct, nil
}

func (c Ciphertext) Bytes() []byte {
	out := make([]byte, 0, CiphertextSize)
	out = append(out, c.Commitment[:]...)
	return append(out, c.Handle[:]...)
}

// IsZero reports whether c is byte-identical to the zero ciphertext. A
// ciphertext that merely decrypts to zero is not zero.
func (c Ciphertext) IsZero() bool {
	return c == Ciphertext{}
}

func PubkeyFrom(pk *elgamal.PublicKey) Pubkey {
	var out Pubkey
	copy(out[:], pk.Bytes())
	return out
}

func (p Pubkey) Decode() (*elgamal.PublicKey, error) {
	pk, err := elgamal.PublicKeyFromBytes(p[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return pk, nil
}

func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// pubkeyOrZero maps a nil key to the zero key.
func pubkeyOrZero(pk *elgamal.PublicKey) *elgamal.PublicKey {
	if pk == nil {
		return elgamal.ZeroPublicKey()
	}
	return pk
}

func addCiphertexts(a, b Ciphertext) (Ciphertext, error) {
	x, err := a.Decode()
	if err != nil {
		return Ciphertext{}, err
	}
	y, err := b.Decode()
	if err != nil {
		return Ciphertext{}, err
	}
	return CiphertextFrom(x.Add(y)), nil
}

func subCiphertexts(a, b Ciphertext) (Ciphertext, error) {
	x, err := a.Decode()
	if err != nil {
		return Ciphertext{}, err
	}
	y, err := b.Decode()
	if err != nil {
		return Ciphertext{}, err
	}
	return CiphertextFrom(x.Sub(y)), nil
}
