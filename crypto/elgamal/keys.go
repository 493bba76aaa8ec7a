package elgamal

import (
	"github.com/bwesterb/go-ristretto"
)

// SecretKey is a twisted ElGamal secret scalar s.
type SecretKey struct {
	s ristretto.Scalar
}

// PublicKey is the point s⁻¹·H.
type PublicKey struct {
	p ristretto.Point
}

type Keypair struct {
	Public *PublicKey
	Secret *SecretKey
}

// NewKeypair generates a fresh keypair.
func NewKeypair() (*Keypair, error) {
	s, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	return keypairFromScalar(s), nil
}

// KeypairFromSecretBytes rebuilds a keypair from a canonical, non-zero secret.
func KeypairFromSecretBytes(raw []byte) (*Keypair, error) {
	s, err := ScalarFromCanonicalBytes(raw)
	if err != nil {
		return nil, err
	}
	if IsZeroScalar(s) {
		return nil, errZeroScalar
	}
	return keypairFromScalar(s), nil
}

func keypairFromScalar(s *ristretto.Scalar) *Keypair {
	secret := &SecretKey{s: *s}
	return &Keypair{Public: secret.PublicKey(), Secret: secret}
}

func (k *SecretKey) PublicKey() *PublicKey {
	var inv ristretto.Scalar
	inv.Inverse(&k.s)
	var pk PublicKey
	pk.p.ScalarMult(BaseH(), &inv)
	return &pk
}

func (k *SecretKey) Scalar() *ristretto.Scalar {
	s := k.s
	return &s
}

func (k *SecretKey) Bytes() []byte {
	return k.s.Bytes()
}

// DecryptToPoint returns C - s·D, which equals x·G for a ciphertext of x.
func (k *SecretKey) DecryptToPoint(ct *Ciphertext) *ristretto.Point {
	var sD, out ristretto.Point
	sD.ScalarMult(&ct.Handle.p, &k.s)
	out.Sub(&ct.Commitment.p, &sD)
	return &out
}

// Decrypt recovers the plaintext of ct if it lies in [0, maxAmount].
func (k *SecretKey) Decrypt(ct *Ciphertext, maxAmount uint64) (uint64, bool) {
	return SolveDiscreteLog(k.DecryptToPoint(ct), maxAmount)
}

// DecryptU32 recovers plaintexts that fit in 32 bits, the width of split
// amount halves and pending balance components.
func (k *SecretKey) DecryptU32(ct *Ciphertext) (uint64, bool) {
	return k.Decrypt(ct, 1<<32-1)
}

func PublicKeyFromBytes(raw []byte) (*PublicKey, error) {
	p, err := PointFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return &PublicKey{p: *p}, nil
}

// ZeroPublicKey returns the identity key, used when no auditor is configured.
func ZeroPublicKey() *PublicKey {
	return &PublicKey{p: *IdentityPoint()}
}

func (pk *PublicKey) Point() *ristretto.Point {
	p := pk.p
	return &p
}

func (pk *PublicKey) Bytes() []byte {
	return pk.p.Bytes()
}

func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.p.Equals(&other.p)
}

func (pk *PublicKey) IsZero() bool {
	return pk.p.Equals(IdentityPoint())
}

// DecryptHandle returns r·P for the opening r.
func (pk *PublicKey) DecryptHandle(opening *Opening) *DecryptHandle {
	var h DecryptHandle
	h.p.ScalarMult(&pk.p, &opening.s)
	return &h
}

// Encrypt encrypts amount under a fresh opening.
func (pk *PublicKey) Encrypt(amount uint64) (*Ciphertext, *Opening, error) {
	opening, err := NewOpening()
	if err != nil {
		return nil, nil, err
	}
	return pk.EncryptWithOpening(amount, opening), opening, nil
}

func (pk *PublicKey) EncryptWithOpening(amount uint64, opening *Opening) *Ciphertext {
	return &Ciphertext{
		Commitment: *CommitWithOpening(amount, opening),
		Handle:     *pk.DecryptHandle(opening),
	}
}
