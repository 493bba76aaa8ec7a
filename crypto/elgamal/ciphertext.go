package elgamal

import (
	"github.com/bwesterb/go-ristretto"
)

const (
	DecryptHandleSize = 32
	CiphertextSize    = 64
)

// DecryptHandle is the per-recipient component r·P of a ciphertext.
type DecryptHandle struct {
	p ristretto.Point
}

func DecryptHandleFromBytes(raw []byte) (*DecryptHandle, error) {
	p, err := PointFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return &DecryptHandle{p: *p}, nil
}

func DecryptHandleFromPoint(p *ristretto.Point) *DecryptHandle {
	return &DecryptHandle{p: *p}
}

func (h *DecryptHandle) Point() *ristretto.Point {
	p := h.p
	return &p
}

func (h *DecryptHandle) Bytes() []byte {
	return h.p.Bytes()
}

func (h *DecryptHandle) Equal(other *DecryptHandle) bool {
	return h.p.Equals(&other.p)
}

// Ciphertext is a twisted ElGamal ciphertext (x·G + r·H, r·P).
type Ciphertext struct {
	Commitment Commitment
	Handle     DecryptHandle
}

// ZeroCiphertext returns the identically zero ciphertext (identity, identity).
func ZeroCiphertext() *Ciphertext {
	var ct Ciphertext
	ct.Commitment.p.SetZero()
	ct.Handle.p.SetZero()
	return &ct
}

// EncodeAmount encodes amount as a ciphertext with zero randomness. It is
// valid under every public key.
func EncodeAmount(amount uint64) *Ciphertext {
	ct := ZeroCiphertext()
	ct.Commitment.p.ScalarMultBase(ScalarFromUint64(amount))
	return ct
}

func CiphertextFromBytes(raw []byte) (*Ciphertext, error) {
	if len(raw) != CiphertextSize {
		return nil, ErrMalformedCiphertext
	}
	c, err := CommitmentFromBytes(raw[:32])
	if err != nil {
		return nil, err
	}
	h, err := DecryptHandleFromBytes(raw[32:])
	if err != nil {
		return nil, err
	}
	return &Ciphertext{Commitment: *c, Handle: *h}, nil
}

func (ct *Ciphertext) Bytes() []byte {
	out := make([]byte, 0, CiphertextSize)
	out = append(out, ct.Commitment.p.Bytes()...)
	return append(out, ct.Handle.p.Bytes()...)
}

func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.Commitment.Equal(&other.Commitment) && ct.Handle.Equal(&other.Handle)
}

// IsZero reports whether ct is identically the zero ciphertext. A ciphertext
// that merely decrypts to zero does not qualify.
func (ct *Ciphertext) IsZero() bool {
	identity := IdentityPoint()
	return ct.Commitment.p.Equals(identity) && ct.Handle.p.Equals(identity)
}

func (ct *Ciphertext) Add(other *Ciphertext) *Ciphertext {
	var out Ciphertext
	out.Commitment.p.Add(&ct.Commitment.p, &other.Commitment.p)
	out.Handle.p.Add(&ct.Handle.p, &other.Handle.p)
	return &out
}

func (ct *Ciphertext) Sub(other *Ciphertext) *Ciphertext {
	var out Ciphertext
	out.Commitment.p.Sub(&ct.Commitment.p, &other.Commitment.p)
	out.Handle.p.Sub(&ct.Handle.p, &other.Handle.p)
	return &out
}

func (ct *Ciphertext) AddAmount(amount uint64) *Ciphertext {
	return ct.Add(EncodeAmount(amount))
}

func (ct *Ciphertext) SubAmount(amount uint64) *Ciphertext {
	return ct.Sub(EncodeAmount(amount))
}

func (ct *Ciphertext) MulScalar(k *ristretto.Scalar) *Ciphertext {
	var out Ciphertext
	out.Commitment.p.ScalarMult(&ct.Commitment.p, k)
	out.Handle.p.ScalarMult(&ct.Handle.p, k)
	return &out
}

// CombineLoHiCiphertexts returns lo + 2^loBits·hi.
func CombineLoHiCiphertexts(lo, hi *Ciphertext, loBits uint) *Ciphertext {
	return lo.Add(hi.MulScalar(powerOfTwo(loBits)))
}
