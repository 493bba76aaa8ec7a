package elgamal

import (
	"sync"

	"github.com/bwesterb/go-ristretto"
	"golang.org/x/crypto/sha3"
)

var (
	blindingOnce sync.Once
	blindingBase ristretto.Point
)

// BaseG returns the Pedersen value base, the ristretto255 generator.
func BaseG() *ristretto.Point {
	var p ristretto.Point
	return p.SetBase()
}

// BaseH returns the Pedersen blinding base, derived by hashing the encoding
// of G onto the group.
func BaseH() *ristretto.Point {
	blindingOnce.Do(func() {
		wide := sha3.Sum512(BaseG().Bytes())
		blindingBase = *PointFromUniformBytes(&wide)
	})
	p := blindingBase
	return &p
}

// Opening is the randomness of a Pedersen commitment.
type Opening struct {
	s ristretto.Scalar
}

// NewOpening draws a fresh random opening.
func NewOpening() (*Opening, error) {
	s, err := RandomScalar()
	if err != nil {
		return nil, err
	}
	return &Opening{s: *s}, nil
}

// OpeningFromScalar wraps an existing scalar.
func OpeningFromScalar(s *ristretto.Scalar) *Opening {
	return &Opening{s: *s}
}

// ZeroOpening is the all-zero opening used for plaintext encodings.
func ZeroOpening() *Opening {
	var o Opening
	o.s.SetZero()
	return &o
}

func OpeningFromBytes(raw []byte) (*Opening, error) {
	s, err := ScalarFromCanonicalBytes(raw)
	if err != nil {
		return nil, err
	}
	return &Opening{s: *s}, nil
}

func (o *Opening) Scalar() *ristretto.Scalar {
	s := o.s
	return &s
}

func (o *Opening) Bytes() []byte {
	return o.s.Bytes()
}

func (o *Opening) Add(other *Opening) *Opening {
	var out Opening
	out.s.Add(&o.s, &other.s)
	return &out
}

func (o *Opening) Sub(other *Opening) *Opening {
	var out Opening
	out.s.Sub(&o.s, &other.s)
	return &out
}

func (o *Opening) MulScalar(k *ristretto.Scalar) *Opening {
	var out Opening
	out.s.Mul(&o.s, k)
	return &out
}

func (o *Opening) MulUint64(k uint64) *Opening {
	return o.MulScalar(ScalarFromUint64(k))
}

// Commitment is a Pedersen commitment x·G + r·H.
type Commitment struct {
	p ristretto.Point
}

// Commit commits to amount under a fresh opening.
func Commit(amount uint64) (*Commitment, *Opening, error) {
	opening, err := NewOpening()
	if err != nil {
		return nil, nil, err
	}
	return CommitWithOpening(amount, opening), opening, nil
}

// CommitWithOpening commits to amount under the given opening.
func CommitWithOpening(amount uint64, opening *Opening) *Commitment {
	return CommitScalar(ScalarFromUint64(amount), opening)
}

// CommitScalar commits to an arbitrary scalar value.
func CommitScalar(value *ristretto.Scalar, opening *Opening) *Commitment {
	var xG, rH ristretto.Point
	xG.ScalarMultBase(value)
	rH.ScalarMult(BaseH(), &opening.s)
	var c Commitment
	c.p.Add(&xG, &rH)
	return &c
}

func CommitmentFromPoint(p *ristretto.Point) *Commitment {
	return &Commitment{p: *p}
}

func CommitmentFromBytes(raw []byte) (*Commitment, error) {
	p, err := PointFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return &Commitment{p: *p}, nil
}

func (c *Commitment) Point() *ristretto.Point {
	p := c.p
	return &p
}

func (c *Commitment) Bytes() []byte {
	return c.p.Bytes()
}

func (c *Commitment) Equal(other *Commitment) bool {
	return c.p.Equals(&other.p)
}

func (c *Commitment) Add(other *Commitment) *Commitment {
	var out Commitment
	out.p.Add(&c.p, &other.p)
	return &out
}

func (c *Commitment) Sub(other *Commitment) *Commitment {
	var out Commitment
	out.p.Sub(&c.p, &other.p)
	return &out
}

func (c *Commitment) MulScalar(k *ristretto.Scalar) *Commitment {
	var out Commitment
	out.p.ScalarMult(&c.p, k)
	return &out
}

func (c *Commitment) MulUint64(k uint64) *Commitment {
	return c.MulScalar(ScalarFromUint64(k))
}

// CombineLoHiCommitments returns lo + 2^loBits·hi.
func CombineLoHiCommitments(lo, hi *Commitment, loBits uint) *Commitment {
	return lo.Add(hi.MulScalar(powerOfTwo(loBits)))
}

// CombineLoHiOpenings returns lo + 2^loBits·hi.
func CombineLoHiOpenings(lo, hi *Opening, loBits uint) *Opening {
	return lo.Add(hi.MulScalar(powerOfTwo(loBits)))
}

func powerOfTwo(bits uint) *ristretto.Scalar {
	var s ristretto.Scalar
	s.SetOne()
	for i := uint(0); i < bits; i++ {
		var doubled ristretto.Scalar
		doubled.Add(&s, &s)
		s = doubled
	}
	return &s
}
