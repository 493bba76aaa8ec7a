package elgamal

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bwesterb/go-ristretto"
)

const (
	ScalarSize = 32
	PointSize  = 32
)

var (
	errInvalidScalar = errors.New("elgamal: non-canonical scalar")
	errZeroScalar    = errors.New("elgamal: scalar must not be zero")
)

// ScalarFromUint64 returns v as a scalar.
func ScalarFromUint64(v uint64) *ristretto.Scalar {
	var buf [ScalarSize]byte
	binary.LittleEndian.PutUint64(buf[:8], v)
	var s ristretto.Scalar
	return s.SetBytes(&buf)
}

// RandomScalar draws a uniformly random non-zero scalar.
func RandomScalar() (*ristretto.Scalar, error) {
	var wide [64]byte
	for {
		if _, err := rand.Read(wide[:]); err != nil {
			return nil, fmt.Errorf("elgamal: read randomness: %w", err)
		}
		var s ristretto.Scalar
		s.SetReduced(&wide)
		if !IsZeroScalar(&s) {
			return &s, nil
		}
	}
}

// ScalarFromCanonicalBytes decodes a 32-byte little-endian scalar, rejecting
// encodings that are not reduced modulo the group order.
func ScalarFromCanonicalBytes(raw []byte) (*ristretto.Scalar, error) {
	if len(raw) != ScalarSize {
		return nil, errInvalidScalar
	}
	var buf [ScalarSize]byte
	copy(buf[:], raw)
	var s ristretto.Scalar
	s.SetBytes(&buf)
	var back [ScalarSize]byte
	copy(back[:], s.Bytes())
	if back != buf {
		return nil, errInvalidScalar
	}
	return &s, nil
}

func IsZeroScalar(s *ristretto.Scalar) bool {
	var zero ristretto.Scalar
	zero.SetZero()
	return s.Equals(&zero)
}

// PointFromBytes decodes a compressed ristretto255 point.
func PointFromBytes(raw []byte) (*ristretto.Point, error) {
	if len(raw) != PointSize {
		return nil, ErrMalformedCiphertext
	}
	var buf [PointSize]byte
	copy(buf[:], raw)
	var p ristretto.Point
	if !p.SetBytes(&buf) {
		return nil, ErrMalformedCiphertext
	}
	return &p, nil
}

// IdentityPoint returns the group identity, which encodes as 32 zero bytes.
func IdentityPoint() *ristretto.Point {
	var p ristretto.Point
	return p.SetZero()
}

// PointFromUniformBytes maps 64 uniformly random bytes onto the group.
func PointFromUniformBytes(wide *[64]byte) *ristretto.Point {
	var lo, hi [32]byte
	copy(lo[:], wide[:32])
	copy(hi[:], wide[32:])
	var p1, p2, out ristretto.Point
	p1.SetElligator(&lo)
	p2.SetElligator(&hi)
	return out.Add(&p1, &p2)
}

func encodePoint(p *ristretto.Point) [PointSize]byte {
	var out [PointSize]byte
	copy(out[:], p.Bytes())
	return out
}
