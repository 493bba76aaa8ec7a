package zkproofs

import (
	"github.com/bwesterb/go-ristretto"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

func mulPoint(p *ristretto.Point, s *ristretto.Scalar) *ristretto.Point {
	var out ristretto.Point
	return out.ScalarMult(p, s)
}

func mulBase(s *ristretto.Scalar) *ristretto.Point {
	var out ristretto.Point
	return out.ScalarMultBase(s)
}

func addPoints(points ...*ristretto.Point) *ristretto.Point {
	acc := elgamal.IdentityPoint()
	for _, p := range points {
		var next ristretto.Point
		next.Add(acc, p)
		acc = &next
	}
	return acc
}

func subPoint(a, b *ristretto.Point) *ristretto.Point {
	var out ristretto.Point
	return out.Sub(a, b)
}

// multiscalarMul computes Σ scalars[i]·points[i].
func multiscalarMul(scalars []*ristretto.Scalar, points []*ristretto.Point) *ristretto.Point {
	acc := elgamal.IdentityPoint()
	for i := range scalars {
		var term, next ristretto.Point
		term.ScalarMult(points[i], scalars[i])
		next.Add(acc, &term)
		acc = &next
	}
	return acc
}

func addScalar(a, b *ristretto.Scalar) *ristretto.Scalar {
	var out ristretto.Scalar
	return out.Add(a, b)
}

func subScalar(a, b *ristretto.Scalar) *ristretto.Scalar {
	var out ristretto.Scalar
	return out.Sub(a, b)
}

func mulScalar(a, b *ristretto.Scalar) *ristretto.Scalar {
	var out ristretto.Scalar
	return out.Mul(a, b)
}

func negScalar(a *ristretto.Scalar) *ristretto.Scalar {
	var out ristretto.Scalar
	return out.Neg(a)
}

func invScalar(a *ristretto.Scalar) *ristretto.Scalar {
	var out ristretto.Scalar
	return out.Inverse(a)
}

func oneScalar() *ristretto.Scalar {
	var out ristretto.Scalar
	return out.SetOne()
}

func zeroScalar() *ristretto.Scalar {
	var out ristretto.Scalar
	return out.SetZero()
}

// muladd returns c·x + y, the response of a sigma protocol.
func muladd(c, x, y *ristretto.Scalar) *ristretto.Scalar {
	return addScalar(mulScalar(c, x), y)
}

func randomScalars(n int) ([]*ristretto.Scalar, error) {
	out := make([]*ristretto.Scalar, n)
	for i := range out {
		s, err := elgamal.RandomScalar()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// byteWriter accumulates fixed-size encodings.
type byteWriter struct {
	buf []byte
}

func newByteWriter(size int) *byteWriter {
	return &byteWriter{buf: make([]byte, 0, size)}
}

func (w *byteWriter) point(p *ristretto.Point) *byteWriter {
	w.buf = append(w.buf, p.Bytes()...)
	return w
}

func (w *byteWriter) scalar(s *ristretto.Scalar) *byteWriter {
	w.buf = append(w.buf, s.Bytes()...)
	return w
}

func (w *byteWriter) raw(b []byte) *byteWriter {
	w.buf = append(w.buf, b...)
	return w
}

func (w *byteWriter) bytes() []byte {
	return w.buf
}

// byteReader consumes fixed-size encodings and remembers the first error.
type byteReader struct {
	buf []byte
	err error
}

func newByteReader(raw []byte, size int) *byteReader {
	r := &byteReader{buf: raw}
	if len(raw) != size {
		r.err = ErrDeserialization
	}
	return r
}

func (r *byteReader) next(n int) []byte {
	if r.err != nil || len(r.buf) < n {
		r.err = ErrDeserialization
		return nil
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out
}

func (r *byteReader) point() *ristretto.Point {
	raw := r.next(elgamal.PointSize)
	if r.err != nil {
		return nil
	}
	p, err := elgamal.PointFromBytes(raw)
	if err != nil {
		r.err = ErrDeserialization
		return nil
	}
	return p
}

func (r *byteReader) scalar() *ristretto.Scalar {
	raw := r.next(elgamal.ScalarSize)
	if r.err != nil {
		return nil
	}
	s, err := elgamal.ScalarFromCanonicalBytes(raw)
	if err != nil {
		r.err = ErrDeserialization
		return nil
	}
	return s
}

func (r *byteReader) pubkey() *elgamal.PublicKey {
	p := r.point()
	if r.err != nil {
		return nil
	}
	pk, err := elgamal.PublicKeyFromBytes(p.Bytes())
	if err != nil {
		r.err = ErrDeserialization
	}
	return pk
}

func (r *byteReader) commitment() *elgamal.Commitment {
	p := r.point()
	if r.err != nil {
		return nil
	}
	return elgamal.CommitmentFromPoint(p)
}

func (r *byteReader) ciphertext() *elgamal.Ciphertext {
	raw := r.next(elgamal.CiphertextSize)
	if r.err != nil {
		return nil
	}
	ct, err := elgamal.CiphertextFromBytes(raw)
	if err != nil {
		r.err = ErrDeserialization
		return nil
	}
	return ct
}

func (r *byteReader) grouped(handles int) *elgamal.GroupedCiphertext {
	raw := r.next(elgamal.GroupedCiphertextSize(handles))
	if r.err != nil {
		return nil
	}
	g, err := elgamal.GroupedCiphertextFromBytes(raw, handles)
	if err != nil {
		r.err = ErrDeserialization
		return nil
	}
	return g
}

func (r *byteReader) finish() error {
	if r.err == nil && len(r.buf) != 0 {
		r.err = ErrDeserialization
	}
	return r.err
}
