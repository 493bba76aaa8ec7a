package zkproofs

import (
	"math/bits"

	"github.com/bwesterb/go-ristretto"
)

// innerProductProof shows knowledge of vectors a, b such that
// P = <a,G> + <b,H> + <a,b>·Q, in log2(n) rounds.
type innerProductProof struct {
	L []*ristretto.Point
	R []*ristretto.Point
	A *ristretto.Scalar
	B *ristretto.Scalar
}

func innerProduct(a, b []*ristretto.Scalar) *ristretto.Scalar {
	acc := zeroScalar()
	for i := range a {
		acc = muladd(a[i], b[i], acc)
	}
	return acc
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func proveInnerProduct(q *ristretto.Point, gVec, hVec []*ristretto.Point, a, b []*ristretto.Scalar, t *transcript) (*innerProductProof, error) {
	n := len(gVec)
	if n != len(hVec) || n != len(a) || n != len(b) || !isPowerOfTwo(n) {
		return nil, ErrLengthMismatch
	}
	t.appendDomainSeparatorN("inner-product", uint64(n))

	// Work on copies so the caller's vectors survive.
	G := append([]*ristretto.Point(nil), gVec...)
	H := append([]*ristretto.Point(nil), hVec...)
	a = append([]*ristretto.Scalar(nil), a...)
	b = append([]*ristretto.Scalar(nil), b...)

	rounds := bits.TrailingZeros(uint(n))
	proof := &innerProductProof{
		L: make([]*ristretto.Point, 0, rounds),
		R: make([]*ristretto.Point, 0, rounds),
	}
	for n > 1 {
		n /= 2
		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		cL := innerProduct(aL, bR)
		cR := innerProduct(aR, bL)

		L := addPoints(multiscalarMul(aL, gR), multiscalarMul(bR, hL), mulPoint(q, cL))
		R := addPoints(multiscalarMul(aR, gL), multiscalarMul(bL, hR), mulPoint(q, cR))
		proof.L = append(proof.L, L)
		proof.R = append(proof.R, R)
		t.appendPoint("L", L)
		t.appendPoint("R", R)

		u := t.challengeScalar("u")
		uInv := invScalar(u)

		nextA := make([]*ristretto.Scalar, n)
		nextB := make([]*ristretto.Scalar, n)
		nextG := make([]*ristretto.Point, n)
		nextH := make([]*ristretto.Point, n)
		for i := 0; i < n; i++ {
			nextA[i] = addScalar(mulScalar(aL[i], u), mulScalar(aR[i], uInv))
			nextB[i] = addScalar(mulScalar(bL[i], uInv), mulScalar(bR[i], u))
			nextG[i] = addPoints(mulPoint(gL[i], uInv), mulPoint(gR[i], u))
			nextH[i] = addPoints(mulPoint(hL[i], u), mulPoint(hR[i], uInv))
		}
		a, b, G, H = nextA, nextB, nextG, nextH
	}
	proof.A = a[0]
	proof.B = b[0]
	return proof, nil
}

// verify checks the proof against the commitment p. The generator vectors
// are folded with the same challenges the prover derived.
func (ip *innerProductProof) verify(q, p *ristretto.Point, gVec, hVec []*ristretto.Point, t *transcript) error {
	n := len(gVec)
	if n != len(hVec) || !isPowerOfTwo(n) || len(ip.L) != bits.TrailingZeros(uint(n)) || len(ip.L) != len(ip.R) {
		return ErrLengthMismatch
	}
	t.appendDomainSeparatorN("inner-product", uint64(n))

	G := append([]*ristretto.Point(nil), gVec...)
	H := append([]*ristretto.Point(nil), hVec...)
	for round := range ip.L {
		if err := t.validateAndAppendPoint("L", ip.L[round]); err != nil {
			return err
		}
		if err := t.validateAndAppendPoint("R", ip.R[round]); err != nil {
			return err
		}
		u := t.challengeScalar("u")
		uInv := invScalar(u)
		uSq := mulScalar(u, u)
		uInvSq := mulScalar(uInv, uInv)

		p = addPoints(p, mulPoint(ip.L[round], uSq), mulPoint(ip.R[round], uInvSq))

		n /= 2
		nextG := make([]*ristretto.Point, n)
		nextH := make([]*ristretto.Point, n)
		for i := 0; i < n; i++ {
			nextG[i] = addPoints(mulPoint(G[i], uInv), mulPoint(G[n+i], u))
			nextH[i] = addPoints(mulPoint(H[i], u), mulPoint(H[n+i], uInv))
		}
		G, H = nextG, nextH
	}
	expected := addPoints(mulPoint(G[0], ip.A), mulPoint(H[0], ip.B), mulPoint(q, mulScalar(ip.A, ip.B)))
	if !expected.Equals(p) {
		return ErrAlgebraicRelation
	}
	return nil
}
