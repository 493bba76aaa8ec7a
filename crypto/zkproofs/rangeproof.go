package zkproofs

import (
	"github.com/bwesterb/go-ristretto"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

// MaxRangeCommitments is the number of commitment slots in a batched range
// proof context.
const MaxRangeCommitments = 8

// RangeProofSize returns the encoded size of a proof over totalBits bits.
func RangeProofSize(totalBits int) int {
	rounds := 0
	for n := totalBits; n > 1; n /= 2 {
		rounds++
	}
	return 4*32 + 3*32 + 2*rounds*32 + 2*32
}

// RangeProof is an aggregated Bulletproofs range proof. Commitment j is
// shown to open to a value below 2^bitLengths[j].
type RangeProof struct {
	A          *ristretto.Point
	S          *ristretto.Point
	T1         *ristretto.Point
	T2         *ristretto.Point
	Tx         *ristretto.Scalar
	TxBlinding *ristretto.Scalar
	EBlinding  *ristretto.Scalar
	ipp        *innerProductProof
}

func checkBitLengths(bitLengths []int, totalBits int) error {
	if len(bitLengths) == 0 || len(bitLengths) > MaxRangeCommitments {
		return ErrLengthMismatch
	}
	sum := 0
	for _, n := range bitLengths {
		if n <= 0 || n > 64 {
			return ErrInvalidBitLength
		}
		sum += n
	}
	if sum != totalBits || !isPowerOfTwo(sum) || sum > MaxRangeBits {
		return ErrInvalidBitLength
	}
	return nil
}

// twoPowers[k] = 2^k for k < 64.
func twoPowers() []*ristretto.Scalar {
	out := make([]*ristretto.Scalar, 64)
	out[0] = oneScalar()
	two := elgamal.ScalarFromUint64(2)
	for k := 1; k < 64; k++ {
		out[k] = mulScalar(out[k-1], two)
	}
	return out
}

func scalarPowers(x *ristretto.Scalar, n int) []*ristretto.Scalar {
	out := make([]*ristretto.Scalar, n)
	out[0] = oneScalar()
	for i := 1; i < n; i++ {
		out[i] = mulScalar(out[i-1], x)
	}
	return out
}

func proveRange(amounts []uint64, bitLengths []int, openings []*elgamal.Opening, totalBits int, t *transcript) (*RangeProof, error) {
	if len(amounts) != len(bitLengths) || len(amounts) != len(openings) {
		return nil, ErrLengthMismatch
	}
	if err := checkBitLengths(bitLengths, totalBits); err != nil {
		return nil, err
	}
	for j, v := range amounts {
		if bitLengths[j] < 64 && v>>uint(bitLengths[j]) != 0 {
			return nil, ErrRangeValue
		}
	}
	nm := totalBits
	bp := rangeGenerators()
	G, H := bp.G[:nm], bp.H[:nm]
	pedH := elgamal.BaseH()

	t.appendDomainSeparatorN("range-proof", uint64(nm))

	// Bit decomposition, aL in {0,1} and aR = aL - 1.
	aL := make([]*ristretto.Scalar, 0, nm)
	aR := make([]*ristretto.Scalar, 0, nm)
	for j, v := range amounts {
		for k := 0; k < bitLengths[j]; k++ {
			if (v>>uint(k))&1 == 1 {
				aL = append(aL, oneScalar())
				aR = append(aR, zeroScalar())
			} else {
				aL = append(aL, zeroScalar())
				aR = append(aR, negScalar(oneScalar()))
			}
		}
	}

	blinds, err := randomScalars(4)
	if err != nil {
		return nil, err
	}
	alpha, rho, tau1, tau2 := blinds[0], blinds[1], blinds[2], blinds[3]

	// A = α·H + Σ (bit ? G_i : -H_i)
	A := mulPoint(pedH, alpha)
	for i := 0; i < nm; i++ {
		if aL[i].Equals(oneScalar()) {
			A = addPoints(A, G[i])
		} else {
			A = subPoint(A, H[i])
		}
	}
	sL, err := randomScalars(nm)
	if err != nil {
		return nil, err
	}
	sR, err := randomScalars(nm)
	if err != nil {
		return nil, err
	}
	S := addPoints(mulPoint(pedH, rho), multiscalarMul(sL, G), multiscalarMul(sR, H))

	t.appendPoint("A", A)
	t.appendPoint("S", S)
	y := t.challengeScalar("y")
	z := t.challengeScalar("z")

	yPow := scalarPowers(y, nm)
	two := twoPowers()
	l0 := make([]*ristretto.Scalar, nm)
	l1 := make([]*ristretto.Scalar, nm)
	r0 := make([]*ristretto.Scalar, nm)
	r1 := make([]*ristretto.Scalar, nm)
	zj := mulScalar(z, z) // z^(2+j)
	i := 0
	for j := range amounts {
		for k := 0; k < bitLengths[j]; k++ {
			l0[i] = subScalar(aL[i], z)
			l1[i] = sL[i]
			r0[i] = addScalar(mulScalar(yPow[i], addScalar(aR[i], z)), mulScalar(zj, two[k]))
			r1[i] = mulScalar(yPow[i], sR[i])
			i++
		}
		zj = mulScalar(zj, z)
	}
	t0 := innerProduct(l0, r0)
	t1 := addScalar(innerProduct(l0, r1), innerProduct(l1, r0))
	t2 := innerProduct(l1, r1)

	T1 := addPoints(mulBase(t1), mulPoint(pedH, tau1))
	T2 := addPoints(mulBase(t2), mulPoint(pedH, tau2))
	t.appendPoint("T_1", T1)
	t.appendPoint("T_2", T2)
	x := t.challengeScalar("x")
	xSq := mulScalar(x, x)

	tx := addScalar(addScalar(t0, mulScalar(t1, x)), mulScalar(t2, xSq))
	txBlinding := addScalar(mulScalar(tau2, xSq), mulScalar(tau1, x))
	zj = mulScalar(z, z)
	for _, opening := range openings {
		txBlinding = muladd(zj, opening.Scalar(), txBlinding)
		zj = mulScalar(zj, z)
	}
	eBlinding := muladd(rho, x, alpha)

	t.appendScalar("t_x", tx)
	t.appendScalar("t_x_blinding", txBlinding)
	t.appendScalar("e_blinding", eBlinding)
	w := t.challengeScalar("w")
	Q := mulBase(w)

	l := make([]*ristretto.Scalar, nm)
	r := make([]*ristretto.Scalar, nm)
	hPrime := make([]*ristretto.Point, nm)
	yInv := invScalar(y)
	yInvPow := oneScalar()
	for i := 0; i < nm; i++ {
		l[i] = muladd(l1[i], x, l0[i])
		r[i] = muladd(r1[i], x, r0[i])
		hPrime[i] = mulPoint(H[i], yInvPow)
		yInvPow = mulScalar(yInvPow, yInv)
	}
	ipp, err := proveInnerProduct(Q, G, hPrime, l, r, t)
	if err != nil {
		return nil, err
	}
	return &RangeProof{
		A: A, S: S, T1: T1, T2: T2,
		Tx: tx, TxBlinding: txBlinding, EBlinding: eBlinding,
		ipp: ipp,
	}, nil
}

func (p *RangeProof) verify(commitments []*elgamal.Commitment, bitLengths []int, totalBits int, t *transcript) error {
	if len(commitments) != len(bitLengths) {
		return ErrLengthMismatch
	}
	if err := checkBitLengths(bitLengths, totalBits); err != nil {
		return err
	}
	nm := totalBits
	bp := rangeGenerators()
	G, H := bp.G[:nm], bp.H[:nm]
	pedH := elgamal.BaseH()

	t.appendDomainSeparatorN("range-proof", uint64(nm))
	if err := t.validateAndAppendPoint("A", p.A); err != nil {
		return err
	}
	if err := t.validateAndAppendPoint("S", p.S); err != nil {
		return err
	}
	y := t.challengeScalar("y")
	z := t.challengeScalar("z")
	if err := t.validateAndAppendPoint("T_1", p.T1); err != nil {
		return err
	}
	if err := t.validateAndAppendPoint("T_2", p.T2); err != nil {
		return err
	}
	x := t.challengeScalar("x")
	xSq := mulScalar(x, x)
	t.appendScalar("t_x", p.Tx)
	t.appendScalar("t_x_blinding", p.TxBlinding)
	t.appendScalar("e_blinding", p.EBlinding)
	w := t.challengeScalar("w")
	Q := mulBase(w)

	yPow := scalarPowers(y, nm)
	two := twoPowers()
	zSq := mulScalar(z, z)

	// δ(y,z) = (z - z²)·Σ y^i - Σ_j z^(3+j)·(2^n_j - 1)
	sumY := zeroScalar()
	for _, yi := range yPow {
		sumY = addScalar(sumY, yi)
	}
	delta := mulScalar(subScalar(z, zSq), sumY)
	zj := mulScalar(zSq, z)
	for _, n := range bitLengths {
		sum2 := zeroScalar()
		for k := 0; k < n; k++ {
			sum2 = addScalar(sum2, two[k])
		}
		delta = subScalar(delta, mulScalar(zj, sum2))
		zj = mulScalar(zj, z)
	}

	// t_x·G + t_x_blinding·H == Σ z^(2+j)·V_j + δ·G + x·T1 + x²·T2
	lhs := addPoints(mulBase(p.Tx), mulPoint(pedH, p.TxBlinding))
	rhs := addPoints(mulBase(delta), mulPoint(p.T1, x), mulPoint(p.T2, xSq))
	zj = zSq
	for _, c := range commitments {
		rhs = addPoints(rhs, mulPoint(c.Point(), zj))
		zj = mulScalar(zj, z)
	}
	if !lhs.Equals(rhs) {
		return ErrAlgebraicRelation
	}

	// P = A + x·S - e·H - z·ΣG_i + Σ (z·y^i + z^(2+j)·2^k)·H'_i + t_x·Q
	hPrime := make([]*ristretto.Point, nm)
	yInv := invScalar(y)
	yInvPow := oneScalar()
	for i := 0; i < nm; i++ {
		hPrime[i] = mulPoint(H[i], yInvPow)
		yInvPow = mulScalar(yInvPow, yInv)
	}
	P := addPoints(p.A, mulPoint(p.S, x), mulPoint(Q, p.Tx))
	P = subPoint(P, mulPoint(pedH, p.EBlinding))
	negZ := negScalar(z)
	i := 0
	zj = zSq
	for _, n := range bitLengths {
		for k := 0; k < n; k++ {
			hScalar := addScalar(mulScalar(z, yPow[i]), mulScalar(zj, two[k]))
			P = addPoints(P, mulPoint(G[i], negZ), mulPoint(hPrime[i], hScalar))
			i++
		}
		zj = mulScalar(zj, z)
	}
	return p.ipp.verify(Q, P, G, hPrime, t)
}

func (p *RangeProof) Bytes() []byte {
	w := newByteWriter(RangeProofSize(1 << len(p.ipp.L))).
		point(p.A).point(p.S).point(p.T1).point(p.T2).
		scalar(p.Tx).scalar(p.TxBlinding).scalar(p.EBlinding)
	for i := range p.ipp.L {
		w.point(p.ipp.L[i]).point(p.ipp.R[i])
	}
	return w.scalar(p.ipp.A).scalar(p.ipp.B).bytes()
}

func RangeProofFromBytes(raw []byte, totalBits int) (*RangeProof, error) {
	if !isPowerOfTwo(totalBits) || totalBits > MaxRangeBits {
		return nil, ErrInvalidBitLength
	}
	r := newByteReader(raw, RangeProofSize(totalBits))
	p := &RangeProof{
		A: r.point(), S: r.point(), T1: r.point(), T2: r.point(),
		Tx: r.scalar(), TxBlinding: r.scalar(), EBlinding: r.scalar(),
		ipp: &innerProductProof{},
	}
	for n := totalBits; n > 1; n /= 2 {
		p.ipp.L = append(p.ipp.L, r.point())
		p.ipp.R = append(p.ipp.R, r.point())
	}
	p.ipp.A = r.scalar()
	p.ipp.B = r.scalar()
	if err := r.finish(); err != nil {
		return nil, err
	}
	return p, nil
}
