package zkproofs

import (
	"github.com/bwesterb/go-ristretto"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

const (
	CiphertextCommitmentEqualityProofSize = 6 * 32
	CiphertextCiphertextEqualityProofSize = 7 * 32
)

// CiphertextCommitmentEqualityProof shows that an ElGamal ciphertext and a
// Pedersen commitment hide the same value.
type CiphertextCommitmentEqualityProof struct {
	Y0, Y1, Y2 *ristretto.Point
	Zs, Zx, Zr *ristretto.Scalar
}

func proveCiphertextCommitmentEquality(kp *elgamal.Keypair, ct *elgamal.Ciphertext, opening *elgamal.Opening, amount uint64, t *transcript) (*CiphertextCommitmentEqualityProof, error) {
	t.appendDomainSeparator("ciphertext-commitment-equality-proof")

	P := kp.Public.Point()
	D := ct.Handle.Point()
	s := kp.Secret.Scalar()
	x := elgamal.ScalarFromUint64(amount)
	r := opening.Scalar()

	nonces, err := randomScalars(3)
	if err != nil {
		return nil, err
	}
	ys, yx, yr := nonces[0], nonces[1], nonces[2]

	proof := &CiphertextCommitmentEqualityProof{
		Y0: mulPoint(P, ys),
		Y1: addPoints(mulBase(yx), mulPoint(D, ys)),
		Y2: addPoints(mulBase(yx), mulPoint(elgamal.BaseH(), yr)),
	}
	t.appendPoint("Y_0", proof.Y0)
	t.appendPoint("Y_1", proof.Y1)
	t.appendPoint("Y_2", proof.Y2)

	c := t.challengeScalar("c")
	proof.Zs = muladd(c, s, ys)
	proof.Zx = muladd(c, x, yx)
	proof.Zr = muladd(c, r, yr)
	return proof, nil
}

func (p *CiphertextCommitmentEqualityProof) verify(pub *elgamal.PublicKey, ct *elgamal.Ciphertext, comm *elgamal.Commitment, t *transcript) error {
	t.appendDomainSeparator("ciphertext-commitment-equality-proof")
	for _, item := range []struct {
		label string
		point *ristretto.Point
	}{{"Y_0", p.Y0}, {"Y_1", p.Y1}, {"Y_2", p.Y2}} {
		if err := t.validateAndAppendPoint(item.label, item.point); err != nil {
			return err
		}
	}
	c := t.challengeScalar("c")

	H := elgamal.BaseH()
	// z_s·P == c·H + Y_0
	if !mulPoint(pub.Point(), p.Zs).Equals(addPoints(mulPoint(H, c), p.Y0)) {
		return ErrAlgebraicRelation
	}
	// z_x·G + z_s·D == c·C + Y_1
	lhs := addPoints(mulBase(p.Zx), mulPoint(ct.Handle.Point(), p.Zs))
	if !lhs.Equals(addPoints(mulPoint(ct.Commitment.Point(), c), p.Y1)) {
		return ErrAlgebraicRelation
	}
	// z_x·G + z_r·H == c·C' + Y_2
	lhs = addPoints(mulBase(p.Zx), mulPoint(H, p.Zr))
	if !lhs.Equals(addPoints(mulPoint(comm.Point(), c), p.Y2)) {
		return ErrAlgebraicRelation
	}
	return nil
}

func (p *CiphertextCommitmentEqualityProof) Bytes() []byte {
	return newByteWriter(CiphertextCommitmentEqualityProofSize).
		point(p.Y0).point(p.Y1).point(p.Y2).
		scalar(p.Zs).scalar(p.Zx).scalar(p.Zr).bytes()
}

func CiphertextCommitmentEqualityProofFromBytes(raw []byte) (*CiphertextCommitmentEqualityProof, error) {
	r := newByteReader(raw, CiphertextCommitmentEqualityProofSize)
	p := &CiphertextCommitmentEqualityProof{
		Y0: r.point(), Y1: r.point(), Y2: r.point(),
		Zs: r.scalar(), Zx: r.scalar(), Zr: r.scalar(),
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return p, nil
}

// CiphertextCiphertextEqualityProof shows that two ciphertexts under
// different keys hide the same value. The prover knows the first secret key
// and the opening of the second ciphertext.
type CiphertextCiphertextEqualityProof struct {
	Y0, Y1, Y2, Y3 *ristretto.Point
	Zs, Zx, Zr     *ristretto.Scalar
}

func proveCiphertextCiphertextEquality(first *elgamal.Keypair, second *elgamal.PublicKey, firstCT *elgamal.Ciphertext, secondOpening *elgamal.Opening, amount uint64, t *transcript) (*CiphertextCiphertextEqualityProof, error) {
	t.appendDomainSeparator("ciphertext-ciphertext-equality-proof")

	P1 := first.Public.Point()
	D1 := firstCT.Handle.Point()
	P2 := second.Point()
	s := first.Secret.Scalar()
	x := elgamal.ScalarFromUint64(amount)
	r := secondOpening.Scalar()

	nonces, err := randomScalars(3)
	if err != nil {
		return nil, err
	}
	ys, yx, yr := nonces[0], nonces[1], nonces[2]

	proof := &CiphertextCiphertextEqualityProof{
		Y0: mulPoint(P1, ys),
		Y1: addPoints(mulBase(yx), mulPoint(D1, ys)),
		Y2: addPoints(mulBase(yx), mulPoint(elgamal.BaseH(), yr)),
		Y3: mulPoint(P2, yr),
	}
	t.appendPoint("Y_0", proof.Y0)
	t.appendPoint("Y_1", proof.Y1)
	t.appendPoint("Y_2", proof.Y2)
	t.appendPoint("Y_3", proof.Y3)

	c := t.challengeScalar("c")
	proof.Zs = muladd(c, s, ys)
	proof.Zx = muladd(c, x, yx)
	proof.Zr = muladd(c, r, yr)
	return proof, nil
}

func (p *CiphertextCiphertextEqualityProof) verify(first, second *elgamal.PublicKey, firstCT, secondCT *elgamal.Ciphertext, t *transcript) error {
	t.appendDomainSeparator("ciphertext-ciphertext-equality-proof")
	if err := t.validateAndAppendPoint("Y_0", p.Y0); err != nil {
		return err
	}
	if err := t.validateAndAppendPoint("Y_1", p.Y1); err != nil {
		return err
	}
	if err := t.validateAndAppendPoint("Y_2", p.Y2); err != nil {
		return err
	}
	t.appendPoint("Y_3", p.Y3)
	c := t.challengeScalar("c")

	H := elgamal.BaseH()
	if !mulPoint(first.Point(), p.Zs).Equals(addPoints(mulPoint(H, c), p.Y0)) {
		return ErrAlgebraicRelation
	}
	lhs := addPoints(mulBase(p.Zx), mulPoint(firstCT.Handle.Point(), p.Zs))
	if !lhs.Equals(addPoints(mulPoint(firstCT.Commitment.Point(), c), p.Y1)) {
		return ErrAlgebraicRelation
	}
	lhs = addPoints(mulBase(p.Zx), mulPoint(H, p.Zr))
	if !lhs.Equals(addPoints(mulPoint(secondCT.Commitment.Point(), c), p.Y2)) {
		return ErrAlgebraicRelation
	}
	if !mulPoint(second.Point(), p.Zr).Equals(addPoints(mulPoint(secondCT.Handle.Point(), c), p.Y3)) {
		return ErrAlgebraicRelation
	}
	return nil
}

func (p *CiphertextCiphertextEqualityProof) Bytes() []byte {
	return newByteWriter(CiphertextCiphertextEqualityProofSize).
		point(p.Y0).point(p.Y1).point(p.Y2).point(p.Y3).
		scalar(p.Zs).scalar(p.Zx).scalar(p.Zr).bytes()
}

func CiphertextCiphertextEqualityProofFromBytes(raw []byte) (*CiphertextCiphertextEqualityProof, error) {
	r := newByteReader(raw, CiphertextCiphertextEqualityProofSize)
	p := &CiphertextCiphertextEqualityProof{
		Y0: r.point(), Y1: r.point(), Y2: r.point(), Y3: r.point(),
		Zs: r.scalar(), Zx: r.scalar(), Zr: r.scalar(),
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return p, nil
}
