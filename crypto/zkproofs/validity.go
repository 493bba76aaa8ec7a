package zkproofs

import (
	"github.com/bwesterb/go-ristretto"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

// GroupedCiphertextValidityProofSize returns the proof size for a grouped
// ciphertext with the given number of handles.
func GroupedCiphertextValidityProofSize(handles int) int {
	return (1+handles)*32 + 2*32
}

// GroupedCiphertextValidityProof shows that a grouped ciphertext is a
// well-formed encryption under every one of its keys with a common opening.
type GroupedCiphertextValidityProof struct {
	Y0 *ristretto.Point
	Y  []*ristretto.Point
	Zr *ristretto.Scalar
	Zx *ristretto.Scalar
}

func proveGroupedValidity(pubkeys []*elgamal.PublicKey, amount, opening *ristretto.Scalar, t *transcript) (*GroupedCiphertextValidityProof, error) {
	t.appendDomainSeparatorN("grouped-ciphertext-validity-proof", uint64(len(pubkeys)))

	nonces, err := randomScalars(2)
	if err != nil {
		return nil, err
	}
	yr, yx := nonces[0], nonces[1]

	proof := &GroupedCiphertextValidityProof{
		Y0: addPoints(mulPoint(elgamal.BaseH(), yr), mulBase(yx)),
		Y:  make([]*ristretto.Point, len(pubkeys)),
	}
	t.appendPoint("Y_0", proof.Y0)
	for i, pk := range pubkeys {
		proof.Y[i] = mulPoint(pk.Point(), yr)
		t.appendPoint("Y_i", proof.Y[i])
	}
	c := t.challengeScalar("c")
	proof.Zr = muladd(c, opening, yr)
	proof.Zx = muladd(c, amount, yx)
	return proof, nil
}

func (p *GroupedCiphertextValidityProof) verify(pubkeys []*elgamal.PublicKey, commitment *ristretto.Point, handles []*ristretto.Point, t *transcript) error {
	if len(pubkeys) != len(handles) || len(p.Y) != len(handles) {
		return ErrLengthMismatch
	}
	t.appendDomainSeparatorN("grouped-ciphertext-validity-proof", uint64(len(pubkeys)))
	if err := t.validateAndAppendPoint("Y_0", p.Y0); err != nil {
		return err
	}
	// Handles under the zero key are the identity, so the matching Y_i are too.
	for _, y := range p.Y {
		t.appendPoint("Y_i", y)
	}
	c := t.challengeScalar("c")

	// z_r·H + z_x·G == c·C + Y_0
	lhs := addPoints(mulPoint(elgamal.BaseH(), p.Zr), mulBase(p.Zx))
	if !lhs.Equals(addPoints(mulPoint(commitment, c), p.Y0)) {
		return ErrAlgebraicRelation
	}
	// z_r·P_i == c·D_i + Y_i
	for i, pk := range pubkeys {
		if !mulPoint(pk.Point(), p.Zr).Equals(addPoints(mulPoint(handles[i], c), p.Y[i])) {
			return ErrAlgebraicRelation
		}
	}
	return nil
}

func (p *GroupedCiphertextValidityProof) Bytes() []byte {
	w := newByteWriter(GroupedCiphertextValidityProofSize(len(p.Y))).point(p.Y0)
	for _, y := range p.Y {
		w.point(y)
	}
	return w.scalar(p.Zr).scalar(p.Zx).bytes()
}

func GroupedCiphertextValidityProofFromBytes(raw []byte, handles int) (*GroupedCiphertextValidityProof, error) {
	r := newByteReader(raw, GroupedCiphertextValidityProofSize(handles))
	p := &GroupedCiphertextValidityProof{Y0: r.point(), Y: make([]*ristretto.Point, handles)}
	for i := range p.Y {
		p.Y[i] = r.point()
	}
	p.Zr = r.scalar()
	p.Zx = r.scalar()
	if err := r.finish(); err != nil {
		return nil, err
	}
	return p, nil
}

// batchGrouped folds lo + t·hi for a batched validity statement.
func batchGrouped(lo, hi *elgamal.GroupedCiphertext, t *ristretto.Scalar) (*ristretto.Point, []*ristretto.Point) {
	commitment := addPoints(lo.Commitment.Point(), mulPoint(hi.Commitment.Point(), t))
	handles := make([]*ristretto.Point, len(lo.Handles))
	for i := range lo.Handles {
		handles[i] = addPoints(lo.Handles[i].Point(), mulPoint(hi.Handles[i].Point(), t))
	}
	return commitment, handles
}
