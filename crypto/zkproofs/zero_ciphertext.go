package zkproofs

import (
	"github.com/bwesterb/go-ristretto"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

const (
	ZeroCiphertextProofSize = 3 * 32
	PubkeyValidityProofSize = 2 * 32
)

// ZeroCiphertextProof shows that a ciphertext encrypts zero under a key the
// prover holds.
type ZeroCiphertextProof struct {
	YP, YD *ristretto.Point
	Z      *ristretto.Scalar
}

func proveZeroCiphertext(kp *elgamal.Keypair, ct *elgamal.Ciphertext, t *transcript) (*ZeroCiphertextProof, error) {
	t.appendDomainSeparator("zero-ciphertext-proof")
	y, err := elgamal.RandomScalar()
	if err != nil {
		return nil, err
	}
	proof := &ZeroCiphertextProof{
		YP: mulPoint(kp.Public.Point(), y),
		YD: mulPoint(ct.Handle.Point(), y),
	}
	t.appendPoint("Y_P", proof.YP)
	t.appendPoint("Y_D", proof.YD)
	c := t.challengeScalar("c")
	proof.Z = muladd(c, kp.Secret.Scalar(), y)
	return proof, nil
}

func (p *ZeroCiphertextProof) verify(pub *elgamal.PublicKey, ct *elgamal.Ciphertext, t *transcript) error {
	t.appendDomainSeparator("zero-ciphertext-proof")
	if err := t.validateAndAppendPoint("Y_P", p.YP); err != nil {
		return err
	}
	t.appendPoint("Y_D", p.YD)
	c := t.challengeScalar("c")

	// z·P == c·H + Y_P
	if !mulPoint(pub.Point(), p.Z).Equals(addPoints(mulPoint(elgamal.BaseH(), c), p.YP)) {
		return ErrAlgebraicRelation
	}
	// z·D == c·C + Y_D
	if !mulPoint(ct.Handle.Point(), p.Z).Equals(addPoints(mulPoint(ct.Commitment.Point(), c), p.YD)) {
		return ErrAlgebraicRelation
	}
	return nil
}

func (p *ZeroCiphertextProof) Bytes() []byte {
	return newByteWriter(ZeroCiphertextProofSize).point(p.YP).point(p.YD).scalar(p.Z).bytes()
}

func ZeroCiphertextProofFromBytes(raw []byte) (*ZeroCiphertextProof, error) {
	r := newByteReader(raw, ZeroCiphertextProofSize)
	p := &ZeroCiphertextProof{YP: r.point(), YD: r.point(), Z: r.scalar()}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return p, nil
}

// PubkeyValidityProof shows knowledge of the secret key behind a public key.
type PubkeyValidityProof struct {
	Y *ristretto.Point
	Z *ristretto.Scalar
}

func provePubkeyValidity(kp *elgamal.Keypair, t *transcript) (*PubkeyValidityProof, error) {
	t.appendDomainSeparator("pubkey-proof")
	y, err := elgamal.RandomScalar()
	if err != nil {
		return nil, err
	}
	proof := &PubkeyValidityProof{Y: mulPoint(kp.Public.Point(), y)}
	t.appendPoint("Y", proof.Y)
	c := t.challengeScalar("c")
	proof.Z = muladd(c, kp.Secret.Scalar(), y)
	return proof, nil
}

func (p *PubkeyValidityProof) verify(pub *elgamal.PublicKey, t *transcript) error {
	t.appendDomainSeparator("pubkey-proof")
	if err := t.validateAndAppendPoint("Y", p.Y); err != nil {
		return err
	}
	c := t.challengeScalar("c")
	if !mulPoint(pub.Point(), p.Z).Equals(addPoints(mulPoint(elgamal.BaseH(), c), p.Y)) {
		return ErrAlgebraicRelation
	}
	return nil
}

func (p *PubkeyValidityProof) Bytes() []byte {
	return newByteWriter(PubkeyValidityProofSize).point(p.Y).scalar(p.Z).bytes()
}

func PubkeyValidityProofFromBytes(raw []byte) (*PubkeyValidityProof, error) {
	r := newByteReader(raw, PubkeyValidityProofSize)
	p := &PubkeyValidityProof{Y: r.point(), Z: r.scalar()}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return p, nil
}
