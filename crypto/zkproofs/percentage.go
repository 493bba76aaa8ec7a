package zkproofs

import (
	"github.com/bwesterb/go-ristretto"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

const PercentageWithCapProofSize = 8 * 32

// PercentageWithCapProof is an OR composition. Either the percentage
// commitment opens to the public cap, or the delta and claimed commitments
// hide the same value. One branch is proved, the other simulated.
type PercentageWithCapProof struct {
	// cap branch
	YMax *ristretto.Point
	ZMax *ristretto.Scalar
	CMax *ristretto.Scalar
	// equality branch
	YDelta   *ristretto.Point
	YClaimed *ristretto.Point
	ZX       *ristretto.Scalar
	ZDelta   *ristretto.Scalar
	ZClaimed *ristretto.Scalar
}

type percentageWitness struct {
	percentageCommitment *elgamal.Commitment
	percentageOpening    *elgamal.Opening
	percentageAmount     uint64
	deltaCommitment      *elgamal.Commitment
	deltaOpening         *elgamal.Opening
	deltaAmount          uint64
	claimedCommitment    *elgamal.Commitment
	claimedOpening       *elgamal.Opening
	maxValue             uint64
}

// capTarget returns C - max·G, which is r·H exactly when C opens to max.
func capTarget(percentage *elgamal.Commitment, maxValue uint64) *ristretto.Point {
	return subPoint(percentage.Point(), mulBase(elgamal.ScalarFromUint64(maxValue)))
}

func provePercentageWithCap(w *percentageWitness, t *transcript) (*PercentageWithCapProof, error) {
	t.appendDomainSeparator("percentage-with-cap-proof")
	if w.percentageAmount >= w.maxValue {
		return provePercentageCapBranch(w, t)
	}
	return provePercentageEqualityBranch(w, t)
}

func provePercentageCapBranch(w *percentageWitness, t *transcript) (*PercentageWithCapProof, error) {
	nonces, err := randomScalars(5)
	if err != nil {
		return nil, err
	}
	y, zX, zDelta, zClaimed, cEq := nonces[0], nonces[1], nonces[2], nonces[3], nonces[4]
	H := elgamal.BaseH()

	// Simulated equality branch.
	yDelta := subPoint(addPoints(mulBase(zX), mulPoint(H, zDelta)), mulPoint(w.deltaCommitment.Point(), cEq))
	yClaimed := subPoint(addPoints(mulBase(zX), mulPoint(H, zClaimed)), mulPoint(w.claimedCommitment.Point(), cEq))

	yMax := mulPoint(H, y)
	t.appendPoint("Y_max_proof", yMax)
	t.appendPoint("Y_delta", yDelta)
	t.appendPoint("Y_claimed", yClaimed)
	c := t.challengeScalar("c")
	cMax := subScalar(c, cEq)

	return &PercentageWithCapProof{
		YMax:     yMax,
		ZMax:     muladd(cMax, w.percentageOpening.Scalar(), y),
		CMax:     cMax,
		YDelta:   yDelta,
		YClaimed: yClaimed,
		ZX:       zX,
		ZDelta:   zDelta,
		ZClaimed: zClaimed,
	}, nil
}

func provePercentageEqualityBranch(w *percentageWitness, t *transcript) (*PercentageWithCapProof, error) {
	nonces, err := randomScalars(5)
	if err != nil {
		return nil, err
	}
	zMax, cMax, yX, yDeltaR, yClaimedR := nonces[0], nonces[1], nonces[2], nonces[3], nonces[4]
	H := elgamal.BaseH()

	// Simulated cap branch.
	yMax := subPoint(mulPoint(H, zMax), mulPoint(capTarget(w.percentageCommitment, w.maxValue), cMax))

	yDelta := addPoints(mulBase(yX), mulPoint(H, yDeltaR))
	yClaimed := addPoints(mulBase(yX), mulPoint(H, yClaimedR))
	t.appendPoint("Y_max_proof", yMax)
	t.appendPoint("Y_delta", yDelta)
	t.appendPoint("Y_claimed", yClaimed)
	c := t.challengeScalar("c")
	cEq := subScalar(c, cMax)

	x := elgamal.ScalarFromUint64(w.deltaAmount)
	return &PercentageWithCapProof{
		YMax:     yMax,
		ZMax:     zMax,
		CMax:     cMax,
		YDelta:   yDelta,
		YClaimed: yClaimed,
		ZX:       muladd(cEq, x, yX),
		ZDelta:   muladd(cEq, w.deltaOpening.Scalar(), yDeltaR),
		ZClaimed: muladd(cEq, w.claimedOpening.Scalar(), yClaimedR),
	}, nil
}

func (p *PercentageWithCapProof) verify(percentage, delta, claimed *elgamal.Commitment, maxValue uint64, t *transcript) error {
	t.appendDomainSeparator("percentage-with-cap-proof")
	t.appendPoint("Y_max_proof", p.YMax)
	t.appendPoint("Y_delta", p.YDelta)
	t.appendPoint("Y_claimed", p.YClaimed)
	c := t.challengeScalar("c")
	cEq := subScalar(c, p.CMax)
	H := elgamal.BaseH()

	// z_max·H == c_max·(C - max·G) + Y_max
	if !mulPoint(H, p.ZMax).Equals(addPoints(mulPoint(capTarget(percentage, maxValue), p.CMax), p.YMax)) {
		return ErrAlgebraicRelation
	}
	// z_x·G + z_delta·H == c_eq·C_delta + Y_delta
	if !addPoints(mulBase(p.ZX), mulPoint(H, p.ZDelta)).Equals(addPoints(mulPoint(delta.Point(), cEq), p.YDelta)) {
		return ErrAlgebraicRelation
	}
	// z_x·G + z_claimed·H == c_eq·C_claimed + Y_claimed
	if !addPoints(mulBase(p.ZX), mulPoint(H, p.ZClaimed)).Equals(addPoints(mulPoint(claimed.Point(), cEq), p.YClaimed)) {
		return ErrAlgebraicRelation
	}
	return nil
}

func (p *PercentageWithCapProof) Bytes() []byte {
	return newByteWriter(PercentageWithCapProofSize).
		point(p.YMax).scalar(p.ZMax).scalar(p.CMax).
		point(p.YDelta).point(p.YClaimed).
		scalar(p.ZX).scalar(p.ZDelta).scalar(p.ZClaimed).bytes()
}

func PercentageWithCapProofFromBytes(raw []byte) (*PercentageWithCapProof, error) {
	r := newByteReader(raw, PercentageWithCapProofSize)
	p := &PercentageWithCapProof{
		YMax: r.point(), ZMax: r.scalar(), CMax: r.scalar(),
		YDelta: r.point(), YClaimed: r.point(),
		ZX: r.scalar(), ZDelta: r.scalar(), ZClaimed: r.scalar(),
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return p, nil
}
