package zkproofs

import (
	"encoding/binary"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

const percentageWithCapContextSize = 3*32 + 8

// PercentageWithCapContext states that the percentage commitment either
// opens to MaxValue or is consistent with the delta and claimed commitments.
type PercentageWithCapContext struct {
	PercentageCommitment *elgamal.Commitment
	DeltaCommitment      *elgamal.Commitment
	ClaimedCommitment    *elgamal.Commitment
	MaxValue             uint64
}

func (c *PercentageWithCapContext) ProofType() ProofType { return ProofTypePercentageWithCap }

func (c *PercentageWithCapContext) Bytes() []byte {
	var maxValue [8]byte
	binary.LittleEndian.PutUint64(maxValue[:], c.MaxValue)
	return joinBytes(c.PercentageCommitment.Bytes(), c.DeltaCommitment.Bytes(), c.ClaimedCommitment.Bytes(), maxValue[:])
}

func (c *PercentageWithCapContext) transcript() *transcript {
	t := newTranscript("percentage-with-cap-instruction")
	t.appendMessage("percentage-commitment", c.PercentageCommitment.Bytes())
	t.appendMessage("delta-commitment", c.DeltaCommitment.Bytes())
	t.appendMessage("claimed-commitment", c.ClaimedCommitment.Bytes())
	t.appendU64("max-value", c.MaxValue)
	return t
}

func decodePercentageWithCapContext(raw []byte) (*PercentageWithCapContext, error) {
	r := newByteReader(raw, percentageWithCapContextSize)
	c := &PercentageWithCapContext{
		PercentageCommitment: r.commitment(),
		DeltaCommitment:      r.commitment(),
		ClaimedCommitment:    r.commitment(),
	}
	if b := r.next(8); b != nil {
		c.MaxValue = binary.LittleEndian.Uint64(b)
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

// PercentageWithCapArgs carries the witness for a percentage-with-cap proof.
type PercentageWithCapArgs struct {
	PercentageCommitment *elgamal.Commitment
	PercentageOpening    *elgamal.Opening
	PercentageAmount     uint64

	DeltaCommitment *elgamal.Commitment
	DeltaOpening    *elgamal.Opening
	DeltaAmount     uint64

	ClaimedCommitment *elgamal.Commitment
	ClaimedOpening    *elgamal.Opening

	MaxValue uint64
}

type PercentageWithCapData struct {
	context *PercentageWithCapContext
	proof   *PercentageWithCapProof
}

func NewPercentageWithCapData(args PercentageWithCapArgs) (*PercentageWithCapData, error) {
	if !elgamal.CommitWithOpening(args.PercentageAmount, args.PercentageOpening).Equal(args.PercentageCommitment) {
		return nil, ErrInvalidOpening
	}
	ctx := &PercentageWithCapContext{
		PercentageCommitment: args.PercentageCommitment,
		DeltaCommitment:      args.DeltaCommitment,
		ClaimedCommitment:    args.ClaimedCommitment,
		MaxValue:             args.MaxValue,
	}
	proof, err := provePercentageWithCap(&percentageWitness{
		percentageCommitment: args.PercentageCommitment,
		percentageOpening:    args.PercentageOpening,
		percentageAmount:     args.PercentageAmount,
		deltaCommitment:      args.DeltaCommitment,
		deltaOpening:         args.DeltaOpening,
		deltaAmount:          args.DeltaAmount,
		claimedCommitment:    args.ClaimedCommitment,
		claimedOpening:       args.ClaimedOpening,
		maxValue:             args.MaxValue,
	}, ctx.transcript())
	if err != nil {
		return nil, err
	}
	return &PercentageWithCapData{context: ctx, proof: proof}, nil
}

func (d *PercentageWithCapData) ProofType() ProofType  { return ProofTypePercentageWithCap }
func (d *PercentageWithCapData) Context() ProofContext { return d.context }
func (d *PercentageWithCapData) Bytes() []byte         { return joinBytes(d.context.Bytes(), d.proof.Bytes()) }

func (d *PercentageWithCapData) Verify() error {
	c := d.context
	return d.proof.verify(c.PercentageCommitment, c.DeltaCommitment, c.ClaimedCommitment, c.MaxValue, c.transcript())
}
