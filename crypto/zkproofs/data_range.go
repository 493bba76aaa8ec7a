package zkproofs

import (
	"fmt"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

const batchedRangeContextSize = MaxRangeCommitments*32 + MaxRangeCommitments

// BatchedRangeContext lists up to eight commitments and the bit length each
// is bounded by. Unused slots are zero.
type BatchedRangeContext struct {
	Commitments []*elgamal.Commitment
	BitLengths  []int

	totalBits int
}

func rangeProofType(totalBits int) ProofType {
	switch totalBits {
	case 64:
		return ProofTypeBatchedRangeProofU64
	case 128:
		return ProofTypeBatchedRangeProofU128
	case 256:
		return ProofTypeBatchedRangeProofU256
	}
	return ProofTypeUninitialized
}

func (c *BatchedRangeContext) ProofType() ProofType { return rangeProofType(c.totalBits) }

func (c *BatchedRangeContext) Bytes() []byte {
	out := make([]byte, batchedRangeContextSize)
	for i, comm := range c.Commitments {
		copy(out[i*32:], comm.Bytes())
	}
	for i, n := range c.BitLengths {
		out[MaxRangeCommitments*32+i] = byte(n)
	}
	return out
}

func (c *BatchedRangeContext) transcript() *transcript {
	raw := c.Bytes()
	t := newTranscript("batched-range-proof-instruction")
	t.appendMessage("commitments", raw[:MaxRangeCommitments*32])
	t.appendMessage("bit-lengths", raw[MaxRangeCommitments*32:])
	return t
}

func decodeBatchedRangeContext(raw []byte, totalBits int) (*BatchedRangeContext, error) {
	if len(raw) != batchedRangeContextSize {
		return nil, ErrDeserialization
	}
	c := &BatchedRangeContext{totalBits: totalBits}
	for i := 0; i < MaxRangeCommitments; i++ {
		n := int(raw[MaxRangeCommitments*32+i])
		if n == 0 {
			break
		}
		comm, err := elgamal.CommitmentFromBytes(raw[i*32 : (i+1)*32])
		if err != nil {
			return nil, ErrDeserialization
		}
		c.Commitments = append(c.Commitments, comm)
		c.BitLengths = append(c.BitLengths, n)
	}
	if len(c.Commitments) == 0 {
		return nil, ErrDeserialization
	}
	return c, nil
}

type BatchedRangeProofData struct {
	context *BatchedRangeContext
	proof   *RangeProof
}

// NewBatchedRangeProofU64Data proves commitments whose bit lengths sum to 64.
func NewBatchedRangeProofU64Data(commitments []*elgamal.Commitment, amounts []uint64, bitLengths []int, openings []*elgamal.Opening) (*BatchedRangeProofData, error) {
	return newBatchedRangeProofData(64, commitments, amounts, bitLengths, openings)
}

// NewBatchedRangeProofU128Data proves commitments whose bit lengths sum to 128.
func NewBatchedRangeProofU128Data(commitments []*elgamal.Commitment, amounts []uint64, bitLengths []int, openings []*elgamal.Opening) (*BatchedRangeProofData, error) {
	return newBatchedRangeProofData(128, commitments, amounts, bitLengths, openings)
}

// NewBatchedRangeProofU256Data proves commitments whose bit lengths sum to 256.
func NewBatchedRangeProofU256Data(commitments []*elgamal.Commitment, amounts []uint64, bitLengths []int, openings []*elgamal.Opening) (*BatchedRangeProofData, error) {
	return newBatchedRangeProofData(256, commitments, amounts, bitLengths, openings)
}

func newBatchedRangeProofData(totalBits int, commitments []*elgamal.Commitment, amounts []uint64, bitLengths []int, openings []*elgamal.Opening) (*BatchedRangeProofData, error) {
	if len(commitments) != len(amounts) || len(commitments) != len(bitLengths) || len(commitments) != len(openings) {
		return nil, ErrLengthMismatch
	}
	if err := checkBitLengths(bitLengths, totalBits); err != nil {
		return nil, fmt.Errorf("%w: bit lengths %v do not sum to %d", err, bitLengths, totalBits)
	}
	for i := range commitments {
		if !elgamal.CommitWithOpening(amounts[i], openings[i]).Equal(commitments[i]) {
			return nil, ErrInvalidOpening
		}
	}
	ctx := &BatchedRangeContext{Commitments: commitments, BitLengths: bitLengths, totalBits: totalBits}
	proof, err := proveRange(amounts, bitLengths, openings, totalBits, ctx.transcript())
	if err != nil {
		return nil, err
	}
	return &BatchedRangeProofData{context: ctx, proof: proof}, nil
}

func (d *BatchedRangeProofData) ProofType() ProofType  { return d.context.ProofType() }
func (d *BatchedRangeProofData) Context() ProofContext { return d.context }
func (d *BatchedRangeProofData) Bytes() []byte         { return joinBytes(d.context.Bytes(), d.proof.Bytes()) }

func (d *BatchedRangeProofData) Verify() error {
	c := d.context
	return d.proof.verify(c.Commitments, c.BitLengths, c.totalBits, c.transcript())
}
