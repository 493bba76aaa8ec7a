package ctoken

import (
	"fmt"

	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

// SplitContext is a verified split amount: the lo and hi grouped
// ciphertexts and the keys their handles belong to.
type SplitContext struct {
	Pubkeys []*elgamal.PublicKey
	Lo      *elgamal.GroupedCiphertext
	Hi      *elgamal.GroupedCiphertext
	LoBits  uint
}

func newSplitContext(ctx zkproofs.ProofContext, handles int, loBits uint) (*SplitContext, error) {
	v, ok := ctx.(*zkproofs.BatchedGroupedValidityContext)
	if !ok || len(v.Pubkeys) != handles {
		return nil, fmt.Errorf("%w: want %d-handle batched validity, have %v", ErrInvalidProofType, handles, ctx.ProofType())
	}
	return &SplitContext{Pubkeys: v.Pubkeys, Lo: v.Lo, Hi: v.Hi, LoBits: loBits}, nil
}

// View returns the lo and hi ciphertexts for the key at index.
func (c *SplitContext) View(index int) (Ciphertext, Ciphertext, error) {
	lo, err := c.Lo.Extract(index)
	if err != nil {
		return Ciphertext{}, Ciphertext{}, fmt.Errorf("%w: lo handle %d", ErrCiphertextExtraction, index)
	}
	hi, err := c.Hi.Extract(index)
	if err != nil {
		return Ciphertext{}, Ciphertext{}, fmt.Errorf("%w: hi handle %d", ErrCiphertextExtraction, index)
	}
	return CiphertextFrom(lo), CiphertextFrom(hi), nil
}

// Combined returns lo + 2^LoBits·hi for the key at index.
func (c *SplitContext) Combined(index int) (*elgamal.Ciphertext, error) {
	lo, err := c.Lo.Extract(index)
	if err != nil {
		return nil, fmt.Errorf("%w: lo handle %d", ErrCiphertextExtraction, index)
	}
	hi, err := c.Hi.Extract(index)
	if err != nil {
		return nil, fmt.Errorf("%w: hi handle %d", ErrCiphertextExtraction, index)
	}
	return elgamal.CombineLoHiCiphertexts(lo, hi, c.LoBits), nil
}

func (c *SplitContext) Commitment() *elgamal.Commitment {
	return elgamal.CombineLoHiCommitments(&c.Lo.Commitment, &c.Hi.Commitment, c.LoBits)
}

// BalanceChangeContext is what a transfer, mint, or burn proves: a new
// balance for the key that signed the equality proof, and the amount that
// moved.
type BalanceChangeContext struct {
	Pubkey     *elgamal.PublicKey
	NewBalance Ciphertext
	Amount     *SplitContext
}

// WithdrawContext is what a withdraw proves.
type WithdrawContext struct {
	Pubkey       *elgamal.PublicKey
	NewAvailable Ciphertext
}

func equalityContext(ctx zkproofs.ProofContext) (*zkproofs.CiphertextCommitmentEqualityContext, error) {
	eq, ok := ctx.(*zkproofs.CiphertextCommitmentEqualityContext)
	if !ok {
		return nil, fmt.Errorf("%w: want %v, have %v", ErrInvalidProofType, zkproofs.ProofTypeCiphertextCommitmentEquality, ctx.ProofType())
	}
	return eq, nil
}

// checkRangeContext checks that ctx covers commitments with exactly the
// given bit lengths, plus a zero-padding entry if the widths need one.
func checkRangeContext(ctx zkproofs.ProofContext, commitments []*elgamal.Commitment, bitLengths []uint) error {
	rc, ok := ctx.(*zkproofs.BatchedRangeContext)
	if !ok {
		return fmt.Errorf("%w: want batched range, have %v", ErrInvalidProofType, ctx.ProofType())
	}
	want := len(commitments)
	if pad := RangePadding(bitLengths...); pad > 0 {
		bitLengths = append(bitLengths, pad)
	}
	if len(rc.BitLengths) != len(bitLengths) {
		return fmt.Errorf("%w: %d entries, want %d", ErrRangeProofLengthMismatch, len(rc.BitLengths), len(bitLengths))
	}
	for i, n := range bitLengths {
		if rc.BitLengths[i] != int(n) {
			return fmt.Errorf("%w: entry %d is %d bits, want %d", ErrRangeProofLengthMismatch, i, rc.BitLengths[i], n)
		}
	}
	for i := 0; i < want; i++ {
		if !rc.Commitments[i].Equal(commitments[i]) {
			return fmt.Errorf("%w: range entry %d", ErrPedersenCommitmentMismatch, i)
		}
	}
	return nil
}

// ExtractWithdrawContext cross-checks a verified withdraw bundle.
func ExtractWithdrawContext(equality, rng zkproofs.ProofContext) (*WithdrawContext, error) {
	eq, err := equalityContext(equality)
	if err != nil {
		return nil, err
	}
	if err := checkRangeContext(rng, []*elgamal.Commitment{eq.Commitment}, []uint{RemainingBalanceBits}); err != nil {
		return nil, err
	}
	return &WithdrawContext{Pubkey: eq.Pubkey, NewAvailable: CiphertextFrom(eq.Ciphertext)}, nil
}

func extractBalanceChange(split SplitConfig, keyHandle int, equality, validity, rng zkproofs.ProofContext) (*BalanceChangeContext, error) {
	eq, err := equalityContext(equality)
	if err != nil {
		return nil, err
	}
	amount, err := newSplitContext(validity, 3, split.LoBits)
	if err != nil {
		return nil, err
	}
	if !eq.Pubkey.Equal(amount.Pubkeys[keyHandle]) {
		return nil, fmt.Errorf("%w: equality and validity keys differ", ErrElGamalPubkeyMismatch)
	}
	err = checkRangeContext(rng,
		[]*elgamal.Commitment{eq.Commitment, &amount.Lo.Commitment, &amount.Hi.Commitment},
		[]uint{RemainingBalanceBits, split.LoBits, split.HiBits})
	if err != nil {
		return nil, err
	}
	return &BalanceChangeContext{Pubkey: eq.Pubkey, NewBalance: CiphertextFrom(eq.Ciphertext), Amount: amount}, nil
}

// ExtractTransferContext cross-checks a verified transfer bundle. The
// amount handles are {source, destination, auditor}.
func ExtractTransferContext(split SplitConfig, equality, validity, rng zkproofs.ProofContext) (*BalanceChangeContext, error) {
	return extractBalanceChange(split, SourceHandle, equality, validity, rng)
}

// ExtractBurnContext cross-checks a verified burn bundle. The amount
// handles are {source, supply, auditor}.
func ExtractBurnContext(split SplitConfig, equality, validity, rng zkproofs.ProofContext) (*BalanceChangeContext, error) {
	return extractBalanceChange(split, AccountHandle, equality, validity, rng)
}

// ExtractMintContext cross-checks a verified mint bundle. The amount
// handles are {destination, supply, auditor} and the new balance is the
// supply.
func ExtractMintContext(split SplitConfig, equality, validity, rng zkproofs.ProofContext) (*BalanceChangeContext, error) {
	return extractBalanceChange(split, SupplyHandle, equality, validity, rng)
}

// TransferWithFeeContext adds the verified fee ciphertext to a transfer.
type TransferWithFeeContext struct {
	*BalanceChangeContext
	Fee *SplitContext
}

// ExtractTransferWithFeeContext cross-checks a verified fee transfer
// against the mint's fee settings.
func ExtractTransferWithFeeContext(cfg Config, rateBps uint16, maximumFee uint64, equality, validity, percentage, feeValidity, rng zkproofs.ProofContext) (*TransferWithFeeContext, error) {
	eq, err := equalityContext(equality)
	if err != nil {
		return nil, err
	}
	amount, err := newSplitContext(validity, 3, cfg.Split.LoBits)
	if err != nil {
		return nil, err
	}
	if !eq.Pubkey.Equal(amount.Pubkeys[SourceHandle]) {
		return nil, fmt.Errorf("%w: equality and validity keys differ", ErrElGamalPubkeyMismatch)
	}
	fee, err := newSplitContext(feeValidity, 2, cfg.Fee.Split.LoBits)
	if err != nil {
		return nil, err
	}
	if !fee.Pubkeys[FeeDestinationHandle].Equal(amount.Pubkeys[DestinationHandle]) {
		return nil, fmt.Errorf("%w: fee destination key", ErrElGamalPubkeyMismatch)
	}
	pc, ok := percentage.(*zkproofs.PercentageWithCapContext)
	if !ok {
		return nil, fmt.Errorf("%w: want %v, have %v", ErrInvalidProofType, zkproofs.ProofTypePercentageWithCap, percentage.ProofType())
	}
	if pc.MaxValue != maximumFee {
		return nil, fmt.Errorf("%w: maximum fee %d, want %d", ErrFeeParametersMismatch, pc.MaxValue, maximumFee)
	}
	amountCommitment, feeCommitment := amount.Commitment(), fee.Commitment()
	if !pc.PercentageCommitment.Equal(feeCommitment) {
		return nil, fmt.Errorf("%w: fee commitment", ErrPedersenCommitmentMismatch)
	}
	delta := feeCommitment.MulUint64(MaxFeeBasisPoints).Sub(amountCommitment.MulUint64(uint64(rateBps)))
	if !pc.DeltaCommitment.Equal(delta) {
		return nil, fmt.Errorf("%w: fee rate", ErrFeeParametersMismatch)
	}
	complement := elgamal.CommitWithOpening(maxDelta, elgamal.ZeroOpening()).Sub(pc.ClaimedCommitment)
	net := amountCommitment.Sub(feeCommitment)

	err = checkRangeContext(rng,
		[]*elgamal.Commitment{
			eq.Commitment, &amount.Lo.Commitment, &amount.Hi.Commitment,
			pc.ClaimedCommitment, complement, &fee.Lo.Commitment, &fee.Hi.Commitment, net,
		},
		[]uint{
			RemainingBalanceBits, cfg.Split.LoBits, cfg.Split.HiBits,
			cfg.Fee.DeltaBits, cfg.Fee.DeltaBits, cfg.Fee.Split.LoBits, cfg.Fee.Split.HiBits, cfg.Fee.NetBits,
		})
	if err != nil {
		return nil, err
	}
	return &TransferWithFeeContext{
		BalanceChangeContext: &BalanceChangeContext{Pubkey: eq.Pubkey, NewBalance: CiphertextFrom(eq.Ciphertext), Amount: amount},
		Fee:                  fee,
	}, nil
}
