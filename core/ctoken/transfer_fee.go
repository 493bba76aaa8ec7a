package ctoken

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

// Handle order of a fee ciphertext.
const (
	FeeDestinationHandle       = 0
	FeeWithheldAuthorityHandle = 1
)

type TransferWithFeeArgs struct {
	Available            Ciphertext
	DecryptableAvailable authenc.AeCiphertext
	Amount               uint64

	SourceKeypair           *elgamal.Keypair
	AeKey                   *authenc.AeKey
	DestinationPubkey       *elgamal.PublicKey
	AuditorPubkey           *elgamal.PublicKey // nil means no auditor
	WithheldAuthorityPubkey *elgamal.PublicKey

	FeeBasisPoints uint16
	MaximumFee     uint64
}

type TransferWithFeeProofData struct {
	Equality    *zkproofs.CiphertextCommitmentEqualityData
	Validity    *zkproofs.BatchedGroupedValidityData
	Percentage  *zkproofs.PercentageWithCapData
	FeeValidity *zkproofs.BatchedGroupedValidityData
	Range       *zkproofs.BatchedRangeProofData

	AuditorLo *elgamal.Ciphertext
	AuditorHi *elgamal.Ciphertext

	Quote                   FeeQuote
	NewDecryptableAvailable authenc.AeCiphertext
}

func (t *TransferWithFeeProofData) Proofs() []zkproofs.ProofData {
	return []zkproofs.ProofData{t.Equality, t.Validity, t.Percentage, t.FeeValidity, t.Range}
}

type TransferWithFeeAssembler struct {
	split   SplitConfig
	fee     FeeConfig
	backend elgamal.Backend
}

func NewTransferWithFeeAssembler(cfg Config) (*TransferWithFeeAssembler, error) {
	if err := cfg.Split.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Fee.Split.Validate(); err != nil {
		return nil, err
	}
	if cfg.Fee.DeltaBits == 0 || cfg.Fee.DeltaBits > 64 || maxDelta>>cfg.Fee.DeltaBits != 0 {
		return nil, fmt.Errorf("%w: delta width %d", ErrIllegalAmountBitLength, cfg.Fee.DeltaBits)
	}
	if cfg.Fee.NetBits == 0 || cfg.Fee.NetBits > 64 {
		return nil, fmt.Errorf("%w: net width %d", ErrIllegalAmountBitLength, cfg.Fee.NetBits)
	}
	return &TransferWithFeeAssembler{split: cfg.Split, fee: cfg.Fee, backend: cfg.backend()}, nil
}

// feeState is the fee part of the working state: the quote, the fee
// ciphertext, and the commitments derived from the combined halves.
type feeState struct {
	quote FeeQuote
	fee   *splitCiphertext

	net        *elgamal.Commitment
	netOpening *elgamal.Opening

	percentage zkproofs.PercentageWithCapArgs

	complement        *elgamal.Commitment
	complementOpening *elgamal.Opening
}

func (a *TransferWithFeeAssembler) buildFee(args TransferWithFeeArgs, amount *splitCiphertext) (*feeState, error) {
	quote, err := CalculateFee(args.Amount, args.FeeBasisPoints, args.MaximumFee)
	if err != nil {
		return nil, err
	}
	fee, err := encryptSplit(a.backend, a.fee.Split, quote.Fee, args.DestinationPubkey, args.WithheldAuthorityPubkey)
	if err != nil {
		return nil, err
	}
	s := &feeState{quote: quote, fee: fee}

	amountCommitment, amountOpening := amount.combinedCommitment(), amount.combinedOpening()
	feeCommitment, feeOpening := fee.combinedCommitment(), fee.combinedOpening()

	s.net = amountCommitment.Sub(feeCommitment)
	s.netOpening = amountOpening.Sub(feeOpening)

	// fee·10000 - amount·rate, on commitments and openings alike.
	rate := uint64(args.FeeBasisPoints)
	delta := feeCommitment.MulUint64(MaxFeeBasisPoints).Sub(amountCommitment.MulUint64(rate))
	deltaOpening := feeOpening.MulUint64(MaxFeeBasisPoints).Sub(amountOpening.MulUint64(rate))

	claimed, claimedOpening, err := elgamal.Commit(quote.ClaimedDelta)
	if err != nil {
		return nil, proofError(err)
	}
	s.percentage = zkproofs.PercentageWithCapArgs{
		PercentageCommitment: feeCommitment,
		PercentageOpening:    feeOpening,
		PercentageAmount:     quote.Fee,
		DeltaCommitment:      delta,
		DeltaOpening:         deltaOpening,
		DeltaAmount:          quote.Delta,
		ClaimedCommitment:    claimed,
		ClaimedOpening:       claimedOpening,
		MaxValue:             args.MaximumFee,
	}

	zero := elgamal.ZeroOpening()
	s.complement = elgamal.CommitWithOpening(maxDelta, zero).Sub(claimed)
	s.complementOpening = zero.Sub(claimedOpening)
	return s, nil
}

func (s *feeState) rangeEntries(cfg FeeConfig) []rangeEntry {
	fee := s.fee.rangeEntries()
	return []rangeEntry{
		{commitment: s.percentage.ClaimedCommitment, amount: s.quote.ClaimedDelta, bits: cfg.DeltaBits, opening: s.percentage.ClaimedOpening},
		{commitment: s.complement, amount: s.quote.ClaimedComplement(), bits: cfg.DeltaBits, opening: s.complementOpening},
		fee[0],
		fee[1],
		{commitment: s.net, amount: s.quote.Net, bits: cfg.NetBits, opening: s.netOpening},
	}
}

// Assemble builds the five fee-transfer proofs. Once every commitment and
// opening is fixed the proofs are independent and are generated in parallel.
func (a *TransferWithFeeAssembler) Assemble(args TransferWithFeeArgs) (out *TransferWithFeeProofData, err error) {
	defer func(start time.Time) { observeAssembly("transfer_with_fee", start, err) }(time.Now())

	if args.WithheldAuthorityPubkey == nil {
		return nil, fmt.Errorf("%w: missing withheld authority key", ErrFeeCalculation)
	}
	amount, err := encryptSplit(a.backend, a.split, args.Amount,
		args.SourceKeypair.Public, args.DestinationPubkey, pubkeyOrZero(args.AuditorPubkey))
	if err != nil {
		return nil, err
	}
	d, err := newDebit(args.Available, args.DecryptableAvailable, args.AeKey, args.Amount)
	if err != nil {
		return nil, err
	}
	spent, err := amount.combinedView(a.backend, SourceHandle)
	if err != nil {
		return nil, err
	}
	d.spend(a.backend, spent)

	fee, err := a.buildFee(args, amount)
	if err != nil {
		return nil, err
	}
	out = &TransferWithFeeProofData{Quote: fee.quote}
	if out.AuditorLo, out.AuditorHi, err = amount.views(a.backend, AuditorHandle); err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.Go(func() (err error) {
		out.Equality, err = d.equalityProof(args.SourceKeypair)
		return err
	})
	g.Go(func() (err error) {
		out.Validity, err = amount.validityProof()
		return err
	})
	g.Go(func() error {
		data, err := zkproofs.NewPercentageWithCapData(fee.percentage)
		if err != nil {
			return proofError(err)
		}
		out.Percentage = data
		return nil
	})
	g.Go(func() (err error) {
		out.FeeValidity, err = fee.fee.validityProof()
		return err
	})
	g.Go(func() (err error) {
		entries := append([]rangeEntry{d.rangeEntry()}, amount.rangeEntries()...)
		out.Range, err = proveRange(append(entries, fee.rangeEntries(a.fee)...)...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.NewDecryptableAvailable, err = d.newMirror(args.AeKey); err != nil {
		return nil, err
	}
	log.Debug("Assembled transfer-with-fee proof", "proofs", len(out.Proofs()), "capped", fee.quote.Capped)
	return out, nil
}
