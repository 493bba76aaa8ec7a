package ledger

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/core/rawdb"
	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

type TransferOp struct {
	Mint, Source, Destination common.Address
	NewDecryptableAvailable   authenc.AeCiphertext

	Equality, Validity, Range ctoken.ProofLocation
}

type TransferWithFeeOp struct {
	TransferOp
	Percentage, FeeValidity ctoken.ProofLocation
}

// transferParties holds the states a transfer touches. For a self-transfer
// source and destination are the same value.
type transferParties struct {
	mint        *ctoken.MintState
	source      *ctoken.AccountState
	destination *ctoken.AccountState
}

func (l *Ledger) readParties(mint, source, destination common.Address) (*transferParties, error) {
	m, err := l.ReadMintState(mint)
	if err != nil {
		return nil, err
	}
	src, err := l.ReadAccountState(mint, source)
	if err != nil {
		return nil, err
	}
	dst := src
	if destination != source {
		if dst, err = l.ReadAccountState(mint, destination); err != nil {
			return nil, err
		}
	}
	if err := checkApproved(src); err != nil {
		return nil, err
	}
	if err := checkApproved(dst); err != nil {
		return nil, err
	}
	return &transferParties{mint: m, source: src, destination: dst}, nil
}

// checkAmountKeys binds the amount handles to the stored keys.
func (p *transferParties) checkAmountKeys(bc *ctoken.BalanceChangeContext) error {
	if ctoken.PubkeyFrom(bc.Pubkey) != p.source.ElGamalPubkey {
		return fmt.Errorf("%w: source", ctoken.ErrElGamalPubkeyMismatch)
	}
	if ctoken.PubkeyFrom(bc.Amount.Pubkeys[ctoken.DestinationHandle]) != p.destination.ElGamalPubkey {
		return fmt.Errorf("%w: destination", ctoken.ErrElGamalPubkeyMismatch)
	}
	if ctoken.PubkeyFrom(bc.Amount.Pubkeys[ctoken.AuditorHandle]) != p.mint.AuditorPubkey {
		return fmt.Errorf("%w: auditor", ctoken.ErrElGamalPubkeyMismatch)
	}
	return nil
}

// checkNewBalance recomputes current − spent under handle and compares it
// with the proven new balance. A proof made from a stale snapshot fails
// here.
func checkNewBalance(current ctoken.Ciphertext, bc *ctoken.BalanceChangeContext, handle int, add bool) error {
	cur, err := current.Decode()
	if err != nil {
		return err
	}
	moved, err := bc.Amount.Combined(handle)
	if err != nil {
		return err
	}
	var want *elgamal.Ciphertext
	if add {
		want = cur.Add(moved)
	} else {
		want = cur.Sub(moved)
	}
	if ctoken.CiphertextFrom(want) != bc.NewBalance {
		return ctoken.ErrCiphertextMismatch
	}
	return nil
}

func (l *Ledger) writeParties(op TransferOp, p *transferParties) error {
	batch := l.db.NewBatch()
	rawdb.WriteAccountState(batch, op.Mint, op.Source, p.source)
	if op.Destination != op.Source {
		rawdb.WriteAccountState(batch, op.Mint, op.Destination, p.destination)
	}
	return batch.Write()
}

// Transfer moves a confidential amount between two accounts of a mint
// without a transfer fee.
func (l *Ledger) Transfer(op TransferOp, inline Bundle) (err error) {
	defer func() { err = finish("transfer", err, "source", op.Source, "destination", op.Destination) }()

	unlock := l.locks.lock(mintLockKey(op.Mint), accountLockKey(op.Mint, op.Source), accountLockKey(op.Mint, op.Destination))
	defer unlock()

	p, err := l.readParties(op.Mint, op.Source, op.Destination)
	if err != nil {
		return err
	}
	if p.mint.HasFee() {
		return ErrFeeRequired
	}
	if err := ctoken.CheckLocations(op.Equality, op.Validity, op.Range); err != nil {
		return err
	}
	split := l.cfg.Transfer
	eq, err := l.context(op.Equality, zkproofs.ProofTypeCiphertextCommitmentEquality, inline)
	if err != nil {
		return err
	}
	validity, err := l.context(op.Validity, zkproofs.ProofTypeBatchedGroupedCiphertext3HandlesValidity, inline)
	if err != nil {
		return err
	}
	rng, err := l.context(op.Range, rangeProofType(ctoken.RemainingBalanceBits, split.LoBits, split.HiBits), inline)
	if err != nil {
		return err
	}
	tc, err := ctoken.ExtractTransferContext(split, eq, validity, rng)
	if err != nil {
		return err
	}
	if err := p.checkAmountKeys(tc); err != nil {
		return err
	}
	if err := checkNewBalance(p.source.Available, tc, ctoken.SourceHandle, false); err != nil {
		return err
	}
	lo, hi, err := tc.Amount.View(ctoken.DestinationHandle)
	if err != nil {
		return err
	}
	p.source.Debit(tc.NewBalance, op.NewDecryptableAvailable)
	if err := p.destination.Credit(lo, hi); err != nil {
		return err
	}
	return l.writeParties(op, p)
}

// TransferWithFee moves a confidential amount and withholds the proven fee
// at the destination.
func (l *Ledger) TransferWithFee(op TransferWithFeeOp, inline Bundle) (err error) {
	defer func() { err = finish("transfer_with_fee", err, "source", op.Source, "destination", op.Destination) }()

	unlock := l.locks.lock(mintLockKey(op.Mint), accountLockKey(op.Mint, op.Source), accountLockKey(op.Mint, op.Destination))
	defer unlock()

	p, err := l.readParties(op.Mint, op.Source, op.Destination)
	if err != nil {
		return err
	}
	if !p.mint.HasFee() {
		return fmt.Errorf("%w: mint charges no fee", ctoken.ErrFeeParametersMismatch)
	}
	if err := ctoken.CheckLocations(op.Equality, op.Validity, op.Percentage, op.FeeValidity, op.Range); err != nil {
		return err
	}
	cfg := l.cfg.transferConfig()
	eq, err := l.context(op.Equality, zkproofs.ProofTypeCiphertextCommitmentEquality, inline)
	if err != nil {
		return err
	}
	validity, err := l.context(op.Validity, zkproofs.ProofTypeBatchedGroupedCiphertext3HandlesValidity, inline)
	if err != nil {
		return err
	}
	percentage, err := l.context(op.Percentage, zkproofs.ProofTypePercentageWithCap, inline)
	if err != nil {
		return err
	}
	feeValidity, err := l.context(op.FeeValidity, zkproofs.ProofTypeBatchedGroupedCiphertext2HandlesValidity, inline)
	if err != nil {
		return err
	}
	rng, err := l.context(op.Range, rangeProofType(
		ctoken.RemainingBalanceBits, cfg.Split.LoBits, cfg.Split.HiBits,
		cfg.Fee.DeltaBits, cfg.Fee.DeltaBits, cfg.Fee.Split.LoBits, cfg.Fee.Split.HiBits, cfg.Fee.NetBits,
	), inline)
	if err != nil {
		return err
	}
	tc, err := ctoken.ExtractTransferWithFeeContext(cfg, p.mint.FeeBasisPoints, p.mint.MaximumFee, eq, validity, percentage, feeValidity, rng)
	if err != nil {
		return err
	}
	if err := p.checkAmountKeys(tc.BalanceChangeContext); err != nil {
		return err
	}
	if ctoken.PubkeyFrom(tc.Fee.Pubkeys[ctoken.FeeWithheldAuthorityHandle]) != p.mint.WithheldAuthorityPubkey {
		return fmt.Errorf("%w: withheld authority", ctoken.ErrElGamalPubkeyMismatch)
	}
	if err := checkNewBalance(p.source.Available, tc.BalanceChangeContext, ctoken.SourceHandle, false); err != nil {
		return err
	}

	// The destination is credited the amount minus the fee, half by half.
	lo, hi, err := tc.Amount.View(ctoken.DestinationHandle)
	if err != nil {
		return err
	}
	feeLo, feeHi, err := tc.Fee.View(ctoken.FeeDestinationHandle)
	if err != nil {
		return err
	}
	if lo, err = subStored(lo, feeLo); err != nil {
		return err
	}
	if hi, err = subStored(hi, feeHi); err != nil {
		return err
	}
	withheld, err := tc.Fee.Combined(ctoken.FeeWithheldAuthorityHandle)
	if err != nil {
		return err
	}
	p.source.Debit(tc.NewBalance, op.NewDecryptableAvailable)
	if err := p.destination.Credit(lo, hi); err != nil {
		return err
	}
	if p.destination.WithheldFee, err = addStored(p.destination.WithheldFee, ctoken.CiphertextFrom(withheld)); err != nil {
		return err
	}
	return l.writeParties(op.TransferOp, p)
}

func addStored(a, b ctoken.Ciphertext) (ctoken.Ciphertext, error) {
	x, err := a.Decode()
	if err != nil {
		return ctoken.Ciphertext{}, err
	}
	y, err := b.Decode()
	if err != nil {
		return ctoken.Ciphertext{}, err
	}
	return ctoken.CiphertextFrom(x.Add(y)), nil
}

func subStored(a, b ctoken.Ciphertext) (ctoken.Ciphertext, error) {
	x, err := a.Decode()
	if err != nil {
		return ctoken.Ciphertext{}, err
	}
	y, err := b.Decode()
	if err != nil {
		return ctoken.Ciphertext{}, err
	}
	return ctoken.CiphertextFrom(x.Sub(y)), nil
}

// HarvestWithheldToMint moves the fees withheld at the given accounts into
// the mint.
func (l *Ledger) HarvestWithheldToMint(mint common.Address, owners ...common.Address) (err error) {
	defer func() { err = finish("harvest_withheld", err, "mint", mint, "accounts", len(owners)) }()

	set := mapset.NewThreadUnsafeSet()
	keys := []string{mintLockKey(mint)}
	for _, owner := range owners {
		if set.Add(owner) {
			keys = append(keys, accountLockKey(mint, owner))
		}
	}
	unlock := l.locks.lock(keys...)
	defer unlock()

	m, err := l.ReadMintState(mint)
	if err != nil {
		return err
	}
	batch := l.db.NewBatch()
	for _, v := range set.ToSlice() {
		owner := v.(common.Address)
		s, err := l.ReadAccountState(mint, owner)
		if err != nil {
			return err
		}
		if s.WithheldFee.IsZero() {
			continue
		}
		if m.WithheldFee, err = addStored(m.WithheldFee, s.WithheldFee); err != nil {
			return err
		}
		s.WithheldFee = ctoken.Ciphertext{}
		rawdb.WriteAccountState(batch, mint, owner, s)
	}
	rawdb.WriteMintState(batch, mint, m)
	return batch.Write()
}

type WithdrawWithheldOp struct {
	Mint, Destination common.Address
	Equality          ctoken.ProofLocation
}

// WithdrawWithheldFromMint credits the fees harvested to the mint to the
// destination account. The proof shows the destination ciphertext hides the
// same amount as the mint's withheld fee.
func (l *Ledger) WithdrawWithheldFromMint(op WithdrawWithheldOp, inline Bundle) (err error) {
	defer func() { err = finish("withdraw_withheld", err, "destination", op.Destination) }()

	unlock := l.locks.lock(mintLockKey(op.Mint), accountLockKey(op.Mint, op.Destination))
	defer unlock()

	m, err := l.ReadMintState(op.Mint)
	if err != nil {
		return err
	}
	dst, err := l.ReadAccountState(op.Mint, op.Destination)
	if err != nil {
		return err
	}
	if err := ctoken.CheckLocations(op.Equality); err != nil {
		return err
	}
	ctx, err := l.context(op.Equality, zkproofs.ProofTypeCiphertextCiphertextEquality, inline)
	if err != nil {
		return err
	}
	eq := ctx.(*zkproofs.CiphertextCiphertextEqualityContext)
	if ctoken.PubkeyFrom(eq.FirstPubkey) != m.WithheldAuthorityPubkey {
		return fmt.Errorf("%w: withheld authority", ctoken.ErrElGamalPubkeyMismatch)
	}
	if ctoken.PubkeyFrom(eq.SecondPubkey) != dst.ElGamalPubkey {
		return fmt.Errorf("%w: destination", ctoken.ErrElGamalPubkeyMismatch)
	}
	if ctoken.CiphertextFrom(eq.FirstCiphertext) != m.WithheldFee {
		return ctoken.ErrCiphertextMismatch
	}
	if err := dst.Credit(ctoken.CiphertextFrom(eq.SecondCiphertext), ctoken.Ciphertext{}); err != nil {
		return err
	}
	m.WithheldFee = ctoken.Ciphertext{}

	batch := l.db.NewBatch()
	rawdb.WriteMintState(batch, op.Mint, m)
	rawdb.WriteAccountState(batch, op.Mint, op.Destination, dst)
	return batch.Write()
}
