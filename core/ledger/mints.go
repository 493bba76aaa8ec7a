package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/core/rawdb"
	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

// MintConfig is the confidential configuration of a new mint. A zero
// auditor key means no auditor; a zero fee rate and cap mean no fee.
type MintConfig struct {
	SupplyPubkey      ctoken.Pubkey
	DecryptableSupply authenc.AeCiphertext
	AuditorPubkey     ctoken.Pubkey

	FeeBasisPoints          uint16
	MaximumFee              uint64
	WithheldAuthorityPubkey ctoken.Pubkey
}

func (l *Ledger) InitializeMint(mint common.Address, cfg MintConfig) (err error) {
	defer func() { err = finish("initialize_mint", err, "mint", mint) }()

	unlock := l.locks.lock(mintLockKey(mint))
	defer unlock()

	if rawdb.ReadMintState(l.db, mint) != nil {
		return ErrMintExists
	}
	if cfg.FeeBasisPoints > ctoken.MaxFeeBasisPoints {
		return fmt.Errorf("%w: rate %d", ctoken.ErrFeeCalculation, cfg.FeeBasisPoints)
	}
	for _, pk := range []ctoken.Pubkey{cfg.SupplyPubkey, cfg.AuditorPubkey, cfg.WithheldAuthorityPubkey} {
		if _, err := pk.Decode(); err != nil {
			return err
		}
	}
	rawdb.WriteMintState(l.db, mint, &ctoken.MintState{
		DecryptableSupply:       cfg.DecryptableSupply,
		SupplyPubkey:            cfg.SupplyPubkey,
		AuditorPubkey:           cfg.AuditorPubkey,
		FeeBasisPoints:          cfg.FeeBasisPoints,
		MaximumFee:              cfg.MaximumFee,
		WithheldAuthorityPubkey: cfg.WithheldAuthorityPubkey,
	})
	return nil
}

type MintOp struct {
	Mint, Destination    common.Address
	NewDecryptableSupply authenc.AeCiphertext

	Equality, Validity, Range ctoken.ProofLocation
}

type BurnOp struct {
	Mint, Owner             common.Address
	NewDecryptableAvailable authenc.AeCiphertext

	Equality, Validity, Range ctoken.ProofLocation
}

// mintBurnContext verifies a mint or burn bundle and binds its handles to
// the stored keys.
func (l *Ledger) mintBurnContext(m *ctoken.MintState, account *ctoken.AccountState, isMint bool, eqLoc, validityLoc, rangeLoc ctoken.ProofLocation, inline Bundle) (*ctoken.BalanceChangeContext, error) {
	if err := ctoken.CheckLocations(eqLoc, validityLoc, rangeLoc); err != nil {
		return nil, err
	}
	split := l.cfg.MintBurn
	eq, err := l.context(eqLoc, zkproofs.ProofTypeCiphertextCommitmentEquality, inline)
	if err != nil {
		return nil, err
	}
	validity, err := l.context(validityLoc, zkproofs.ProofTypeBatchedGroupedCiphertext3HandlesValidity, inline)
	if err != nil {
		return nil, err
	}
	rng, err := l.context(rangeLoc, rangeProofType(ctoken.RemainingBalanceBits, split.LoBits, split.HiBits), inline)
	if err != nil {
		return nil, err
	}
	var bc *ctoken.BalanceChangeContext
	if isMint {
		bc, err = ctoken.ExtractMintContext(split, eq, validity, rng)
	} else {
		bc, err = ctoken.ExtractBurnContext(split, eq, validity, rng)
	}
	if err != nil {
		return nil, err
	}
	keys := bc.Amount.Pubkeys
	if ctoken.PubkeyFrom(keys[ctoken.AccountHandle]) != account.ElGamalPubkey {
		return nil, fmt.Errorf("%w: account", ctoken.ErrElGamalPubkeyMismatch)
	}
	if ctoken.PubkeyFrom(keys[ctoken.SupplyHandle]) != m.SupplyPubkey {
		return nil, fmt.Errorf("%w: supply", ctoken.ErrElGamalPubkeyMismatch)
	}
	if ctoken.PubkeyFrom(keys[ctoken.AuditorHandle]) != m.AuditorPubkey {
		return nil, fmt.Errorf("%w: auditor", ctoken.ErrElGamalPubkeyMismatch)
	}
	return bc, nil
}

// Mint raises the confidential supply and credits the minted amount to
// the destination's pending balance.
func (l *Ledger) Mint(op MintOp, inline Bundle) (err error) {
	defer func() { err = finish("mint", err, "mint", op.Mint, "destination", op.Destination) }()

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
	if err := checkApproved(dst); err != nil {
		return err
	}
	bc, err := l.mintBurnContext(m, dst, true, op.Equality, op.Validity, op.Range, inline)
	if err != nil {
		return err
	}
	if err := checkNewBalance(m.ConfidentialSupply, bc, ctoken.SupplyHandle, true); err != nil {
		return err
	}
	lo, hi, err := bc.Amount.View(ctoken.AccountHandle)
	if err != nil {
		return err
	}
	if err := dst.Credit(lo, hi); err != nil {
		return err
	}
	m.ConfidentialSupply = bc.NewBalance
	m.DecryptableSupply = op.NewDecryptableSupply

	batch := l.db.NewBatch()
	rawdb.WriteMintState(batch, op.Mint, m)
	rawdb.WriteAccountState(batch, op.Mint, op.Destination, dst)
	return batch.Write()
}

// Burn debits the owner's available balance and records the burnt amount
// as pending burn on the mint. The supply drops on ApplyPendingBurn.
func (l *Ledger) Burn(op BurnOp, inline Bundle) (err error) {
	defer func() { err = finish("burn", err, "mint", op.Mint, "owner", op.Owner) }()

	unlock := l.locks.lock(mintLockKey(op.Mint), accountLockKey(op.Mint, op.Owner))
	defer unlock()

	m, err := l.ReadMintState(op.Mint)
	if err != nil {
		return err
	}
	s, err := l.ReadAccountState(op.Mint, op.Owner)
	if err != nil {
		return err
	}
	if err := checkApproved(s); err != nil {
		return err
	}
	bc, err := l.mintBurnContext(m, s, false, op.Equality, op.Validity, op.Range, inline)
	if err != nil {
		return err
	}
	if err := checkNewBalance(s.Available, bc, ctoken.AccountHandle, false); err != nil {
		return err
	}
	supplyView, err := bc.Amount.Combined(ctoken.SupplyHandle)
	if err != nil {
		return err
	}
	if err := m.Burn(ctoken.CiphertextFrom(supplyView)); err != nil {
		return err
	}
	s.Debit(bc.NewBalance, op.NewDecryptableAvailable)

	batch := l.db.NewBatch()
	rawdb.WriteMintState(batch, op.Mint, m)
	rawdb.WriteAccountState(batch, op.Mint, op.Owner, s)
	return batch.Write()
}

// ApplyPendingBurn subtracts the aggregated pending burn from the supply.
// The supply authority updates its mirror with newDecryptableSupply.
func (l *Ledger) ApplyPendingBurn(mint common.Address, newDecryptableSupply authenc.AeCiphertext) (err error) {
	defer func() { err = finish("apply_pending_burn", err, "mint", mint) }()

	unlock := l.locks.lock(mintLockKey(mint))
	defer unlock()

	m, err := l.ReadMintState(mint)
	if err != nil {
		return err
	}
	if err := m.ApplyPendingBurn(); err != nil {
		return err
	}
	m.DecryptableSupply = newDecryptableSupply
	rawdb.WriteMintState(l.db, mint, m)
	return nil
}

type RotateSupplyOp struct {
	Mint                 common.Address
	NewDecryptableSupply authenc.AeCiphertext
	Equality             ctoken.ProofLocation
}

// RotateSupply re-encrypts the supply under a new key.
func (l *Ledger) RotateSupply(op RotateSupplyOp, inline Bundle) (err error) {
	defer func() { err = finish("rotate_supply", err, "mint", op.Mint) }()

	unlock := l.locks.lock(mintLockKey(op.Mint))
	defer unlock()

	m, err := l.ReadMintState(op.Mint)
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
	if ctoken.PubkeyFrom(eq.FirstPubkey) != m.SupplyPubkey {
		return fmt.Errorf("%w: supply", ctoken.ErrElGamalPubkeyMismatch)
	}
	if ctoken.CiphertextFrom(eq.FirstCiphertext) != m.ConfidentialSupply {
		return ctoken.ErrCiphertextMismatch
	}
	err = m.RotateSupply(ctoken.PubkeyFrom(eq.SecondPubkey), ctoken.CiphertextFrom(eq.SecondCiphertext), op.NewDecryptableSupply)
	if err != nil {
		return err
	}
	rawdb.WriteMintState(l.db, op.Mint, m)
	return nil
}

// CloseMint removes a mint with no supply, no withheld fees, and no
// accounts.
func (l *Ledger) CloseMint(mint common.Address) (err error) {
	defer func() { err = finish("close_mint", err, "mint", mint) }()

	unlock := l.locks.lock(mintLockKey(mint))
	defer unlock()

	m, err := l.ReadMintState(mint)
	if err != nil {
		return err
	}
	if err := m.Closable(); err != nil {
		return err
	}
	if !m.WithheldFee.IsZero() {
		return fmt.Errorf("%w: withheld fees", ctoken.ErrMintHasSupply)
	}
	if owners := rawdb.ReadMintAccounts(l.db, mint); len(owners) > 0 {
		return fmt.Errorf("%w: %d", ErrMintHasAccounts, len(owners))
	}
	rawdb.DeleteMintState(l.db, mint)
	return nil
}
