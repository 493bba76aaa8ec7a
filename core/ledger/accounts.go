package ledger

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/core/rawdb"
	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

type ConfigureAccountOp struct {
	Mint, Owner            common.Address
	DecryptableZeroBalance authenc.AeCiphertext
	PubkeyValidity         ctoken.ProofLocation
}

// ConfigureAccount registers the ElGamal key proven by the pubkey validity
// proof as owner's confidential account.
func (l *Ledger) ConfigureAccount(op ConfigureAccountOp, inline Bundle) (err error) {
	defer func() { err = finish("configure_account", err, "owner", op.Owner) }()

	unlock := l.locks.lock(mintLockKey(op.Mint), accountLockKey(op.Mint, op.Owner))
	defer unlock()

	if _, err := l.ReadMintState(op.Mint); err != nil {
		return err
	}
	if rawdb.ReadAccountState(l.db, op.Mint, op.Owner) != nil {
		return ErrAccountExists
	}
	if err := ctoken.CheckLocations(op.PubkeyValidity); err != nil {
		return err
	}
	ctx, err := l.context(op.PubkeyValidity, zkproofs.ProofTypePubkeyValidity, inline)
	if err != nil {
		return err
	}
	pubkey := ctoken.PubkeyFrom(ctx.(*zkproofs.PubkeyValidityContext).Pubkey)
	state := ctoken.NewAccountState(pubkey, op.DecryptableZeroBalance, l.cfg.MaximumPendingCredits, l.cfg.AutoApprove)
	rawdb.WriteAccountState(l.db, op.Mint, op.Owner, state)
	return nil
}

// ApproveAccount lets an account transact.
func (l *Ledger) ApproveAccount(mint, owner common.Address) (err error) {
	defer func() { err = finish("approve_account", err, "owner", owner) }()

	unlock := l.locks.lock(accountLockKey(mint, owner))
	defer unlock()

	s, err := l.ReadAccountState(mint, owner)
	if err != nil {
		return err
	}
	s.Approved = true
	rawdb.WriteAccountState(l.db, mint, owner, s)
	return nil
}

func checkApproved(s *ctoken.AccountState) error {
	if !s.Approved {
		return ctoken.ErrAccountNotApproved
	}
	return nil
}

// Deposit moves a public amount into owner's pending balance.
func (l *Ledger) Deposit(mint, owner common.Address, amount uint64) (err error) {
	defer func() { err = finish("deposit", err, "owner", owner, "amount", amount) }()

	unlock := l.locks.lock(accountLockKey(mint, owner))
	defer unlock()

	s, err := l.ReadAccountState(mint, owner)
	if err != nil {
		return err
	}
	if err := checkApproved(s); err != nil {
		return err
	}
	if err := s.Deposit(amount); err != nil {
		return err
	}
	rawdb.WriteAccountState(l.db, mint, owner, s)
	return nil
}

type ApplyPendingOp struct {
	Owner                   common.Address
	NewDecryptableAvailable authenc.AeCiphertext
	ExpectedPendingCredits  uint64
}

// ApplyPending folds the pending balances of one or more accounts of mint
// into their available balances. The batch is applied atomically.
func (l *Ledger) ApplyPending(mint common.Address, ops ...ApplyPendingOp) (err error) {
	defer func() { err = finish("apply_pending", err, "accounts", len(ops)) }()

	seen := mapset.NewThreadUnsafeSet()
	keys := make([]string, 0, len(ops))
	for _, op := range ops {
		if !seen.Add(op.Owner) {
			return fmt.Errorf("%w: %x", ErrDuplicateAccount, op.Owner)
		}
		keys = append(keys, accountLockKey(mint, op.Owner))
	}
	unlock := l.locks.lock(keys...)
	defer unlock()

	batch := l.db.NewBatch()
	for _, op := range ops {
		s, err := l.ReadAccountState(mint, op.Owner)
		if err != nil {
			return err
		}
		if err := s.ApplyPending(op.NewDecryptableAvailable, op.ExpectedPendingCredits); err != nil {
			return err
		}
		rawdb.WriteAccountState(batch, mint, op.Owner, s)
	}
	return batch.Write()
}

type WithdrawOp struct {
	Mint, Owner             common.Address
	Amount                  uint64
	NewDecryptableAvailable authenc.AeCiphertext

	Equality, Range ctoken.ProofLocation
}

// Withdraw debits amount from owner's available balance.
func (l *Ledger) Withdraw(op WithdrawOp, inline Bundle) (err error) {
	defer func() { err = finish("withdraw", err, "owner", op.Owner, "amount", op.Amount) }()

	unlock := l.locks.lock(accountLockKey(op.Mint, op.Owner))
	defer unlock()

	s, err := l.ReadAccountState(op.Mint, op.Owner)
	if err != nil {
		return err
	}
	if err := ctoken.CheckLocations(op.Equality, op.Range); err != nil {
		return err
	}
	eq, err := l.context(op.Equality, zkproofs.ProofTypeCiphertextCommitmentEquality, inline)
	if err != nil {
		return err
	}
	rng, err := l.context(op.Range, rangeProofType(ctoken.RemainingBalanceBits), inline)
	if err != nil {
		return err
	}
	wc, err := ctoken.ExtractWithdrawContext(eq, rng)
	if err != nil {
		return err
	}
	if ctoken.PubkeyFrom(wc.Pubkey) != s.ElGamalPubkey {
		return ctoken.ErrElGamalPubkeyMismatch
	}
	available, err := s.Available.Decode()
	if err != nil {
		return err
	}
	if ctoken.CiphertextFrom(available.SubAmount(op.Amount)) != wc.NewAvailable {
		return ctoken.ErrCiphertextMismatch
	}
	s.Debit(wc.NewAvailable, op.NewDecryptableAvailable)
	rawdb.WriteAccountState(l.db, op.Mint, op.Owner, s)
	return nil
}

type EmptyAccountOp struct {
	Mint, Owner common.Address
	ZeroBalance ctoken.ProofLocation
}

// EmptyAccount resets an available balance proven to encrypt zero to the
// zero ciphertext.
func (l *Ledger) EmptyAccount(op EmptyAccountOp, inline Bundle) (err error) {
	defer func() { err = finish("empty_account", err, "owner", op.Owner) }()

	unlock := l.locks.lock(accountLockKey(op.Mint, op.Owner))
	defer unlock()

	s, err := l.ReadAccountState(op.Mint, op.Owner)
	if err != nil {
		return err
	}
	if err := ctoken.CheckLocations(op.ZeroBalance); err != nil {
		return err
	}
	ctx, err := l.context(op.ZeroBalance, zkproofs.ProofTypeZeroCiphertext, inline)
	if err != nil {
		return err
	}
	zc := ctx.(*zkproofs.ZeroCiphertextContext)
	if ctoken.PubkeyFrom(zc.Pubkey) != s.ElGamalPubkey {
		return ctoken.ErrElGamalPubkeyMismatch
	}
	if ctoken.CiphertextFrom(zc.Ciphertext) != s.Available {
		return ctoken.ErrCiphertextMismatch
	}
	s.Available = ctoken.Ciphertext{}
	rawdb.WriteAccountState(l.db, op.Mint, op.Owner, s)
	return nil
}

// CloseAccount removes an account that holds no balance.
func (l *Ledger) CloseAccount(mint, owner common.Address) (err error) {
	defer func() { err = finish("close_account", err, "owner", owner) }()

	unlock := l.locks.lock(accountLockKey(mint, owner))
	defer unlock()

	s, err := l.ReadAccountState(mint, owner)
	if err != nil {
		return err
	}
	if err := s.Closable(); err != nil {
		return err
	}
	if !s.WithheldFee.IsZero() {
		return fmt.Errorf("%w: withheld fees", ctoken.ErrAccountHasBalance)
	}
	rawdb.DeleteAccountState(l.db, mint, owner)
	return nil
}
