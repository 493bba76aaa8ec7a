package ctoken

import (
	"fmt"

	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
)

// DefaultMaximumPendingCredits is the pending credit limit of a newly
// configured account.
const DefaultMaximumPendingCredits = 65536

// MaxDepositAmount is the largest amount a single deposit or credit can
// carry: the pending halves are TransferSplit wide.
const MaxDepositAmount = 1<<48 - 1

// AccountState is the confidential extension of a token account.
type AccountState struct {
	ElGamalPubkey Pubkey

	PendingLo Ciphertext
	PendingHi Ciphertext
	Available Ciphertext

	DecryptableAvailable authenc.AeCiphertext

	PendingCreditCounter   uint64
	MaximumPendingCredits  uint64
	ExpectedPendingCredits uint64
	ActualPendingCredits   uint64

	Approved                    bool
	AllowConfidentialCredits    bool
	AllowNonConfidentialCredits bool

	// WithheldFee accumulates transfer fees withheld at this account.
	WithheldFee Ciphertext
}

// NewAccountState returns the state of a freshly configured account.
func NewAccountState(pubkey Pubkey, zeroMirror authenc.AeCiphertext, maxCredits uint64, approved bool) *AccountState {
	if maxCredits == 0 {
		maxCredits = DefaultMaximumPendingCredits
	}
	return &AccountState{
		ElGamalPubkey:               pubkey,
		DecryptableAvailable:        zeroMirror,
		MaximumPendingCredits:       maxCredits,
		Approved:                    approved,
		AllowConfidentialCredits:    true,
		AllowNonConfidentialCredits: true,
	}
}

func (s *AccountState) checkCredit() error {
	if !s.AllowConfidentialCredits {
		return ErrConfidentialCreditsDisabled
	}
	if s.PendingCreditCounter >= s.MaximumPendingCredits {
		return fmt.Errorf("%w: %d of %d", ErrMaximumPendingCreditsExceeded, s.PendingCreditCounter, s.MaximumPendingCredits)
	}
	return nil
}

// Deposit moves a public amount into the pending balance. No proof is
// needed since the amount is public.
func (s *AccountState) Deposit(amount uint64) error {
	if amount > MaxDepositAmount {
		return fmt.Errorf("%w: deposit %d", ErrIllegalAmountBitLength, amount)
	}
	if err := s.checkCredit(); err != nil {
		return err
	}
	split, err := TransferSplit.Split(amount)
	if err != nil {
		return err
	}
	lo, err := s.PendingLo.Decode()
	if err != nil {
		return err
	}
	hi, err := s.PendingHi.Decode()
	if err != nil {
		return err
	}
	s.PendingLo = CiphertextFrom(lo.AddAmount(split.Lo))
	s.PendingHi = CiphertextFrom(hi.AddAmount(split.Hi))
	s.PendingCreditCounter++
	return nil
}

// Credit adds the account's view of a transferred amount to the pending
// balance.
func (s *AccountState) Credit(lo, hi Ciphertext) error {
	if err := s.checkCredit(); err != nil {
		return err
	}
	newLo, err := addCiphertexts(s.PendingLo, lo)
	if err != nil {
		return err
	}
	newHi, err := addCiphertexts(s.PendingHi, hi)
	if err != nil {
		return err
	}
	s.PendingLo, s.PendingHi = newLo, newHi
	s.PendingCreditCounter++
	return nil
}

// ApplyPending folds the pending balance into the available balance. The
// new mirror is taken from the caller as is.
func (s *AccountState) ApplyPending(newDecryptable authenc.AeCiphertext, expectedCredits uint64) error {
	available, err := s.Available.Decode()
	if err != nil {
		return err
	}
	lo, err := s.PendingLo.Decode()
	if err != nil {
		return err
	}
	hi, err := s.PendingHi.Decode()
	if err != nil {
		return err
	}
	pending := elgamal.CombineLoHiCiphertexts(lo, hi, TransferSplit.LoBits)
	s.Available = CiphertextFrom(available.Add(pending))
	s.PendingLo, s.PendingHi = Ciphertext{}, Ciphertext{}
	s.DecryptableAvailable = newDecryptable
	s.ExpectedPendingCredits = expectedCredits
	s.ActualPendingCredits = s.PendingCreditCounter
	s.PendingCreditCounter = 0
	return nil
}

// Debit replaces the available balance with a verified new balance.
func (s *AccountState) Debit(newAvailable Ciphertext, newDecryptable authenc.AeCiphertext) {
	s.Available = newAvailable
	s.DecryptableAvailable = newDecryptable
}

// Closable reports whether the account holds no balance. The ciphertexts
// must be the zero ciphertext, not merely decrypt to zero.
func (s *AccountState) Closable() error {
	if !s.Available.IsZero() {
		return fmt.Errorf("%w: available", ErrAccountHasBalance)
	}
	if !s.PendingLo.IsZero() || !s.PendingHi.IsZero() {
		return ErrPendingBalanceNonZero
	}
	return nil
}

// PendingBalance decrypts the pending halves and recombines them.
func (s *AccountState) PendingBalance(secret *elgamal.SecretKey) (uint64, error) {
	return pendingBalance(secret, s.PendingLo, s.PendingHi)
}

func pendingBalance(secret *elgamal.SecretKey, pendingLo, pendingHi Ciphertext) (uint64, error) {
	lo, err := pendingLo.Decode()
	if err != nil {
		return 0, err
	}
	hi, err := pendingHi.Decode()
	if err != nil {
		return 0, err
	}
	hiAmount, ok := secret.DecryptU32(hi)
	if !ok {
		return 0, fmt.Errorf("%w: pending hi", ErrDecryption)
	}
	if loAmount, ok := secret.DecryptU32(lo); ok {
		total, ok := CombineAmount(loAmount, hiAmount, TransferSplit.LoBits)
		if !ok {
			return 0, fmt.Errorf("%w: pending balance overflows", ErrIllegalAmountBitLength)
		}
		return total, nil
	}
	// A fee credit subtracts the fee halves from the amount halves, so the
	// lo half may hold a negative value.
	neg, ok := secret.DecryptU32(elgamal.ZeroCiphertext().Sub(lo))
	if !ok {
		return 0, fmt.Errorf("%w: pending lo", ErrDecryption)
	}
	high := hiAmount << TransferSplit.LoBits
	if neg > high {
		return 0, fmt.Errorf("%w: pending balance is negative", ErrDecryption)
	}
	return high - neg, nil
}

// ApplyPendingInfo is the snapshot a client needs to build the mirror for
// an apply-pending operation.
type ApplyPendingInfo struct {
	PendingCreditCounter uint64
	PendingLo            Ciphertext
	PendingHi            Ciphertext
	DecryptableAvailable authenc.AeCiphertext
}

func NewApplyPendingInfo(s *AccountState) ApplyPendingInfo {
	return ApplyPendingInfo{
		PendingCreditCounter: s.PendingCreditCounter,
		PendingLo:            s.PendingLo,
		PendingHi:            s.PendingHi,
		DecryptableAvailable: s.DecryptableAvailable,
	}
}

// NewDecryptableAvailable returns the mirror of available plus pending.
func (i ApplyPendingInfo) NewDecryptableAvailable(secret *elgamal.SecretKey, key *authenc.AeKey) (authenc.AeCiphertext, error) {
	pending, err := pendingBalance(secret, i.PendingLo, i.PendingHi)
	if err != nil {
		return authenc.AeCiphertext{}, err
	}
	available, err := decryptMirror(key, i.DecryptableAvailable)
	if err != nil {
		return authenc.AeCiphertext{}, err
	}
	total := available + pending
	if total < available {
		return authenc.AeCiphertext{}, fmt.Errorf("%w: available balance overflows", ErrIllegalAmountBitLength)
	}
	mirror, err := key.Encrypt(total)
	if err != nil {
		return authenc.AeCiphertext{}, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return mirror, nil
}

// MintState is the confidential extension of a mint.
type MintState struct {
	ConfidentialSupply Ciphertext
	DecryptableSupply  authenc.AeCiphertext
	SupplyPubkey       Pubkey
	PendingBurn        Ciphertext

	AuditorPubkey Pubkey

	FeeBasisPoints          uint16
	MaximumFee              uint64
	WithheldAuthorityPubkey Pubkey
	WithheldFee             Ciphertext
}

// HasFee reports whether transfers of this mint must carry a fee proof.
func (m *MintState) HasFee() bool {
	return m.FeeBasisPoints != 0 || m.MaximumFee != 0
}

// Burn adds the supply's view of a burnt amount to the pending burn.
func (m *MintState) Burn(supplyView Ciphertext) error {
	burn, err := addCiphertexts(m.PendingBurn, supplyView)
	if err != nil {
		return err
	}
	m.PendingBurn = burn
	return nil
}

// ApplyPendingBurn subtracts the pending burn from the supply.
func (m *MintState) ApplyPendingBurn() error {
	supply, err := subCiphertexts(m.ConfidentialSupply, m.PendingBurn)
	if err != nil {
		return err
	}
	m.ConfidentialSupply = supply
	m.PendingBurn = Ciphertext{}
	return nil
}

// RotateSupply moves the supply to a new key. A supply with an unapplied
// burn cannot rotate, since that burn is encrypted under the old key.
func (m *MintState) RotateSupply(newPubkey Pubkey, newSupply Ciphertext, newDecryptable authenc.AeCiphertext) error {
	if !m.PendingBurn.IsZero() {
		return ErrPendingBalanceNonZero
	}
	m.SupplyPubkey = newPubkey
	m.ConfidentialSupply = newSupply
	m.DecryptableSupply = newDecryptable
	return nil
}

// Closable reports whether the mint has no outstanding supply.
func (m *MintState) Closable() error {
	if !m.ConfidentialSupply.IsZero() {
		return ErrMintHasSupply
	}
	if !m.PendingBurn.IsZero() {
		return ErrPendingBalanceNonZero
	}
	return nil
}
