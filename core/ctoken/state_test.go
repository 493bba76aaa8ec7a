package ctoken

import (
	"errors"
	"testing"
)

func TestDepositApplyPending(t *testing.T) {
	kp, key := newKeypair(t), newAeKey(t)
	zero, err := key.Encrypt(0)
	if err != nil {
		t.Fatal(err)
	}
	s := NewAccountState(PubkeyFrom(kp.Public), zero, 0, true)

	for _, amount := range []uint64{5, 70_000, 1 << 20} {
		if err := s.Deposit(amount); err != nil {
			t.Fatalf("deposit %d: %v", amount, err)
		}
	}
	pending, err := s.PendingBalance(kp.Secret)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	const total = 5 + 70_000 + 1<<20
	if pending != total {
		t.Fatalf("pending: got %d want %d", pending, total)
	}

	info := NewApplyPendingInfo(s)
	mirror, err := info.NewDecryptableAvailable(kp.Secret, key)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if err := s.ApplyPending(mirror, info.PendingCreditCounter); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := decryptStored(t, kp, s.Available); got != total {
		t.Fatalf("available: got %d", got)
	}
	if got := decryptMirrorT(t, key, s.DecryptableAvailable); got != total {
		t.Fatalf("mirror: got %d", got)
	}
	if !s.PendingLo.IsZero() || !s.PendingHi.IsZero() {
		t.Fatal("pending not reset")
	}
	if s.PendingCreditCounter != 0 || s.ActualPendingCredits != 3 || s.ExpectedPendingCredits != 3 {
		t.Fatalf("counters: %d %d %d", s.PendingCreditCounter, s.ActualPendingCredits, s.ExpectedPendingCredits)
	}
}

func TestDepositLimits(t *testing.T) {
	kp := newKeypair(t)
	s := NewAccountState(PubkeyFrom(kp.Public), [36]byte{}, 2, true)
	if err := s.Deposit(MaxDepositAmount + 1); !errors.Is(err, ErrIllegalAmountBitLength) {
		t.Fatalf("expected ErrIllegalAmountBitLength, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Deposit(1); err != nil {
			t.Fatalf("deposit %d: %v", i, err)
		}
	}
	if err := s.Deposit(1); !errors.Is(err, ErrMaximumPendingCreditsExceeded) {
		t.Fatalf("expected ErrMaximumPendingCreditsExceeded, got %v", err)
	}
	if err := s.Credit(Ciphertext{}, Ciphertext{}); !errors.Is(err, ErrMaximumPendingCreditsExceeded) {
		t.Fatalf("credit: expected ErrMaximumPendingCreditsExceeded, got %v", err)
	}
	s.AllowConfidentialCredits = false
	if err := s.Deposit(1); !errors.Is(err, ErrConfidentialCreditsDisabled) {
		t.Fatalf("expected ErrConfidentialCreditsDisabled, got %v", err)
	}
}

func TestAccountClosable(t *testing.T) {
	kp, key := newKeypair(t), newAeKey(t)
	s := NewAccountState(PubkeyFrom(kp.Public), [36]byte{}, 0, true)
	if err := s.Closable(); err != nil {
		t.Fatalf("fresh account: %v", err)
	}
	if err := s.Deposit(1); err != nil {
		t.Fatal(err)
	}
	if err := s.Closable(); !errors.Is(err, ErrPendingBalanceNonZero) {
		t.Fatalf("expected ErrPendingBalanceNonZero, got %v", err)
	}
	// An encryption of zero is not the zero ciphertext.
	s.PendingLo, s.PendingHi = Ciphertext{}, Ciphertext{}
	s.Available, _ = encryptBalance(t, kp.Public, key, 0)
	if err := s.Closable(); !errors.Is(err, ErrAccountHasBalance) {
		t.Fatalf("expected ErrAccountHasBalance, got %v", err)
	}
}

func TestMintStateBurnLifecycle(t *testing.T) {
	supplyKP, key := newKeypair(t), newAeKey(t)
	supply, mirror := encryptBalance(t, supplyKP.Public, key, 120)
	m := &MintState{ConfidentialSupply: supply, DecryptableSupply: mirror, SupplyPubkey: PubkeyFrom(supplyKP.Public)}

	burn, _ := encryptBalance(t, supplyKP.Public, key, 120)
	if err := m.Burn(burn); err != nil {
		t.Fatal(err)
	}
	if got := decryptStored(t, supplyKP, m.ConfidentialSupply); got != 120 {
		t.Fatalf("supply before aggregation: %d", got)
	}
	if err := m.RotateSupply(Pubkey{1}, Ciphertext{}, mirror); !errors.Is(err, ErrPendingBalanceNonZero) {
		t.Fatalf("expected ErrPendingBalanceNonZero, got %v", err)
	}
	if err := m.ApplyPendingBurn(); err != nil {
		t.Fatal(err)
	}
	if got := decryptStored(t, supplyKP, m.ConfidentialSupply); got != 0 {
		t.Fatalf("supply after aggregation: %d", got)
	}
	if !m.PendingBurn.IsZero() {
		t.Fatal("pending burn not reset")
	}
	// Supply decrypts to zero but is not the zero ciphertext.
	if err := m.Closable(); !errors.Is(err, ErrMintHasSupply) {
		t.Fatalf("expected ErrMintHasSupply, got %v", err)
	}
	newKP := newKeypair(t)
	if err := m.RotateSupply(PubkeyFrom(newKP.Public), Ciphertext{}, mirror); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if err := m.Closable(); err != nil {
		t.Fatalf("closable: %v", err)
	}
}

func TestPendingBalanceNegativeLo(t *testing.T) {
	kp := newKeypair(t)
	s := NewAccountState(PubkeyFrom(kp.Public), [36]byte{}, 0, true)

	// lo = 5 - 10, hi = 1: what a fee credit of 65531 can leave behind.
	five, _, err := kp.Public.Encrypt(5)
	if err != nil {
		t.Fatal(err)
	}
	ten, _, err := kp.Public.Encrypt(10)
	if err != nil {
		t.Fatal(err)
	}
	one, _, err := kp.Public.Encrypt(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Credit(CiphertextFrom(five.Sub(ten)), CiphertextFrom(one)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	pending, err := s.PendingBalance(kp.Secret)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending != 1<<16-5 {
		t.Fatalf("pending: got %d want %d", pending, 1<<16-5)
	}
}
