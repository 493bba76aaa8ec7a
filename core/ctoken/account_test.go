package ctoken

import (
	"errors"
	"testing"
)

func TestConfigureAccount(t *testing.T) {
	kp, key := newKeypair(t), newAeKey(t)
	out, err := AssembleConfigureAccount(kp, key)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	verifyBundle(t, out.Proofs())
	if got := decryptMirrorT(t, key, out.DecryptableZeroBalance); got != 0 {
		t.Fatalf("initial mirror: got %d", got)
	}
}

func TestEmptyAccount(t *testing.T) {
	kp, key := newKeypair(t), newAeKey(t)
	zero, _ := encryptBalance(t, kp.Public, key, 0)
	out, err := AssembleEmptyAccount(zero, kp)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	verifyBundle(t, out.Proofs())

	nonzero, _ := encryptBalance(t, kp.Public, key, 1)
	if _, err := AssembleEmptyAccount(nonzero, kp); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestWithdrawWithheld(t *testing.T) {
	authority, dest := newKeypair(t), newKeypair(t)
	withheld, _ := encryptBalance(t, authority.Public, newAeKey(t), 3_000)

	out, err := AssembleWithdrawWithheld(WithdrawWithheldArgs{
		Withheld:          withheld,
		AuthorityKeypair:  authority,
		DestinationPubkey: dest.Public,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	verifyBundle(t, out.Proofs())
	if out.Amount != 3_000 {
		t.Fatalf("amount: got %d", out.Amount)
	}
	if got := decrypt(t, dest, out.DestinationCiphertext()); got != 3_000 {
		t.Fatalf("destination: got %d", got)
	}
}
