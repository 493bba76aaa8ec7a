package ctoken

import (
	"errors"
	"testing"

	"github.com/tos-network/ctoken/crypto/zkproofs"
)

func TestWithdraw(t *testing.T) {
	kp, key := newKeypair(t), newAeKey(t)
	available, mirror := encryptBalance(t, kp.Public, key, 1_000)

	out, err := NewWithdrawAssembler(Config{}).Assemble(WithdrawArgs{
		Available:            available,
		DecryptableAvailable: mirror,
		Amount:               400,
		Keypair:              kp,
		AeKey:                key,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	contexts := verifyBundle(t, out.Proofs())
	if out.Range.ProofType() != zkproofs.ProofTypeBatchedRangeProofU64 {
		t.Fatalf("range proof type %v", out.Range.ProofType())
	}
	wc, err := ExtractWithdrawContext(contexts[0], contexts[1])
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got := decryptStored(t, kp, wc.NewAvailable); got != 600 {
		t.Fatalf("remaining: got %d want 600", got)
	}
	if got := decryptMirrorT(t, key, out.NewDecryptableAvailable); got != 600 {
		t.Fatalf("mirror: got %d want 600", got)
	}
}

func TestWithdrawEntireBalance(t *testing.T) {
	kp, key := newKeypair(t), newAeKey(t)
	available, mirror := encryptBalance(t, kp.Public, key, 55)
	out, err := NewWithdrawAssembler(Config{}).Assemble(WithdrawArgs{
		Available: available, DecryptableAvailable: mirror, Amount: 55, Keypair: kp, AeKey: key,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	verifyBundle(t, out.Proofs())
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	kp, key := newKeypair(t), newAeKey(t)
	available, mirror := encryptBalance(t, kp.Public, key, 10)
	out, err := NewWithdrawAssembler(Config{}).Assemble(WithdrawArgs{
		Available: available, DecryptableAvailable: mirror, Amount: 11, Keypair: kp, AeKey: key,
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if out != nil {
		t.Fatal("expected nil bundle")
	}
}

func TestWithdrawWrongAeKey(t *testing.T) {
	kp, key := newKeypair(t), newAeKey(t)
	available, mirror := encryptBalance(t, kp.Public, key, 10)
	_, err := NewWithdrawAssembler(Config{}).Assemble(WithdrawArgs{
		Available: available, DecryptableAvailable: mirror, Amount: 1, Keypair: kp, AeKey: newAeKey(t),
	})
	if !errors.Is(err, ErrDecryption) {
		t.Fatalf("expected ErrDecryption, got %v", err)
	}
}
