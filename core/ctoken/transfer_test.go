package ctoken

import (
	"errors"
	"testing"

	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

func newTransferAssembler(t *testing.T) *TransferAssembler {
	t.Helper()
	a, err := NewTransferAssembler(DefaultTransferConfig())
	if err != nil {
		t.Fatalf("assembler: %v", err)
	}
	return a
}

func TestTransfer(t *testing.T) {
	source, dest, auditor := newKeypair(t), newKeypair(t), newKeypair(t)
	key := newAeKey(t)
	available, mirror := encryptBalance(t, source.Public, key, 100_000)

	const amount = 70_000 // spans both halves
	out, err := newTransferAssembler(t).Assemble(TransferArgs{
		Available:            available,
		DecryptableAvailable: mirror,
		Amount:               amount,
		SourceKeypair:        source,
		AeKey:                key,
		DestinationPubkey:    dest.Public,
		AuditorPubkey:        auditor.Public,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	contexts := verifyBundle(t, out.Proofs())
	if out.Range.ProofType() != zkproofs.ProofTypeBatchedRangeProofU128 {
		t.Fatalf("range proof type %v", out.Range.ProofType())
	}
	if out.Validity.ProofType() != zkproofs.ProofTypeBatchedGroupedCiphertext3HandlesValidity {
		t.Fatalf("validity proof type %v", out.Validity.ProofType())
	}

	tc, err := ExtractTransferContext(TransferSplit, contexts[0], contexts[1], contexts[2])
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got := decryptStored(t, source, tc.NewBalance); got != 100_000-amount {
		t.Fatalf("remaining: got %d", got)
	}
	if got := decryptMirrorT(t, key, out.NewDecryptableAvailable); got != 100_000-amount {
		t.Fatalf("mirror: got %d", got)
	}
	for _, view := range []struct {
		kp    *elgamal.Keypair
		index int
	}{{source, SourceHandle}, {dest, DestinationHandle}, {auditor, AuditorHandle}} {
		combined, err := tc.Amount.Combined(view.index)
		if err != nil {
			t.Fatalf("handle %d: %v", view.index, err)
		}
		if got := decrypt(t, view.kp, combined); got != amount {
			t.Fatalf("handle %d decrypts to %d", view.index, got)
		}
	}
	lo, _ := auditor.Secret.DecryptU32(out.AuditorLo)
	hi, _ := auditor.Secret.DecryptU32(out.AuditorHi)
	if got, ok := CombineAmount(lo, hi, TransferSplit.LoBits); !ok || got != amount {
		t.Fatalf("auditor view: %d/%d", lo, hi)
	}
}

func TestTransferWithoutAuditor(t *testing.T) {
	source, dest := newKeypair(t), newKeypair(t)
	key := newAeKey(t)
	available, mirror := encryptBalance(t, source.Public, key, 500)
	out, err := newTransferAssembler(t).Assemble(TransferArgs{
		Available: available, DecryptableAvailable: mirror, Amount: 500,
		SourceKeypair: source, AeKey: key, DestinationPubkey: dest.Public,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	contexts := verifyBundle(t, out.Proofs())
	validity := contexts[1].(*zkproofs.BatchedGroupedValidityContext)
	if !validity.Pubkeys[AuditorHandle].IsZero() {
		t.Fatal("absent auditor should be the zero key")
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	source, dest := newKeypair(t), newKeypair(t)
	key := newAeKey(t)
	available, mirror := encryptBalance(t, source.Public, key, 99)
	out, err := newTransferAssembler(t).Assemble(TransferArgs{
		Available: available, DecryptableAvailable: mirror, Amount: 100,
		SourceKeypair: source, AeKey: key, DestinationPubkey: dest.Public,
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if out != nil {
		t.Fatal("expected nil bundle")
	}
}

func TestTransferAmountTooWide(t *testing.T) {
	source, dest := newKeypair(t), newKeypair(t)
	key := newAeKey(t)
	available, mirror := encryptBalance(t, source.Public, key, 1)
	_, err := newTransferAssembler(t).Assemble(TransferArgs{
		Available: available, DecryptableAvailable: mirror, Amount: 1 << 48,
		SourceKeypair: source, AeKey: key, DestinationPubkey: dest.Public,
	})
	if !errors.Is(err, ErrIllegalAmountBitLength) {
		t.Fatalf("expected ErrIllegalAmountBitLength, got %v", err)
	}
}

func TestSelfTransferZero(t *testing.T) {
	kp, key := newKeypair(t), newAeKey(t)
	available, mirror := encryptBalance(t, kp.Public, key, 42)
	out, err := newTransferAssembler(t).Assemble(TransferArgs{
		Available: available, DecryptableAvailable: mirror, Amount: 0,
		SourceKeypair: kp, AeKey: key, DestinationPubkey: kp.Public,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	contexts := verifyBundle(t, out.Proofs())
	tc, err := ExtractTransferContext(TransferSplit, contexts[0], contexts[1], contexts[2])
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got := decryptStored(t, kp, tc.NewBalance); got != 42 {
		t.Fatalf("balance changed to %d", got)
	}
	lo, hi, err := tc.Amount.View(DestinationHandle)
	if err != nil {
		t.Fatal(err)
	}
	if decryptStored(t, kp, lo) != 0 || decryptStored(t, kp, hi) != 0 {
		t.Fatal("credit is not zero")
	}
}

func TestExtractTransferRejectsMixedBundles(t *testing.T) {
	source, dest := newKeypair(t), newKeypair(t)
	key := newAeKey(t)
	assemble := func() []zkproofs.ProofContext {
		available, mirror := encryptBalance(t, source.Public, key, 10)
		out, err := newTransferAssembler(t).Assemble(TransferArgs{
			Available: available, DecryptableAvailable: mirror, Amount: 3,
			SourceKeypair: source, AeKey: key, DestinationPubkey: dest.Public,
		})
		if err != nil {
			t.Fatalf("assemble: %v", err)
		}
		return verifyBundle(t, out.Proofs())
	}
	a, b := assemble(), assemble()
	if _, err := ExtractTransferContext(TransferSplit, a[0], a[1], b[2]); !errors.Is(err, ErrPedersenCommitmentMismatch) {
		t.Fatalf("expected ErrPedersenCommitmentMismatch, got %v", err)
	}
	if _, err := ExtractTransferContext(MintBurnSplit, a[0], a[1], a[2]); !errors.Is(err, ErrRangeProofLengthMismatch) {
		t.Fatalf("expected ErrRangeProofLengthMismatch, got %v", err)
	}
	if _, err := ExtractTransferContext(TransferSplit, a[1], a[1], a[2]); !errors.Is(err, ErrInvalidProofType) {
		t.Fatalf("expected ErrInvalidProofType, got %v", err)
	}
}
