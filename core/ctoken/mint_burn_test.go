package ctoken

import (
	"errors"
	"testing"

	"github.com/tos-network/ctoken/crypto/zkproofs"
)

func newMintBurnAssembler(t *testing.T) *MintBurnAssembler {
	t.Helper()
	a, err := NewMintBurnAssembler(DefaultMintBurnConfig())
	if err != nil {
		t.Fatalf("assembler: %v", err)
	}
	return a
}

func TestMint(t *testing.T) {
	supplyKP, dest := newKeypair(t), newKeypair(t)
	supplyKey := newAeKey(t)
	zeroMirror, err := supplyKey.Encrypt(0)
	if err != nil {
		t.Fatal(err)
	}
	out, err := newMintBurnAssembler(t).AssembleMint(MintArgs{
		Supply:            Ciphertext{},
		DecryptableSupply: zeroMirror,
		Amount:            120,
		SupplyKeypair:     supplyKP,
		SupplyAeKey:       supplyKey,
		DestinationPubkey: dest.Public,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	contexts := verifyBundle(t, out.Proofs())
	if out.Range.ProofType() != zkproofs.ProofTypeBatchedRangeProofU128 {
		t.Fatalf("range proof type %v", out.Range.ProofType())
	}
	mc, err := ExtractMintContext(MintBurnSplit, contexts[0], contexts[1], contexts[2])
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got := decryptStored(t, supplyKP, mc.NewBalance); got != 120 {
		t.Fatalf("supply: got %d want 120", got)
	}
	if got := decryptMirrorT(t, supplyKey, out.NewDecryptableSupply); got != 120 {
		t.Fatalf("supply mirror: got %d", got)
	}
	credit, err := mc.Amount.Combined(AccountHandle)
	if err != nil {
		t.Fatal(err)
	}
	if got := decrypt(t, dest, credit); got != 120 {
		t.Fatalf("destination credit: got %d", got)
	}
}

func TestMintSupplyOverflow(t *testing.T) {
	supplyKP, dest := newKeypair(t), newKeypair(t)
	supplyKey := newAeKey(t)
	mirror, err := supplyKey.Encrypt(1<<64 - 10)
	if err != nil {
		t.Fatal(err)
	}
	// The ciphertext is irrelevant; the mirror already rules the mint out.
	supply, _ := encryptBalance(t, supplyKP.Public, supplyKey, 0)
	_, err = newMintBurnAssembler(t).AssembleMint(MintArgs{
		Supply: supply, DecryptableSupply: mirror, Amount: 20,
		SupplyKeypair: supplyKP, SupplyAeKey: supplyKey, DestinationPubkey: dest.Public,
	})
	if !errors.Is(err, ErrIllegalAmountBitLength) {
		t.Fatalf("expected ErrIllegalAmountBitLength, got %v", err)
	}
}

func TestBurn(t *testing.T) {
	source, supplyKP, auditor := newKeypair(t), newKeypair(t), newKeypair(t)
	key := newAeKey(t)
	available, mirror := encryptBalance(t, source.Public, key, 1_000)

	out, err := newMintBurnAssembler(t).AssembleBurn(BurnArgs{
		Available:            available,
		DecryptableAvailable: mirror,
		Amount:               120,
		SourceKeypair:        source,
		AeKey:                key,
		SupplyPubkey:         supplyKP.Public,
		AuditorPubkey:        auditor.Public,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	contexts := verifyBundle(t, out.Proofs())
	bc, err := ExtractBurnContext(MintBurnSplit, contexts[0], contexts[1], contexts[2])
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got := decryptStored(t, source, bc.NewBalance); got != 880 {
		t.Fatalf("remaining: got %d want 880", got)
	}
	burnt, err := bc.Amount.Combined(SupplyHandle)
	if err != nil {
		t.Fatal(err)
	}
	if got := decrypt(t, supplyKP, burnt); got != 120 {
		t.Fatalf("supply view: got %d", got)
	}
	if got, _ := auditor.Secret.DecryptU32(out.AuditorLo); got != 120 {
		t.Fatalf("auditor lo: got %d", got)
	}
}

func TestBurnInsufficientFunds(t *testing.T) {
	source, supplyKP := newKeypair(t), newKeypair(t)
	key := newAeKey(t)
	available, mirror := encryptBalance(t, source.Public, key, 5)
	_, err := newMintBurnAssembler(t).AssembleBurn(BurnArgs{
		Available: available, DecryptableAvailable: mirror, Amount: 6,
		SourceKeypair: source, AeKey: key, SupplyPubkey: supplyKP.Public,
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestRotateSupply(t *testing.T) {
	oldKP, newKP := newKeypair(t), newKeypair(t)
	key := newAeKey(t)
	supply, mirror := encryptBalance(t, oldKP.Public, key, 777)

	out, err := newMintBurnAssembler(t).AssembleRotateSupply(RotateSupplyArgs{
		Supply:            supply,
		DecryptableSupply: mirror,
		CurrentKeypair:    oldKP,
		NewPubkey:         newKP.Public,
		SupplyAeKey:       key,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	verifyBundle(t, out.Proofs())
	if got := decryptStored(t, newKP, out.NewSupply); got != 777 {
		t.Fatalf("rotated supply: got %d", got)
	}
}
