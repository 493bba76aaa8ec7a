package ctoken

import (
	"errors"
	"testing"

	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

type feeFixture struct {
	source, dest, withheld, auditor *elgamal.Keypair
	args                            TransferWithFeeArgs
}

func newFeeFixture(t *testing.T, balance, amount uint64, rate uint16, maxFee uint64) *feeFixture {
	t.Helper()
	f := &feeFixture{source: newKeypair(t), dest: newKeypair(t), withheld: newKeypair(t), auditor: newKeypair(t)}
	key := newAeKey(t)
	available, mirror := encryptBalance(t, f.source.Public, key, balance)
	f.args = TransferWithFeeArgs{
		Available:               available,
		DecryptableAvailable:    mirror,
		Amount:                  amount,
		SourceKeypair:           f.source,
		AeKey:                   key,
		DestinationPubkey:       f.dest.Public,
		AuditorPubkey:           f.auditor.Public,
		WithheldAuthorityPubkey: f.withheld.Public,
		FeeBasisPoints:          rate,
		MaximumFee:              maxFee,
	}
	return f
}

func newFeeAssembler(t *testing.T) *TransferWithFeeAssembler {
	t.Helper()
	a, err := NewTransferWithFeeAssembler(DefaultTransferConfig())
	if err != nil {
		t.Fatalf("assembler: %v", err)
	}
	return a
}

func TestTransferWithFee(t *testing.T) {
	tests := []struct {
		name   string
		amount uint64
		rate   uint16
		maxFee uint64
		fee    uint64
	}{
		{"below cap", 100, 250, 1_000, 3},
		{"capped", 1_000_000, 500, 300, 300},
		{"exact", 20_000, 100, 1_000, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFeeFixture(t, 2_000_000, tt.amount, tt.rate, tt.maxFee)
			out, err := newFeeAssembler(t).Assemble(f.args)
			if err != nil {
				t.Fatalf("assemble: %v", err)
			}
			if out.Quote.Fee != tt.fee || out.Quote.Fee+out.Quote.Net != tt.amount {
				t.Fatalf("quote %+v", out.Quote)
			}
			contexts := verifyBundle(t, out.Proofs())
			if out.Range.ProofType() != zkproofs.ProofTypeBatchedRangeProofU256 {
				t.Fatalf("range proof type %v", out.Range.ProofType())
			}
			fc, err := ExtractTransferWithFeeContext(DefaultTransferConfig(), tt.rate, tt.maxFee,
				contexts[0], contexts[1], contexts[2], contexts[3], contexts[4])
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if got := decryptStored(t, f.source, fc.NewBalance); got != 2_000_000-tt.amount {
				t.Fatalf("remaining: got %d", got)
			}
			for _, view := range []struct {
				kp    *elgamal.Keypair
				index int
			}{{f.dest, FeeDestinationHandle}, {f.withheld, FeeWithheldAuthorityHandle}} {
				combined, err := fc.Fee.Combined(view.index)
				if err != nil {
					t.Fatal(err)
				}
				if got := decrypt(t, view.kp, combined); got != tt.fee {
					t.Fatalf("fee handle %d decrypts to %d", view.index, got)
				}
			}
		})
	}
}

func TestTransferWithFeeWrongParameters(t *testing.T) {
	f := newFeeFixture(t, 10_000, 1_000, 250, 100)
	out, err := newFeeAssembler(t).Assemble(f.args)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	contexts := verifyBundle(t, out.Proofs())
	extract := func(rate uint16, maxFee uint64) error {
		_, err := ExtractTransferWithFeeContext(DefaultTransferConfig(), rate, maxFee,
			contexts[0], contexts[1], contexts[2], contexts[3], contexts[4])
		return err
	}
	if err := extract(250, 100); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if err := extract(300, 100); !errors.Is(err, ErrFeeParametersMismatch) {
		t.Fatalf("wrong rate: got %v", err)
	}
	if err := extract(250, 99); !errors.Is(err, ErrFeeParametersMismatch) {
		t.Fatalf("wrong cap: got %v", err)
	}
}

func TestTransferWithFeeInsufficientFunds(t *testing.T) {
	f := newFeeFixture(t, 10, 11, 100, 10)
	if _, err := newFeeAssembler(t).Assemble(f.args); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestTransferWithFeeMissingAuthority(t *testing.T) {
	f := newFeeFixture(t, 10, 5, 100, 10)
	f.args.WithheldAuthorityPubkey = nil
	if _, err := newFeeAssembler(t).Assemble(f.args); !errors.Is(err, ErrFeeCalculation) {
		t.Fatalf("expected ErrFeeCalculation, got %v", err)
	}
}
