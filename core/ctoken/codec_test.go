package ctoken

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tos-network/ctoken/crypto/zkproofs"
)

func testCiphertext(seed byte) Ciphertext {
	var ct Ciphertext
	copy(ct.Commitment[:], bytes.Repeat([]byte{seed}, PointSize))
	copy(ct.Handle[:], bytes.Repeat([]byte{seed + 1}, PointSize))
	return ct
}

func TestAccountStateCodec(t *testing.T) {
	in := &AccountState{
		ElGamalPubkey:               Pubkey{7},
		PendingLo:                   testCiphertext(1),
		PendingHi:                   testCiphertext(3),
		Available:                   testCiphertext(5),
		PendingCreditCounter:        4,
		MaximumPendingCredits:       65536,
		ExpectedPendingCredits:      2,
		ActualPendingCredits:        3,
		Approved:                    true,
		AllowNonConfidentialCredits: true,
	}
	in.DecryptableAvailable[0] = 0xAA
	enc, err := EncodeAccountState(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasPrefix(enc, []byte(RecordPrefix)) {
		t.Fatal("missing record prefix")
	}
	out, err := DecodeAccountState(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", out, in)
	}
}

func TestMintStateCodec(t *testing.T) {
	in := &MintState{
		ConfidentialSupply: testCiphertext(9),
		SupplyPubkey:       Pubkey{1, 2, 3},
		FeeBasisPoints:     250,
		MaximumFee:         1_000,
	}
	enc, err := EncodeMintState(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeMintState(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Fatal("round trip mismatch")
	}
	if _, err := DecodeAccountState(enc); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("mint record decoded as account: %v", err)
	}
}

func TestContextRecordCodec(t *testing.T) {
	in := &ContextRecord{
		ProofType: zkproofs.ProofTypePubkeyValidity,
		Context:   bytes.Repeat([]byte{0}, 32),
		Authority: common.HexToAddress("0xBEEF"),
	}
	enc, err := EncodeContextRecord(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeContextRecord(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ProofType != in.ProofType || !bytes.Equal(out.Context, in.Context) || out.Authority != in.Authority {
		t.Fatal("round trip mismatch")
	}
	in.Context = in.Context[:31]
	if _, err := EncodeContextRecord(in); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestDecodeRecordRejectsPrefix(t *testing.T) {
	enc, err := EncodeMintState(&MintState{})
	if err != nil {
		t.Fatal(err)
	}
	enc[0] ^= 0xFF
	if _, err := DecodeMintState(enc); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
