package ctoken

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

const (
	// RecordPrefix tags every persisted ctoken record.
	RecordPrefix = "CTOKEN1"

	recordVersion byte = 1
)

// Record kinds.
const (
	RecordAccount byte = iota + 1
	RecordMint
	RecordContext
)

type recordRLP struct {
	Kind    byte
	Version byte
	Body    []byte
}

type accountRLP struct {
	ElGamalPubkey          Pubkey
	PendingLo              Ciphertext
	PendingHi              Ciphertext
	Available              Ciphertext
	DecryptableAvailable   authenc.AeCiphertext
	PendingCreditCounter   uint64
	MaximumPendingCredits  uint64
	ExpectedPendingCredits uint64
	ActualPendingCredits   uint64
	Flags                  uint8
	WithheldFee            Ciphertext
}

const (
	flagApproved uint8 = 1 << iota
	flagAllowConfidentialCredits
	flagAllowNonConfidentialCredits
)

type mintRLP struct {
	ConfidentialSupply      Ciphertext
	DecryptableSupply       authenc.AeCiphertext
	SupplyPubkey            Pubkey
	PendingBurn             Ciphertext
	AuditorPubkey           Pubkey
	FeeBasisPoints          uint16
	MaximumFee              uint64
	WithheldAuthorityPubkey Pubkey
	WithheldFee             Ciphertext
}

type contextRecordRLP struct {
	ProofType uint8
	Context   []byte
	Authority common.Address
}

func encodeRecord(kind byte, body interface{}) ([]byte, error) {
	inner, err := rlp.EncodeToBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	enc, err := rlp.EncodeToBytes(&recordRLP{Kind: kind, Version: recordVersion, Body: inner})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	out := make([]byte, len(RecordPrefix)+len(enc))
	copy(out, RecordPrefix)
	copy(out[len(RecordPrefix):], enc)
	return out, nil
}

func decodeRecord(data []byte, kind byte, body interface{}) error {
	if len(data) <= len(RecordPrefix) || !bytes.Equal(data[:len(RecordPrefix)], []byte(RecordPrefix)) {
		return ErrInvalidPayload
	}
	var rec recordRLP
	if err := rlp.DecodeBytes(data[len(RecordPrefix):], &rec); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if rec.Kind != kind {
		return fmt.Errorf("%w: record kind %d, want %d", ErrInvalidPayload, rec.Kind, kind)
	}
	if rec.Version != recordVersion {
		return fmt.Errorf("%w: record version %d", ErrInvalidPayload, rec.Version)
	}
	if err := rlp.DecodeBytes(rec.Body, body); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func EncodeAccountState(s *AccountState) ([]byte, error) {
	var flags uint8
	if s.Approved {
		flags |= flagApproved
	}
	if s.AllowConfidentialCredits {
		flags |= flagAllowConfidentialCredits
	}
	if s.AllowNonConfidentialCredits {
		flags |= flagAllowNonConfidentialCredits
	}
	return encodeRecord(RecordAccount, &accountRLP{
		ElGamalPubkey:          s.ElGamalPubkey,
		PendingLo:              s.PendingLo,
		PendingHi:              s.PendingHi,
		Available:              s.Available,
		DecryptableAvailable:   s.DecryptableAvailable,
		PendingCreditCounter:   s.PendingCreditCounter,
		MaximumPendingCredits:  s.MaximumPendingCredits,
		ExpectedPendingCredits: s.ExpectedPendingCredits,
		ActualPendingCredits:   s.ActualPendingCredits,
		Flags:                  flags,
		WithheldFee:            s.WithheldFee,
	})
}

func DecodeAccountState(data []byte) (*AccountState, error) {
	var raw accountRLP
	if err := decodeRecord(data, RecordAccount, &raw); err != nil {
		return nil, err
	}
	return &AccountState{
		ElGamalPubkey:               raw.ElGamalPubkey,
		PendingLo:                   raw.PendingLo,
		PendingHi:                   raw.PendingHi,
		Available:                   raw.Available,
		DecryptableAvailable:        raw.DecryptableAvailable,
		PendingCreditCounter:        raw.PendingCreditCounter,
		MaximumPendingCredits:       raw.MaximumPendingCredits,
		ExpectedPendingCredits:      raw.ExpectedPendingCredits,
		ActualPendingCredits:        raw.ActualPendingCredits,
		Approved:                    raw.Flags&flagApproved != 0,
		AllowConfidentialCredits:    raw.Flags&flagAllowConfidentialCredits != 0,
		AllowNonConfidentialCredits: raw.Flags&flagAllowNonConfidentialCredits != 0,
		WithheldFee:                 raw.WithheldFee,
	}, nil
}

func EncodeMintState(m *MintState) ([]byte, error) {
	return encodeRecord(RecordMint, &mintRLP{
		ConfidentialSupply:      m.ConfidentialSupply,
		DecryptableSupply:       m.DecryptableSupply,
		SupplyPubkey:            m.SupplyPubkey,
		PendingBurn:             m.PendingBurn,
		AuditorPubkey:           m.AuditorPubkey,
		FeeBasisPoints:          m.FeeBasisPoints,
		MaximumFee:              m.MaximumFee,
		WithheldAuthorityPubkey: m.WithheldAuthorityPubkey,
		WithheldFee:             m.WithheldFee,
	})
}

func DecodeMintState(data []byte) (*MintState, error) {
	var raw mintRLP
	if err := decodeRecord(data, RecordMint, &raw); err != nil {
		return nil, err
	}
	if raw.FeeBasisPoints > MaxFeeBasisPoints {
		return nil, fmt.Errorf("%w: fee rate %d", ErrInvalidPayload, raw.FeeBasisPoints)
	}
	return &MintState{
		ConfidentialSupply:      raw.ConfidentialSupply,
		DecryptableSupply:       raw.DecryptableSupply,
		SupplyPubkey:            raw.SupplyPubkey,
		PendingBurn:             raw.PendingBurn,
		AuditorPubkey:           raw.AuditorPubkey,
		FeeBasisPoints:          raw.FeeBasisPoints,
		MaximumFee:              raw.MaximumFee,
		WithheldAuthorityPubkey: raw.WithheldAuthorityPubkey,
		WithheldFee:             raw.WithheldFee,
	}, nil
}

func EncodeContextRecord(r *ContextRecord) ([]byte, error) {
	if size, err := zkproofs.ContextSize(r.ProofType); err != nil || size != len(r.Context) {
		return nil, fmt.Errorf("%w: %v context of %d bytes", ErrInvalidPayload, r.ProofType, len(r.Context))
	}
	return encodeRecord(RecordContext, &contextRecordRLP{
		ProofType: uint8(r.ProofType),
		Context:   common.CopyBytes(r.Context),
		Authority: r.Authority,
	})
}

func DecodeContextRecord(data []byte) (*ContextRecord, error) {
	var raw contextRecordRLP
	if err := decodeRecord(data, RecordContext, &raw); err != nil {
		return nil, err
	}
	pt := zkproofs.ProofType(raw.ProofType)
	if size, err := zkproofs.ContextSize(pt); err != nil || size != len(raw.Context) {
		return nil, fmt.Errorf("%w: %v context of %d bytes", ErrInvalidPayload, pt, len(raw.Context))
	}
	return &ContextRecord{ProofType: pt, Context: raw.Context, Authority: raw.Authority}, nil
}
