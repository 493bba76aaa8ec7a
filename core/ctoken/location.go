package ctoken

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/tos-network/ctoken/crypto/zkproofs"
)

// ProofLocation says where a proof an operation depends on can be found:
// inline in the same bundle at a relative offset, or in a context record
// created by an earlier verification.
type ProofLocation struct {
	Offset int8
	Record uuid.UUID
}

// InstructionOffset locates an inline proof. Offsets are relative to the
// operation and must be non-zero.
func InstructionOffset(offset int8) ProofLocation {
	return ProofLocation{Offset: offset}
}

// ContextStateAccount locates a pre-verified context record.
func ContextStateAccount(id uuid.UUID) ProofLocation {
	return ProofLocation{Record: id}
}

func (l ProofLocation) IsInline() bool { return l.Offset != 0 }

func (l ProofLocation) validate() error {
	inline, record := l.Offset != 0, l.Record != uuid.Nil
	if inline == record {
		return fmt.Errorf("%w: offset %d, record %s", ErrInvalidProofLocation, l.Offset, l.Record)
	}
	return nil
}

func (l ProofLocation) String() string {
	if l.IsInline() {
		return fmt.Sprintf("offset(%d)", l.Offset)
	}
	return "record(" + l.Record.String() + ")"
}

// ContextRecord is a verified proof context kept for later operations.
type ContextRecord struct {
	ProofType zkproofs.ProofType
	Context   []byte
	// Authority may close the record.
	Authority common.Address
}

// ContextReader looks up context records by id.
type ContextReader interface {
	ReadContextRecord(id uuid.UUID) (*ContextRecord, error)
}

// NewContextRecord verifies data and keeps its context.
func NewContextRecord(data zkproofs.ProofData, authority common.Address) (*ContextRecord, error) {
	if err := data.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrProofVerification, data.ProofType(), err)
	}
	return &ContextRecord{
		ProofType: data.ProofType(),
		Context:   data.Context().Bytes(),
		Authority: authority,
	}, nil
}

// InstructionSet collects the inline proofs of one bundle. Offsets are
// handed out in append order starting at 1, so the n-th inline proof an
// operation refers to is at offset n.
type InstructionSet struct {
	proofs map[int8]zkproofs.ProofData
	next   int8
}

func NewInstructionSet() *InstructionSet {
	return &InstructionSet{proofs: make(map[int8]zkproofs.ProofData), next: 1}
}

// Append adds proofs inline and returns their locations.
func (s *InstructionSet) Append(proofs ...zkproofs.ProofData) ([]ProofLocation, error) {
	locs := make([]ProofLocation, len(proofs))
	for i, p := range proofs {
		if s.next <= 0 {
			return nil, fmt.Errorf("%w: too many inline proofs", ErrInvalidProofLocation)
		}
		s.proofs[s.next] = p
		locs[i] = InstructionOffset(s.next)
		s.next++
	}
	return locs, nil
}

// Proofs returns the inline proofs by offset.
func (s *InstructionSet) Proofs() map[int8]zkproofs.ProofData {
	return s.proofs
}

// CheckLocations validates the locations of an operation. Inline offsets
// must count up from 1 in the order the operation lists its proofs.
func CheckLocations(locs ...ProofLocation) error {
	expected := int8(1)
	for _, loc := range locs {
		if err := loc.validate(); err != nil {
			return err
		}
		if !loc.IsInline() {
			continue
		}
		if loc.Offset != expected {
			return fmt.Errorf("%w: offset %d, expected %d", ErrInvalidProofLocation, loc.Offset, expected)
		}
		expected++
	}
	return nil
}

// VerifyAndExtractContext returns the verified context at loc. Inline
// proofs are verified here; context records were verified when created
// and only their type is checked.
func VerifyAndExtractContext(loc ProofLocation, expected zkproofs.ProofType, inline map[int8]zkproofs.ProofData, records ContextReader) (zkproofs.ProofContext, error) {
	if err := loc.validate(); err != nil {
		return nil, err
	}
	if loc.IsInline() {
		data, ok := inline[loc.Offset]
		if !ok || data == nil {
			return nil, fmt.Errorf("%w: no proof at %v", ErrInvalidProofLocation, loc)
		}
		if data.ProofType() != expected {
			return nil, fmt.Errorf("%w: have %v, want %v", ErrInvalidProofType, data.ProofType(), expected)
		}
		if err := data.Verify(); err != nil {
			return nil, fmt.Errorf("%w: %v: %v", ErrProofVerification, expected, err)
		}
		return data.Context(), nil
	}
	if records == nil {
		return nil, fmt.Errorf("%w: no context records", ErrInvalidProofLocation)
	}
	rec, err := records.ReadContextRecord(loc.Record)
	if err != nil {
		return nil, err
	}
	if rec.ProofType != expected {
		return nil, fmt.Errorf("%w: record %s has %v, want %v", ErrInvalidProofType, loc.Record, rec.ProofType, expected)
	}
	ctx, err := zkproofs.DecodeContext(rec.ProofType, rec.Context)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return ctx, nil
}
