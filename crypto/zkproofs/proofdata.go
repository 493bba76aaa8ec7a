package zkproofs

import (
	"fmt"
)

// ProofType identifies a proof statement. The numbering is part of the wire
// format of context records and must not be reordered.
type ProofType uint8

const (
	ProofTypeUninitialized ProofType = iota
	ProofTypeZeroCiphertext
	ProofTypeCiphertextCiphertextEquality
	ProofTypeCiphertextCommitmentEquality
	ProofTypePubkeyValidity
	ProofTypePercentageWithCap
	ProofTypeBatchedRangeProofU64
	ProofTypeBatchedRangeProofU128
	ProofTypeBatchedRangeProofU256
	ProofTypeGroupedCiphertext2HandlesValidity
	ProofTypeBatchedGroupedCiphertext2HandlesValidity
	ProofTypeGroupedCiphertext3HandlesValidity
	ProofTypeBatchedGroupedCiphertext3HandlesValidity
)

var proofTypeNames = map[ProofType]string{
	ProofTypeUninitialized:                            "uninitialized",
	ProofTypeZeroCiphertext:                           "zero-ciphertext",
	ProofTypeCiphertextCiphertextEquality:             "ciphertext-ciphertext-equality",
	ProofTypeCiphertextCommitmentEquality:             "ciphertext-commitment-equality",
	ProofTypePubkeyValidity:                           "pubkey-validity",
	ProofTypePercentageWithCap:                        "percentage-with-cap",
	ProofTypeBatchedRangeProofU64:                     "batched-range-proof-u64",
	ProofTypeBatchedRangeProofU128:                    "batched-range-proof-u128",
	ProofTypeBatchedRangeProofU256:                    "batched-range-proof-u256",
	ProofTypeGroupedCiphertext2HandlesValidity:        "grouped-ciphertext-2-handles-validity",
	ProofTypeBatchedGroupedCiphertext2HandlesValidity: "batched-grouped-ciphertext-2-handles-validity",
	ProofTypeGroupedCiphertext3HandlesValidity:        "grouped-ciphertext-3-handles-validity",
	ProofTypeBatchedGroupedCiphertext3HandlesValidity: "batched-grouped-ciphertext-3-handles-validity",
}

func (pt ProofType) String() string {
	if name, ok := proofTypeNames[pt]; ok {
		return name
	}
	return fmt.Sprintf("proof-type(%d)", uint8(pt))
}

// ProofContext is the public statement a proof is bound to. It is what a
// verifier hands on to the program once the proof checks out.
type ProofContext interface {
	ProofType() ProofType
	Bytes() []byte
}

// ProofData is a context together with its proof.
type ProofData interface {
	ProofType() ProofType
	Context() ProofContext
	Verify() error
	// Bytes returns the context encoding followed by the proof encoding.
	Bytes() []byte
}

// ContextSize returns the fixed context size for a proof type.
func ContextSize(pt ProofType) (int, error) {
	switch pt {
	case ProofTypePubkeyValidity:
		return pubkeyValidityContextSize, nil
	case ProofTypeZeroCiphertext:
		return zeroCiphertextContextSize, nil
	case ProofTypeCiphertextCommitmentEquality:
		return ciphertextCommitmentEqualityContextSize, nil
	case ProofTypeCiphertextCiphertextEquality:
		return ciphertextCiphertextEqualityContextSize, nil
	case ProofTypeGroupedCiphertext2HandlesValidity:
		return groupedValidityContextSize(2), nil
	case ProofTypeGroupedCiphertext3HandlesValidity:
		return groupedValidityContextSize(3), nil
	case ProofTypeBatchedGroupedCiphertext2HandlesValidity:
		return batchedGroupedValidityContextSize(2), nil
	case ProofTypeBatchedGroupedCiphertext3HandlesValidity:
		return batchedGroupedValidityContextSize(3), nil
	case ProofTypePercentageWithCap:
		return percentageWithCapContextSize, nil
	case ProofTypeBatchedRangeProofU64, ProofTypeBatchedRangeProofU128, ProofTypeBatchedRangeProofU256:
		return batchedRangeContextSize, nil
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidProofType, pt)
}

// ProofSize returns the fixed proof size for a proof type.
func ProofSize(pt ProofType) (int, error) {
	switch pt {
	case ProofTypePubkeyValidity:
		return PubkeyValidityProofSize, nil
	case ProofTypeZeroCiphertext:
		return ZeroCiphertextProofSize, nil
	case ProofTypeCiphertextCommitmentEquality:
		return CiphertextCommitmentEqualityProofSize, nil
	case ProofTypeCiphertextCiphertextEquality:
		return CiphertextCiphertextEqualityProofSize, nil
	case ProofTypeGroupedCiphertext2HandlesValidity, ProofTypeBatchedGroupedCiphertext2HandlesValidity:
		return GroupedCiphertextValidityProofSize(2), nil
	case ProofTypeGroupedCiphertext3HandlesValidity, ProofTypeBatchedGroupedCiphertext3HandlesValidity:
		return GroupedCiphertextValidityProofSize(3), nil
	case ProofTypePercentageWithCap:
		return PercentageWithCapProofSize, nil
	case ProofTypeBatchedRangeProofU64:
		return RangeProofSize(64), nil
	case ProofTypeBatchedRangeProofU128:
		return RangeProofSize(128), nil
	case ProofTypeBatchedRangeProofU256:
		return RangeProofSize(256), nil
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidProofType, pt)
}

// DecodeContext parses a context record of the given type.
func DecodeContext(pt ProofType, raw []byte) (ProofContext, error) {
	switch pt {
	case ProofTypePubkeyValidity:
		return decodePubkeyValidityContext(raw)
	case ProofTypeZeroCiphertext:
		return decodeZeroCiphertextContext(raw)
	case ProofTypeCiphertextCommitmentEquality:
		return decodeCiphertextCommitmentEqualityContext(raw)
	case ProofTypeCiphertextCiphertextEquality:
		return decodeCiphertextCiphertextEqualityContext(raw)
	case ProofTypeGroupedCiphertext2HandlesValidity:
		return decodeGroupedValidityContext(raw, 2)
	case ProofTypeGroupedCiphertext3HandlesValidity:
		return decodeGroupedValidityContext(raw, 3)
	case ProofTypeBatchedGroupedCiphertext2HandlesValidity:
		return decodeBatchedGroupedValidityContext(raw, 2)
	case ProofTypeBatchedGroupedCiphertext3HandlesValidity:
		return decodeBatchedGroupedValidityContext(raw, 3)
	case ProofTypePercentageWithCap:
		return decodePercentageWithCapContext(raw)
	case ProofTypeBatchedRangeProofU64:
		return decodeBatchedRangeContext(raw, 64)
	case ProofTypeBatchedRangeProofU128:
		return decodeBatchedRangeContext(raw, 128)
	case ProofTypeBatchedRangeProofU256:
		return decodeBatchedRangeContext(raw, 256)
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidProofType, pt)
}

// DecodeProofData parses context-then-proof bytes of the given type.
func DecodeProofData(pt ProofType, raw []byte) (ProofData, error) {
	ctxSize, err := ContextSize(pt)
	if err != nil {
		return nil, err
	}
	proofSize, err := ProofSize(pt)
	if err != nil {
		return nil, err
	}
	if len(raw) != ctxSize+proofSize {
		return nil, fmt.Errorf("%w: %v data is %d bytes, want %d", ErrDeserialization, pt, len(raw), ctxSize+proofSize)
	}
	ctx, err := DecodeContext(pt, raw[:ctxSize])
	if err != nil {
		return nil, err
	}
	proofBytes := raw[ctxSize:]

	switch c := ctx.(type) {
	case *PubkeyValidityContext:
		proof, err := PubkeyValidityProofFromBytes(proofBytes)
		if err != nil {
			return nil, err
		}
		return &PubkeyValidityData{context: c, proof: proof}, nil
	case *ZeroCiphertextContext:
		proof, err := ZeroCiphertextProofFromBytes(proofBytes)
		if err != nil {
			return nil, err
		}
		return &ZeroCiphertextData{context: c, proof: proof}, nil
	case *CiphertextCommitmentEqualityContext:
		proof, err := CiphertextCommitmentEqualityProofFromBytes(proofBytes)
		if err != nil {
			return nil, err
		}
		return &CiphertextCommitmentEqualityData{context: c, proof: proof}, nil
	case *CiphertextCiphertextEqualityContext:
		proof, err := CiphertextCiphertextEqualityProofFromBytes(proofBytes)
		if err != nil {
			return nil, err
		}
		return &CiphertextCiphertextEqualityData{context: c, proof: proof}, nil
	case *GroupedValidityContext:
		proof, err := GroupedCiphertextValidityProofFromBytes(proofBytes, len(c.Pubkeys))
		if err != nil {
			return nil, err
		}
		return &GroupedValidityData{context: c, proof: proof}, nil
	case *BatchedGroupedValidityContext:
		proof, err := GroupedCiphertextValidityProofFromBytes(proofBytes, len(c.Pubkeys))
		if err != nil {
			return nil, err
		}
		return &BatchedGroupedValidityData{context: c, proof: proof}, nil
	case *PercentageWithCapContext:
		proof, err := PercentageWithCapProofFromBytes(proofBytes)
		if err != nil {
			return nil, err
		}
		return &PercentageWithCapData{context: c, proof: proof}, nil
	case *BatchedRangeContext:
		proof, err := RangeProofFromBytes(proofBytes, c.totalBits)
		if err != nil {
			return nil, err
		}
		return &BatchedRangeProofData{context: c, proof: proof}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidProofType, pt)
}

func joinBytes(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
