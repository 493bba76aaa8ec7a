package zkproofs

import "errors"

var (
	// ErrAlgebraicRelation indicates a proof whose verification equation does not hold.
	ErrAlgebraicRelation = errors.New("zkproofs: algebraic relation does not hold")

	// ErrIdentityPoint indicates a proof element that must not be the identity.
	ErrIdentityPoint = errors.New("zkproofs: unexpected identity point")

	// ErrDeserialization indicates proof or context bytes of the wrong size or encoding.
	ErrDeserialization = errors.New("zkproofs: deserialization failed")

	// ErrInvalidBitLength indicates a range proof bit length outside the supported set.
	ErrInvalidBitLength = errors.New("zkproofs: invalid bit length")

	// ErrRangeValue indicates a value that does not fit its declared bit length.
	ErrRangeValue = errors.New("zkproofs: value out of range")

	// ErrLengthMismatch indicates parallel inputs of different lengths.
	ErrLengthMismatch = errors.New("zkproofs: input length mismatch")

	// ErrInvalidProofType indicates proof data of an unexpected or unknown type.
	ErrInvalidProofType = errors.New("zkproofs: invalid proof type")

	// ErrInvalidOpening indicates a commitment that does not match the supplied opening.
	ErrInvalidOpening = errors.New("zkproofs: commitment does not match opening")
)
