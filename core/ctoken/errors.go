package ctoken

import "errors"

var (
	// ErrInsufficientFunds indicates a debit larger than the decrypted balance.
	ErrInsufficientFunds = errors.New("ctoken: insufficient funds")

	// ErrIllegalAmountBitLength indicates an amount that does not fit its split widths.
	ErrIllegalAmountBitLength = errors.New("ctoken: illegal amount bit length")

	// ErrFeeCalculation indicates fee arithmetic overflow or inconsistent fee parameters.
	ErrFeeCalculation = errors.New("ctoken: fee calculation failed")

	// ErrCiphertextExtraction indicates a grouped ciphertext handle that is absent or corrupt.
	ErrCiphertextExtraction = errors.New("ctoken: ciphertext extraction failed")

	// ErrProofGeneration indicates that a proof primitive failed during assembly.
	ErrProofGeneration = errors.New("ctoken: proof generation failed")

	// ErrMalformedCiphertext indicates ciphertext or pubkey bytes that are not valid points.
	ErrMalformedCiphertext = errors.New("ctoken: malformed ciphertext")

	// ErrDecryption indicates a balance mirror or ciphertext that could not be decrypted.
	ErrDecryption = errors.New("ctoken: decryption failed")

	// ErrMaximumPendingCreditsExceeded indicates a credit beyond the account's pending backlog limit.
	ErrMaximumPendingCreditsExceeded = errors.New("ctoken: maximum pending balance credits exceeded")

	// ErrPendingBalanceNonZero indicates a pending ciphertext that must be the zero ciphertext.
	ErrPendingBalanceNonZero = errors.New("ctoken: pending balance is not zero")

	// ErrInvalidProofType indicates a proof or context record of an unexpected type.
	ErrInvalidProofType = errors.New("ctoken: invalid proof type")

	// ErrInvalidProofLocation indicates a proof location that is neither inline nor a context record.
	ErrInvalidProofLocation = errors.New("ctoken: invalid proof location")

	// ErrProofVerification indicates an inline proof that failed verification.
	ErrProofVerification = errors.New("ctoken: proof verification failed")

	// ErrInvalidPayload indicates malformed record bytes.
	ErrInvalidPayload = errors.New("ctoken: invalid payload")

	// ErrCiphertextMismatch indicates a proof built against a balance other than the stored one.
	ErrCiphertextMismatch = errors.New("ctoken: ciphertext does not match stored state")

	// ErrElGamalPubkeyMismatch indicates a proof bound to a key other than the stored one.
	ErrElGamalPubkeyMismatch = errors.New("ctoken: ElGamal pubkey mismatch")

	// ErrPedersenCommitmentMismatch indicates proofs in one bundle that refer to different commitments.
	ErrPedersenCommitmentMismatch = errors.New("ctoken: Pedersen commitment mismatch")

	// ErrRangeProofLengthMismatch indicates a range proof over unexpected bit lengths.
	ErrRangeProofLengthMismatch = errors.New("ctoken: range proof length mismatch")

	// ErrFeeParametersMismatch indicates a fee proof made for other fee settings.
	ErrFeeParametersMismatch = errors.New("ctoken: fee parameters mismatch")

	// ErrAccountNotApproved indicates an account that may not yet transact.
	ErrAccountNotApproved = errors.New("ctoken: account not approved")

	// ErrConfidentialCreditsDisabled indicates a credit to an account that refuses them.
	ErrConfidentialCreditsDisabled = errors.New("ctoken: confidential credits disabled")

	// ErrAccountHasBalance indicates an account closed with a non-zero balance.
	ErrAccountHasBalance = errors.New("ctoken: account has balance")

	// ErrMintHasSupply indicates a mint closed with outstanding confidential supply.
	ErrMintHasSupply = errors.New("ctoken: mint has supply")

	// ErrContextRecordNotFound indicates a proof location naming an unknown context record.
	ErrContextRecordNotFound = errors.New("ctoken: context record not found")
)
