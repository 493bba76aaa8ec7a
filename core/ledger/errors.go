package ledger

import "errors"

var (
	// ErrAccountExists indicates a second configuration of the same account.
	ErrAccountExists = errors.New("ledger: account already configured")

	// ErrAccountNotFound indicates an operation on an unconfigured account.
	ErrAccountNotFound = errors.New("ledger: account not found")

	// ErrMintExists indicates a second initialization of the same mint.
	ErrMintExists = errors.New("ledger: mint already initialized")

	// ErrMintNotFound indicates an operation on an unknown mint.
	ErrMintNotFound = errors.New("ledger: mint not found")

	// ErrMintHasAccounts indicates a mint closed while accounts still refer to it.
	ErrMintHasAccounts = errors.New("ledger: mint has accounts")

	// ErrFeeRequired indicates a plain transfer on a mint that charges fees.
	ErrFeeRequired = errors.New("ledger: mint requires transfer with fee")

	// ErrContextRecordAuthority indicates a context record closed by someone other than its authority.
	ErrContextRecordAuthority = errors.New("ledger: not the context record authority")

	// ErrDuplicateAccount indicates a batch naming the same account twice.
	ErrDuplicateAccount = errors.New("ledger: duplicate account in batch")
)
