package ctoken

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

// ConfigureAccountProofData registers an ElGamal key on an account, with
// the zero mirror the account starts from.
type ConfigureAccountProofData struct {
	Validity *zkproofs.PubkeyValidityData

	DecryptableZeroBalance authenc.AeCiphertext
}

func (c *ConfigureAccountProofData) Proofs() []zkproofs.ProofData {
	return []zkproofs.ProofData{c.Validity}
}

// AssembleConfigureAccount proves knowledge of the secret behind kp.
func AssembleConfigureAccount(kp *elgamal.Keypair, key *authenc.AeKey) (out *ConfigureAccountProofData, err error) {
	defer func(start time.Time) { observeAssembly("configure_account", start, err) }(time.Now())

	if key == nil {
		return nil, fmt.Errorf("%w: missing AE key", ErrDecryption)
	}
	validity, err := zkproofs.NewPubkeyValidityData(kp)
	if err != nil {
		return nil, proofError(err)
	}
	zero, err := key.Encrypt(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return &ConfigureAccountProofData{Validity: validity, DecryptableZeroBalance: zero}, nil
}

type EmptyAccountProofData struct {
	ZeroBalance *zkproofs.ZeroCiphertextData
}

func (e *EmptyAccountProofData) Proofs() []zkproofs.ProofData {
	return []zkproofs.ProofData{e.ZeroBalance}
}

// AssembleEmptyAccount proves the available balance encrypts zero, which
// lets the ledger reset it to the zero ciphertext before closing.
func AssembleEmptyAccount(available Ciphertext, kp *elgamal.Keypair) (out *EmptyAccountProofData, err error) {
	defer func(start time.Time) { observeAssembly("empty_account", start, err) }(time.Now())

	ct, err := available.Decode()
	if err != nil {
		return nil, err
	}
	if amount, ok := kp.Secret.Decrypt(ct, 0); !ok || amount != 0 {
		return nil, fmt.Errorf("%w: available balance is not zero", ErrInsufficientFunds)
	}
	zero, err := zkproofs.NewZeroCiphertextData(kp, ct)
	if err != nil {
		return nil, proofError(err)
	}
	return &EmptyAccountProofData{ZeroBalance: zero}, nil
}

type WithdrawWithheldArgs struct {
	Withheld Ciphertext

	AuthorityKeypair  *elgamal.Keypair
	DestinationPubkey *elgamal.PublicKey
}

// WithdrawWithheldProofData moves withheld fees from the withheld authority
// to a destination account.
type WithdrawWithheldProofData struct {
	Equality *zkproofs.CiphertextCiphertextEqualityData

	Amount uint64
}

func (w *WithdrawWithheldProofData) Proofs() []zkproofs.ProofData {
	return []zkproofs.ProofData{w.Equality}
}

// DestinationCiphertext is the withheld amount under the destination key.
func (w *WithdrawWithheldProofData) DestinationCiphertext() *elgamal.Ciphertext {
	return w.Equality.Context().(*zkproofs.CiphertextCiphertextEqualityContext).SecondCiphertext
}

// AssembleWithdrawWithheld decrypts the withheld fees and re-encrypts them
// for the destination. Withheld totals are expected to stay within the
// 32-bit range the authority can decrypt.
func AssembleWithdrawWithheld(args WithdrawWithheldArgs) (out *WithdrawWithheldProofData, err error) {
	defer func(start time.Time) { observeAssembly("withdraw_withheld", start, err) }(time.Now())

	withheld, err := args.Withheld.Decode()
	if err != nil {
		return nil, err
	}
	amount, ok := args.AuthorityKeypair.Secret.DecryptU32(withheld)
	if !ok {
		return nil, fmt.Errorf("%w: withheld fees", ErrDecryption)
	}
	dest, opening, err := args.DestinationPubkey.Encrypt(amount)
	if err != nil {
		return nil, proofError(err)
	}
	eq, err := zkproofs.NewCiphertextCiphertextEqualityData(args.AuthorityKeypair, args.DestinationPubkey, withheld, dest, opening, amount)
	if err != nil {
		return nil, proofError(err)
	}
	log.Debug("Assembled withheld fee withdrawal", "amount", amount)
	return &WithdrawWithheldProofData{Equality: eq, Amount: amount}, nil
}
