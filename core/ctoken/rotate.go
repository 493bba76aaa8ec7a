package ctoken

import (
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

type RotateSupplyArgs struct {
	Supply            Ciphertext
	DecryptableSupply authenc.AeCiphertext

	CurrentKeypair *elgamal.Keypair
	NewPubkey      *elgamal.PublicKey
	SupplyAeKey    *authenc.AeKey
}

// RotateSupplyProofData re-encrypts the supply under a new key and proves
// the two ciphertexts hide the same value.
type RotateSupplyProofData struct {
	Equality *zkproofs.CiphertextCiphertextEqualityData

	NewSupply Ciphertext
}

func (r *RotateSupplyProofData) Proofs() []zkproofs.ProofData {
	return []zkproofs.ProofData{r.Equality}
}

// AssembleRotateSupply builds the supply key rotation bundle. The ledger
// additionally requires the pending burn to be the zero ciphertext.
func (a *MintBurnAssembler) AssembleRotateSupply(args RotateSupplyArgs) (out *RotateSupplyProofData, err error) {
	defer func(start time.Time) { observeAssembly("rotate_supply", start, err) }(time.Now())

	current, err := openBalance(args.Supply, args.DecryptableSupply, args.SupplyAeKey)
	if err != nil {
		return nil, err
	}
	fresh, opening, err := args.NewPubkey.Encrypt(current.before)
	if err != nil {
		return nil, proofError(err)
	}
	eq, err := zkproofs.NewCiphertextCiphertextEqualityData(args.CurrentKeypair, args.NewPubkey, current.current, fresh, opening, current.before)
	if err != nil {
		return nil, proofError(err)
	}
	log.Debug("Assembled supply rotation proof")
	return &RotateSupplyProofData{Equality: eq, NewSupply: CiphertextFrom(fresh)}, nil
}
