package ctoken

import (
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

type WithdrawArgs struct {
	Available            Ciphertext
	DecryptableAvailable authenc.AeCiphertext
	Amount               uint64
	Keypair              *elgamal.Keypair
	AeKey                *authenc.AeKey
}

// WithdrawProofData is the bundle a withdraw is verified against.
type WithdrawProofData struct {
	Equality *zkproofs.CiphertextCommitmentEqualityData
	Range    *zkproofs.BatchedRangeProofData

	NewDecryptableAvailable authenc.AeCiphertext
}

func (w *WithdrawProofData) Proofs() []zkproofs.ProofData {
	return []zkproofs.ProofData{w.Equality, w.Range}
}

type WithdrawAssembler struct {
	backend elgamal.Backend
}

func NewWithdrawAssembler(cfg Config) *WithdrawAssembler {
	return &WithdrawAssembler{backend: cfg.backend()}
}

// Assemble proves that Available minus Amount is a non-negative balance.
// Amount is subtracted as a zero-randomness encoding, so no amount
// ciphertext travels with the bundle.
func (a *WithdrawAssembler) Assemble(args WithdrawArgs) (out *WithdrawProofData, err error) {
	defer func(start time.Time) { observeAssembly("withdraw", start, err) }(time.Now())

	d, err := newDebit(args.Available, args.DecryptableAvailable, args.AeKey, args.Amount)
	if err != nil {
		return nil, err
	}
	d.spend(a.backend, elgamal.EncodeAmount(args.Amount))

	out = new(WithdrawProofData)
	if out.Equality, err = d.equalityProof(args.Keypair); err != nil {
		return nil, err
	}
	if out.Range, err = proveRange(d.rangeEntry()); err != nil {
		return nil, err
	}
	if out.NewDecryptableAvailable, err = d.newMirror(args.AeKey); err != nil {
		return nil, err
	}
	log.Debug("Assembled withdraw proof", "proofs", len(out.Proofs()))
	return out, nil
}
