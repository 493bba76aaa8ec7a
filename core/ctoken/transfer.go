package ctoken

import (
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

// Handle order of a transfer amount ciphertext.
const (
	SourceHandle      = 0
	DestinationHandle = 1
	AuditorHandle     = 2
)

type TransferArgs struct {
	Available            Ciphertext
	DecryptableAvailable authenc.AeCiphertext
	Amount               uint64

	SourceKeypair     *elgamal.Keypair
	AeKey             *authenc.AeKey
	DestinationPubkey *elgamal.PublicKey
	AuditorPubkey     *elgamal.PublicKey // nil means no auditor
}

// TransferProofData is the bundle a transfer is verified against, plus the
// auditor's view of the amount halves that is stored next to it.
type TransferProofData struct {
	Equality *zkproofs.CiphertextCommitmentEqualityData
	Validity *zkproofs.BatchedGroupedValidityData
	Range    *zkproofs.BatchedRangeProofData

	AuditorLo *elgamal.Ciphertext
	AuditorHi *elgamal.Ciphertext

	NewDecryptableAvailable authenc.AeCiphertext
}

func (t *TransferProofData) Proofs() []zkproofs.ProofData {
	return []zkproofs.ProofData{t.Equality, t.Validity, t.Range}
}

type TransferAssembler struct {
	split   SplitConfig
	backend elgamal.Backend
}

func NewTransferAssembler(cfg Config) (*TransferAssembler, error) {
	if err := cfg.Split.Validate(); err != nil {
		return nil, err
	}
	return &TransferAssembler{split: cfg.Split, backend: cfg.backend()}, nil
}

func (a *TransferAssembler) Assemble(args TransferArgs) (out *TransferProofData, err error) {
	defer func(start time.Time) { observeAssembly("transfer", start, err) }(time.Now())

	amount, err := encryptSplit(a.backend, a.split, args.Amount,
		args.SourceKeypair.Public, args.DestinationPubkey, pubkeyOrZero(args.AuditorPubkey))
	if err != nil {
		return nil, err
	}
	d, err := newDebit(args.Available, args.DecryptableAvailable, args.AeKey, args.Amount)
	if err != nil {
		return nil, err
	}
	spent, err := amount.combinedView(a.backend, SourceHandle)
	if err != nil {
		return nil, err
	}
	d.spend(a.backend, spent)

	out = new(TransferProofData)
	if out.Equality, err = d.equalityProof(args.SourceKeypair); err != nil {
		return nil, err
	}
	if out.Validity, err = amount.validityProof(); err != nil {
		return nil, err
	}
	if out.AuditorLo, out.AuditorHi, err = amount.views(a.backend, AuditorHandle); err != nil {
		return nil, err
	}
	if out.Range, err = proveRange(append([]rangeEntry{d.rangeEntry()}, amount.rangeEntries()...)...); err != nil {
		return nil, err
	}
	if out.NewDecryptableAvailable, err = d.newMirror(args.AeKey); err != nil {
		return nil, err
	}
	log.Debug("Assembled transfer proof", "proofs", len(out.Proofs()), "auditor", args.AuditorPubkey != nil)
	return out, nil
}
