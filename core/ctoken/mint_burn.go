package ctoken

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

// Handle order of mint and burn amount ciphertexts. The account handle is
// the destination for a mint and the source for a burn.
const (
	AccountHandle = 0
	SupplyHandle  = 1
)

type BurnArgs struct {
	Available            Ciphertext
	DecryptableAvailable authenc.AeCiphertext
	Amount               uint64

	SourceKeypair *elgamal.Keypair
	AeKey         *authenc.AeKey
	SupplyPubkey  *elgamal.PublicKey
	AuditorPubkey *elgamal.PublicKey // nil means no auditor
}

type BurnProofData struct {
	Equality *zkproofs.CiphertextCommitmentEqualityData
	Validity *zkproofs.BatchedGroupedValidityData
	Range    *zkproofs.BatchedRangeProofData

	AuditorLo *elgamal.Ciphertext
	AuditorHi *elgamal.Ciphertext

	NewDecryptableAvailable authenc.AeCiphertext
}

func (b *BurnProofData) Proofs() []zkproofs.ProofData {
	return []zkproofs.ProofData{b.Equality, b.Validity, b.Range}
}

type MintArgs struct {
	Supply            Ciphertext
	DecryptableSupply authenc.AeCiphertext
	Amount            uint64

	SupplyKeypair     *elgamal.Keypair
	SupplyAeKey       *authenc.AeKey
	DestinationPubkey *elgamal.PublicKey
	AuditorPubkey     *elgamal.PublicKey // nil means no auditor
}

type MintProofData struct {
	Equality *zkproofs.CiphertextCommitmentEqualityData
	Validity *zkproofs.BatchedGroupedValidityData
	Range    *zkproofs.BatchedRangeProofData

	AuditorLo *elgamal.Ciphertext
	AuditorHi *elgamal.Ciphertext

	NewDecryptableSupply authenc.AeCiphertext
}

func (m *MintProofData) Proofs() []zkproofs.ProofData {
	return []zkproofs.ProofData{m.Equality, m.Validity, m.Range}
}

// MintBurnAssembler builds the supply-side bundles. Amounts are split with
// the mint-burn widths, so the three range entries already total a power of
// two.
type MintBurnAssembler struct {
	split   SplitConfig
	backend elgamal.Backend
}

func NewMintBurnAssembler(cfg Config) (*MintBurnAssembler, error) {
	if err := cfg.Split.Validate(); err != nil {
		return nil, err
	}
	return &MintBurnAssembler{split: cfg.Split, backend: cfg.backend()}, nil
}

// AssembleBurn debits the source account and encrypts the burnt amount for
// the supply key, so the mint can fold it into its pending burn.
func (a *MintBurnAssembler) AssembleBurn(args BurnArgs) (out *BurnProofData, err error) {
	defer func(start time.Time) { observeAssembly("burn", start, err) }(time.Now())

	if args.SupplyPubkey == nil {
		return nil, fmt.Errorf("%w: missing supply key", ErrMalformedCiphertext)
	}
	amount, err := encryptSplit(a.backend, a.split, args.Amount,
		args.SourceKeypair.Public, args.SupplyPubkey, pubkeyOrZero(args.AuditorPubkey))
	if err != nil {
		return nil, err
	}
	d, err := newDebit(args.Available, args.DecryptableAvailable, args.AeKey, args.Amount)
	if err != nil {
		return nil, err
	}
	spent, err := amount.combinedView(a.backend, AccountHandle)
	if err != nil {
		return nil, err
	}
	d.spend(a.backend, spent)

	out = new(BurnProofData)
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
	log.Debug("Assembled burn proof", "proofs", len(out.Proofs()))
	return out, nil
}

// AssembleMint raises the confidential supply and encrypts the minted
// amount for the destination account's pending balance. The equality proof
// runs on the new supply under the supply keypair.
func (a *MintBurnAssembler) AssembleMint(args MintArgs) (out *MintProofData, err error) {
	defer func(start time.Time) { observeAssembly("mint", start, err) }(time.Now())

	amount, err := encryptSplit(a.backend, a.split, args.Amount,
		args.DestinationPubkey, args.SupplyKeypair.Public, pubkeyOrZero(args.AuditorPubkey))
	if err != nil {
		return nil, err
	}
	s, err := newCredit(args.Supply, args.DecryptableSupply, args.SupplyAeKey, args.Amount)
	if err != nil {
		return nil, err
	}
	minted, err := amount.combinedView(a.backend, SupplyHandle)
	if err != nil {
		return nil, err
	}
	s.receive(a.backend, minted)

	out = new(MintProofData)
	if out.Equality, err = s.equalityProof(args.SupplyKeypair); err != nil {
		return nil, err
	}
	if out.Validity, err = amount.validityProof(); err != nil {
		return nil, err
	}
	if out.AuditorLo, out.AuditorHi, err = amount.views(a.backend, AuditorHandle); err != nil {
		return nil, err
	}
	if out.Range, err = proveRange(append([]rangeEntry{s.rangeEntry()}, amount.rangeEntries()...)...); err != nil {
		return nil, err
	}
	if out.NewDecryptableSupply, err = s.newMirror(args.SupplyAeKey); err != nil {
		return nil, err
	}
	log.Debug("Assembled mint proof", "proofs", len(out.Proofs()))
	return out, nil
}
