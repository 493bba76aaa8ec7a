package ctoken

import (
	"fmt"

	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
	"github.com/tos-network/ctoken/crypto/zkproofs"
)

func proofError(err error) error {
	return fmt.Errorf("%w: %v", ErrProofGeneration, err)
}

// decryptMirror opens a decryptable balance mirror.
func decryptMirror(key *authenc.AeKey, mirror authenc.AeCiphertext) (uint64, error) {
	if key == nil {
		return 0, fmt.Errorf("%w: missing AE key", ErrDecryption)
	}
	amount, err := key.Decrypt(mirror)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return amount, nil
}

// balanceChange is the working state of an operation that moves an
// encrypted balance by a known amount: the plaintext balances, the
// homomorphically derived new ciphertext, and the fresh commitment to the
// new balance that the range proof runs on.
type balanceChange struct {
	current *elgamal.Ciphertext
	before  uint64
	after   uint64

	newCT         *elgamal.Ciphertext
	newCommitment *elgamal.Commitment
	newOpening    *elgamal.Opening
}

func openBalance(current Ciphertext, mirror authenc.AeCiphertext, key *authenc.AeKey) (*balanceChange, error) {
	ct, err := current.Decode()
	if err != nil {
		return nil, err
	}
	before, err := decryptMirror(key, mirror)
	if err != nil {
		return nil, err
	}
	return &balanceChange{current: ct, before: before}, nil
}

func (b *balanceChange) commitAfter(after uint64) error {
	b.after = after
	var err error
	if b.newCommitment, b.newOpening, err = elgamal.Commit(after); err != nil {
		return proofError(err)
	}
	return nil
}

// newDebit opens the balance and checks it covers amount.
func newDebit(current Ciphertext, mirror authenc.AeCiphertext, key *authenc.AeKey, amount uint64) (*balanceChange, error) {
	b, err := openBalance(current, mirror, key)
	if err != nil {
		return nil, err
	}
	if amount > b.before {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, b.before, amount)
	}
	if err := b.commitAfter(b.before - amount); err != nil {
		return nil, err
	}
	return b, nil
}

// newCredit opens the balance and checks amount can be added to it.
func newCredit(current Ciphertext, mirror authenc.AeCiphertext, key *authenc.AeKey, amount uint64) (*balanceChange, error) {
	b, err := openBalance(current, mirror, key)
	if err != nil {
		return nil, err
	}
	after := b.before + amount
	if after < b.before {
		return nil, fmt.Errorf("%w: %d + %d overflows", ErrIllegalAmountBitLength, b.before, amount)
	}
	if err := b.commitAfter(after); err != nil {
		return nil, err
	}
	return b, nil
}

// spend derives the new ciphertext as current minus spent.
func (b *balanceChange) spend(backend elgamal.Backend, spent *elgamal.Ciphertext) {
	b.newCT = backend.Sub(b.current, spent)
}

// receive derives the new ciphertext as current plus received.
func (b *balanceChange) receive(backend elgamal.Backend, received *elgamal.Ciphertext) {
	b.newCT = backend.Add(b.current, received)
}

func (b *balanceChange) equalityProof(kp *elgamal.Keypair) (*zkproofs.CiphertextCommitmentEqualityData, error) {
	data, err := zkproofs.NewCiphertextCommitmentEqualityData(kp, b.newCT, b.newCommitment, b.newOpening, b.after)
	if err != nil {
		return nil, proofError(err)
	}
	return data, nil
}

func (b *balanceChange) rangeEntry() rangeEntry {
	return rangeEntry{commitment: b.newCommitment, amount: b.after, bits: RemainingBalanceBits, opening: b.newOpening}
}

func (b *balanceChange) newMirror(key *authenc.AeKey) (authenc.AeCiphertext, error) {
	mirror, err := key.Encrypt(b.after)
	if err != nil {
		return authenc.AeCiphertext{}, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return mirror, nil
}

// splitCiphertext is an amount split into halves, each encrypted once for
// every key in pubkeys under its own fresh opening.
type splitCiphertext struct {
	amount    SplitAmount
	pubkeys   []*elgamal.PublicKey
	lo, hi    *elgamal.GroupedCiphertext
	openingLo *elgamal.Opening
	openingHi *elgamal.Opening
}

func encryptSplit(backend elgamal.Backend, cfg SplitConfig, amount uint64, pubkeys ...*elgamal.PublicKey) (*splitCiphertext, error) {
	split, err := cfg.Split(amount)
	if err != nil {
		return nil, err
	}
	s := &splitCiphertext{amount: split, pubkeys: pubkeys}
	if s.lo, s.openingLo, err = backend.EncryptGrouped(pubkeys, split.Lo); err != nil {
		return nil, proofError(err)
	}
	if s.hi, s.openingHi, err = backend.EncryptGrouped(pubkeys, split.Hi); err != nil {
		return nil, proofError(err)
	}
	return s, nil
}

// views returns the lo and hi ciphertexts as seen by the key at index.
func (s *splitCiphertext) views(backend elgamal.Backend, index int) (*elgamal.Ciphertext, *elgamal.Ciphertext, error) {
	lo, err := backend.ExtractView(s.lo, index)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCiphertextExtraction, err)
	}
	hi, err := backend.ExtractView(s.hi, index)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCiphertextExtraction, err)
	}
	return lo, hi, nil
}

// combinedView returns lo + 2^loBits·hi as seen by the key at index.
func (s *splitCiphertext) combinedView(backend elgamal.Backend, index int) (*elgamal.Ciphertext, error) {
	lo, hi, err := s.views(backend, index)
	if err != nil {
		return nil, err
	}
	return elgamal.CombineLoHiCiphertexts(lo, hi, s.amount.LoBits), nil
}

func (s *splitCiphertext) combinedCommitment() *elgamal.Commitment {
	return elgamal.CombineLoHiCommitments(&s.lo.Commitment, &s.hi.Commitment, s.amount.LoBits)
}

func (s *splitCiphertext) combinedOpening() *elgamal.Opening {
	return elgamal.CombineLoHiOpenings(s.openingLo, s.openingHi, s.amount.LoBits)
}

func (s *splitCiphertext) validityProof() (*zkproofs.BatchedGroupedValidityData, error) {
	data, err := zkproofs.NewBatchedGroupedValidityData(s.pubkeys, s.lo, s.hi, s.amount.Lo, s.amount.Hi, s.openingLo, s.openingHi)
	if err != nil {
		return nil, proofError(err)
	}
	return data, nil
}

func (s *splitCiphertext) rangeEntries() []rangeEntry {
	return []rangeEntry{
		{commitment: &s.lo.Commitment, amount: s.amount.Lo, bits: s.amount.LoBits, opening: s.openingLo},
		{commitment: &s.hi.Commitment, amount: s.amount.Hi, bits: s.amount.HiBits, opening: s.openingHi},
	}
}

type rangeEntry struct {
	commitment *elgamal.Commitment
	amount     uint64
	bits       uint
	opening    *elgamal.Opening
}

// proveRange builds a batched range proof over entries, padding the batch
// with zero commitments up to the next power-of-two total width.
func proveRange(entries ...rangeEntry) (*zkproofs.BatchedRangeProofData, error) {
	widths := make([]uint, len(entries))
	for i, e := range entries {
		widths[i] = e.bits
	}
	for pad := RangePadding(widths...); pad > 0; {
		n := pad
		if n > 64 {
			n = 64
		}
		commitment, opening, err := elgamal.Commit(0)
		if err != nil {
			return nil, proofError(err)
		}
		entries = append(entries, rangeEntry{commitment: commitment, bits: n, opening: opening})
		pad -= n
	}

	var (
		commitments = make([]*elgamal.Commitment, len(entries))
		amounts     = make([]uint64, len(entries))
		bitLengths  = make([]int, len(entries))
		openings    = make([]*elgamal.Opening, len(entries))
		total       int
	)
	for i, e := range entries {
		commitments[i], amounts[i], bitLengths[i], openings[i] = e.commitment, e.amount, int(e.bits), e.opening
		total += int(e.bits)
	}
	var (
		data *zkproofs.BatchedRangeProofData
		err  error
	)
	switch total {
	case 64:
		data, err = zkproofs.NewBatchedRangeProofU64Data(commitments, amounts, bitLengths, openings)
	case 128:
		data, err = zkproofs.NewBatchedRangeProofU128Data(commitments, amounts, bitLengths, openings)
	case 256:
		data, err = zkproofs.NewBatchedRangeProofU256Data(commitments, amounts, bitLengths, openings)
	default:
		return nil, fmt.Errorf("%w: range batch of %d bits", ErrIllegalAmountBitLength, total)
	}
	if err != nil {
		return nil, proofError(err)
	}
	return data, nil
}
