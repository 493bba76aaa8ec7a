// Package ledger is a reference implementation of the program side of
// confidential tokens: it keeps account and mint state, verifies proof
// bundles from inline proofs or context records, and applies the results.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/core/rawdb"
	"github.com/tos-network/ctoken/crypto/zkproofs"
	"github.com/tos-network/ctoken/ctdb"
)

// Config sets the amount widths the ledger expects proofs to use.
type Config struct {
	Transfer ctoken.SplitConfig `toml:",omitempty"`
	MintBurn ctoken.SplitConfig `toml:",omitempty"`
	Fee      ctoken.FeeConfig   `toml:",omitempty"`

	// MaximumPendingCredits is given to newly configured accounts.
	MaximumPendingCredits uint64 `toml:",omitempty"`
	// AutoApprove marks newly configured accounts approved.
	AutoApprove bool `toml:",omitempty"`
}

// DefaultConfig matches the default assembler configuration.
var DefaultConfig = Config{
	Transfer:              ctoken.TransferSplit,
	MintBurn:              ctoken.MintBurnSplit,
	Fee:                   ctoken.DefaultFeeConfig,
	MaximumPendingCredits: ctoken.DefaultMaximumPendingCredits,
	AutoApprove:           true,
}

func (c Config) transferConfig() ctoken.Config {
	return ctoken.Config{Split: c.Transfer, Fee: c.Fee}
}

// Bundle holds the inline proofs submitted with an operation, by offset.
type Bundle map[int8]zkproofs.ProofData

// Ledger applies confidential token operations to a key-value store.
// Operations on the same accounts are serialized.
type Ledger struct {
	db    ctdb.KeyValueStore
	cfg   Config
	locks *lockSet
}

// Validate checks the configured widths.
func (c Config) Validate() error {
	for _, split := range []ctoken.SplitConfig{c.Transfer, c.MintBurn, c.Fee.Split} {
		if err := split.Validate(); err != nil {
			return err
		}
	}
	if c.Fee.DeltaBits == 0 || c.Fee.NetBits == 0 {
		return fmt.Errorf("%w: fee widths %d/%d", ctoken.ErrIllegalAmountBitLength, c.Fee.DeltaBits, c.Fee.NetBits)
	}
	return nil
}

func New(db ctdb.KeyValueStore, cfg Config) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Ledger{db: db, cfg: cfg, locks: newLockSet()}, nil
}

// ReadAccountState returns the stored state of owner's account for mint.
func (l *Ledger) ReadAccountState(mint, owner common.Address) (*ctoken.AccountState, error) {
	s := rawdb.ReadAccountState(l.db, mint, owner)
	if s == nil {
		return nil, fmt.Errorf("%w: %x/%x", ErrAccountNotFound, mint, owner)
	}
	return s, nil
}

// ReadMintState returns the stored state of mint.
func (l *Ledger) ReadMintState(mint common.Address) (*ctoken.MintState, error) {
	m := rawdb.ReadMintState(l.db, mint)
	if m == nil {
		return nil, fmt.Errorf("%w: %x", ErrMintNotFound, mint)
	}
	return m, nil
}

// ReadContextRecord implements ctoken.ContextReader.
func (l *Ledger) ReadContextRecord(id uuid.UUID) (*ctoken.ContextRecord, error) {
	rec := rawdb.ReadContextRecord(l.db, id)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ctoken.ErrContextRecordNotFound, id)
	}
	return rec, nil
}

// VerifyProof verifies data and returns its context.
func (l *Ledger) VerifyProof(data zkproofs.ProofData) (zkproofs.ProofContext, error) {
	if err := data.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ctoken.ErrProofVerification, data.ProofType(), err)
	}
	return data.Context(), nil
}

func (l *Ledger) context(loc ctoken.ProofLocation, pt zkproofs.ProofType, inline Bundle) (zkproofs.ProofContext, error) {
	return ctoken.VerifyAndExtractContext(loc, pt, inline, l)
}

// rangeProofType is the batched range proof covering the given widths.
func rangeProofType(bitLengths ...uint) zkproofs.ProofType {
	total := ctoken.RangePadding(bitLengths...)
	for _, n := range bitLengths {
		total += n
	}
	switch total {
	case 64:
		return zkproofs.ProofTypeBatchedRangeProofU64
	case 128:
		return zkproofs.ProofTypeBatchedRangeProofU128
	case 256:
		return zkproofs.ProofTypeBatchedRangeProofU256
	}
	return zkproofs.ProofTypeUninitialized
}

// finish records the outcome of an operation.
func finish(op string, err error, ctx ...interface{}) error {
	if err != nil {
		operations.WithLabelValues(op, "rejected").Inc()
		log.Warn("Rejected confidential operation", append([]interface{}{"op", op, "err", err}, ctx...)...)
		return err
	}
	operations.WithLabelValues(op, "applied").Inc()
	log.Debug("Applied confidential operation", append([]interface{}{"op", op}, ctx...)...)
	return nil
}

// lockSet hands out one mutex per record key. Entries are never removed.
type lockSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockSet() *lockSet {
	return &lockSet{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutexes of every distinct key in sorted order and
// returns the function releasing them.
func (s *lockSet) lock(keys ...string) func() {
	set := mapset.NewThreadUnsafeSet()
	for _, k := range keys {
		set.Add(k)
	}
	ordered := make([]string, 0, set.Cardinality())
	for _, k := range set.ToSlice() {
		ordered = append(ordered, k.(string))
	}
	sort.Strings(ordered)

	s.mu.Lock()
	held := make([]*sync.Mutex, len(ordered))
	for i, k := range ordered {
		m, ok := s.locks[k]
		if !ok {
			m = new(sync.Mutex)
			s.locks[k] = m
		}
		held[i] = m
	}
	s.mu.Unlock()

	for _, m := range held {
		m.Lock()
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func mintLockKey(mint common.Address) string {
	return "m" + string(mint.Bytes())
}

func accountLockKey(mint, owner common.Address) string {
	return "a" + string(mint.Bytes()) + string(owner.Bytes())
}
