// Package balancetracker keeps a client-side snapshot of a decrypted
// confidential balance and checks that successive snapshots move forward.
package balancetracker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/tos-network/ctoken/core/ctoken"
	"github.com/tos-network/ctoken/crypto/authenc"
	"github.com/tos-network/ctoken/crypto/elgamal"
)

// ErrMirrorMismatch is returned when the decryptable balance does not
// match the available balance ciphertext.
var ErrMirrorMismatch = errors.New("balancetracker: decryptable balance does not match ciphertext")

type State struct {
	Mint           string        `json:"mint"`
	Owner          string        `json:"owner"`
	Available      uint64        `json:"available"`
	Pending        uint64        `json:"pending"`
	PendingCredits uint64        `json:"pendingCredits"`
	Ciphertext     hexutil.Bytes `json:"availableCiphertext"`
	Sequence       uint64        `json:"sequence"`
	UpdatedAt      string        `json:"updatedAt"`
}

// Snapshot decrypts the balances of s. The available balance is read from
// the decryptable mirror and checked against the ciphertext, which needs a
// single scalar multiplication instead of a discrete log.
func Snapshot(mint, owner common.Address, s *ctoken.AccountState, secret *elgamal.SecretKey, key *authenc.AeKey, sequence uint64) (State, error) {
	available, err := key.Decrypt(s.DecryptableAvailable)
	if err != nil {
		return State{}, fmt.Errorf("decrypt mirror: %w", err)
	}
	ct, err := s.Available.Decode()
	if err != nil {
		return State{}, err
	}
	if !secret.DecryptToPoint(ct).Equals(secret.DecryptToPoint(elgamal.EncodeAmount(available))) {
		return State{}, fmt.Errorf("%w: mirror says %d", ErrMirrorMismatch, available)
	}
	pending, err := s.PendingBalance(secret)
	if err != nil {
		return State{}, err
	}
	return State{
		Mint:           mint.Hex(),
		Owner:          owner.Hex(),
		Available:      available,
		Pending:        pending,
		PendingCredits: s.PendingCreditCounter,
		Ciphertext:     s.Available.Bytes(),
		Sequence:       sequence,
	}, nil
}

func Load(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out State
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode tracker state: %w", err)
	}
	return &out, nil
}

// Validate checks that curr can follow prev. A sequence that moves
// backward is refused unless allowRollback is set.
func Validate(prev *State, curr State, allowRollback bool) error {
	if prev == nil {
		return nil
	}
	if prev.Mint != "" && !strings.EqualFold(prev.Mint, curr.Mint) {
		return fmt.Errorf("tracker mint mismatch: file=%s ledger=%s", prev.Mint, curr.Mint)
	}
	if prev.Owner != "" && !strings.EqualFold(prev.Owner, curr.Owner) {
		return fmt.Errorf("tracker owner mismatch: file=%s ledger=%s", prev.Owner, curr.Owner)
	}
	if curr.Sequence < prev.Sequence {
		if allowRollback {
			return nil
		}
		return fmt.Errorf("sequence moved backward %d -> %d (use --track-accept-rollback to accept)", prev.Sequence, curr.Sequence)
	}
	if curr.Sequence == prev.Sequence && !bytes.Equal(curr.Ciphertext, prev.Ciphertext) {
		return fmt.Errorf("balance changed at sequence %d without the sequence advancing", curr.Sequence)
	}
	return nil
}

func Save(path string, curr State) error {
	curr.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	raw, err := json.MarshalIndent(curr, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
