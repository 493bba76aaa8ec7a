package ctoken

import (
	"fmt"

	"github.com/tos-network/ctoken/crypto/elgamal"
)

// RemainingBalanceBits bounds every remaining-balance range proof.
const RemainingBalanceBits = 64

// SplitConfig sets the low and high widths an operation family splits
// amounts into.
type SplitConfig struct {
	LoBits uint `toml:",omitempty"`
	HiBits uint `toml:",omitempty"`
}

var (
	// TransferSplit covers transfers, deposits, and transfer fees.
	TransferSplit = SplitConfig{LoBits: 16, HiBits: 32}

	// MintBurnSplit covers confidential mint and burn amounts.
	MintBurnSplit = SplitConfig{LoBits: 16, HiBits: 48}
)

func (c SplitConfig) Validate() error {
	if c.LoBits == 0 || c.HiBits == 0 || c.LoBits+c.HiBits > 64 {
		return fmt.Errorf("%w: widths %d/%d", ErrIllegalAmountBitLength, c.LoBits, c.HiBits)
	}
	return nil
}

func (c SplitConfig) Split(amount uint64) (SplitAmount, error) {
	return Split(amount, c.LoBits, c.HiBits)
}

// FeeConfig sets the widths used by transfer-with-fee proofs.
type FeeConfig struct {
	Split     SplitConfig `toml:",omitempty"`
	DeltaBits uint        `toml:",omitempty"`
	NetBits   uint        `toml:",omitempty"`
}

var DefaultFeeConfig = FeeConfig{
	Split:     TransferSplit,
	DeltaBits: 16,
	NetBits:   64,
}

// Config is what an assembler is constructed with.
type Config struct {
	Split   SplitConfig
	Fee     FeeConfig
	Backend elgamal.Backend
}

func (c Config) backend() elgamal.Backend {
	if c.Backend == nil {
		return elgamal.DefaultBackend()
	}
	return c.Backend
}

// DefaultTransferConfig is the configuration used for transfers.
func DefaultTransferConfig() Config {
	return Config{Split: TransferSplit, Fee: DefaultFeeConfig}
}

// DefaultMintBurnConfig is the configuration used for mint and burn.
func DefaultMintBurnConfig() Config {
	return Config{Split: MintBurnSplit}
}
