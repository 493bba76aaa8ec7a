package ctoken

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// MaxFeeBasisPoints is a rate of 100%.
	MaxFeeBasisPoints = 10_000

	// maxDelta bounds a claimed fee delta; its complement is range-proved
	// in the same width.
	maxDelta = MaxFeeBasisPoints - 1
)

// FeeQuote is the plaintext result of a fee calculation.
type FeeQuote struct {
	Amount uint64
	// RawFee is ceil(Amount·rate / 10000) before the cap.
	RawFee uint64
	Fee    uint64
	// Delta is RawFee·10000 - Amount·rate, in [0, 9999].
	Delta uint64
	// ClaimedDelta is Delta, or zero when the cap applied.
	ClaimedDelta uint64
	Net          uint64
	Capped       bool
}

// ClaimedComplement is 9999 minus the claimed delta.
func (q FeeQuote) ClaimedComplement() uint64 {
	return maxDelta - q.ClaimedDelta
}

// CalculateFee computes the fee for amount at rateBps, capped at maximumFee.
// The division is not constant time.
func CalculateFee(amount uint64, rateBps uint16, maximumFee uint64) (FeeQuote, error) {
	if rateBps > MaxFeeBasisPoints {
		return FeeQuote{}, fmt.Errorf("%w: rate %d bps", ErrFeeCalculation, rateBps)
	}
	scale := uint256.NewInt(MaxFeeBasisPoints)
	numerator, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), uint256.NewInt(uint64(rateBps)))
	if overflow {
		return FeeQuote{}, fmt.Errorf("%w: amount·rate overflows", ErrFeeCalculation)
	}
	// ceil(numerator / scale)
	raw := new(uint256.Int).Add(numerator, scale)
	raw.SubUint64(raw, 1)
	raw.Div(raw, scale)
	if !raw.IsUint64() {
		return FeeQuote{}, fmt.Errorf("%w: fee overflows", ErrFeeCalculation)
	}
	delta := new(uint256.Int).Mul(raw, scale)
	delta.Sub(delta, numerator)

	q := FeeQuote{
		Amount: amount,
		RawFee: raw.Uint64(),
		Delta:  delta.Uint64(),
	}
	if maximumFee < q.RawFee {
		q.Fee, q.ClaimedDelta, q.Capped = maximumFee, 0, true
	} else {
		q.Fee, q.ClaimedDelta = q.RawFee, q.Delta
	}
	if q.Fee > amount || q.ClaimedDelta > maxDelta {
		return FeeQuote{}, fmt.Errorf("%w: fee %d for amount %d", ErrFeeCalculation, q.Fee, amount)
	}
	q.Net = amount - q.Fee
	return q, nil
}
