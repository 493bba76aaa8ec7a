package ctoken

import (
	"fmt"
	"math/bits"
)

// SplitAmount is an amount decomposed as Hi<<LoBits + Lo.
type SplitAmount struct {
	Lo     uint64
	Hi     uint64
	LoBits uint
	HiBits uint
}

// Split decomposes amount into a loBits-wide low half and a hiBits-wide
// high half.
func Split(amount uint64, loBits, hiBits uint) (SplitAmount, error) {
	if loBits == 0 || hiBits == 0 || loBits+hiBits > 64 {
		return SplitAmount{}, fmt.Errorf("%w: widths %d/%d", ErrIllegalAmountBitLength, loBits, hiBits)
	}
	lo := amount & (1<<loBits - 1)
	hi := amount >> loBits
	if hiBits < 64 && hi>>hiBits != 0 {
		return SplitAmount{}, fmt.Errorf("%w: %d exceeds %d bits", ErrIllegalAmountBitLength, amount, loBits+hiBits)
	}
	return SplitAmount{Lo: lo, Hi: hi, LoBits: loBits, HiBits: hiBits}, nil
}

// Combine reassembles the split amount.
func (s SplitAmount) Combine() (uint64, bool) {
	return CombineAmount(s.Lo, s.Hi, s.LoBits)
}

// CombineAmount returns hi<<loBits + lo, or false if either step overflows
// 64 bits.
func CombineAmount(lo, hi uint64, loBits uint) (uint64, bool) {
	if loBits >= 64 {
		if hi != 0 {
			return 0, false
		}
		return lo, true
	}
	if hi != 0 && bits.LeadingZeros64(hi) < int(loBits) {
		return 0, false
	}
	sum, carry := bits.Add64(hi<<loBits, lo, 0)
	if carry != 0 {
		return 0, false
	}
	return sum, true
}

// RangePadding returns the width of the zero commitment that rounds the
// given bit lengths up to a power-of-two total.
func RangePadding(bitLengths ...uint) uint {
	var sum uint
	for _, n := range bitLengths {
		sum += n
	}
	if sum == 0 {
		return 0
	}
	next := uint(1) << bits.Len(sum-1)
	return next - sum
}
