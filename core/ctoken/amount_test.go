package ctoken

import (
	"errors"
	"math"
	"testing"
)

func TestSplitCombine(t *testing.T) {
	tests := []struct {
		amount         uint64
		loBits, hiBits uint
		lo, hi         uint64
	}{
		{0, 16, 32, 0, 0},
		{1, 16, 32, 1, 0},
		{0xFFFF, 16, 32, 0xFFFF, 0},
		{0x10000, 16, 32, 0, 1},
		{1<<48 - 1, 16, 32, 0xFFFF, 0xFFFF_FFFF},
		{1<<64 - 1, 16, 48, 0xFFFF, 1<<48 - 1},
		{123_456_789, 16, 48, 123_456_789 & 0xFFFF, 123_456_789 >> 16},
	}
	for _, tt := range tests {
		s, err := Split(tt.amount, tt.loBits, tt.hiBits)
		if err != nil {
			t.Fatalf("split %d: %v", tt.amount, err)
		}
		if s.Lo != tt.lo || s.Hi != tt.hi {
			t.Fatalf("split %d: got %d/%d want %d/%d", tt.amount, s.Lo, s.Hi, tt.lo, tt.hi)
		}
		back, ok := s.Combine()
		if !ok || back != tt.amount {
			t.Fatalf("combine %d: got %d, %v", tt.amount, back, ok)
		}
	}
}

func TestSplitRejectsWideAmount(t *testing.T) {
	if _, err := Split(1<<48, 16, 32); !errors.Is(err, ErrIllegalAmountBitLength) {
		t.Fatalf("expected ErrIllegalAmountBitLength, got %v", err)
	}
	if _, err := Split(1, 0, 32); !errors.Is(err, ErrIllegalAmountBitLength) {
		t.Fatalf("zero lo width: got %v", err)
	}
	if _, err := Split(1, 32, 33); !errors.Is(err, ErrIllegalAmountBitLength) {
		t.Fatalf("65-bit split: got %v", err)
	}
}

func TestCombineAmountBoundaries(t *testing.T) {
	if got, ok := CombineAmount(0xFFFF, 0xFFFF_FFFF_FFFE, 16); !ok || got != 0xFFFF_FFFF_FFFE_FFFF {
		t.Fatalf("combine near max: got %x, %v", got, ok)
	}
	if _, ok := CombineAmount(math.MaxUint64, 1, 16); ok {
		t.Fatal("expected overflow when adding lo")
	}
	if _, ok := CombineAmount(0, 1<<48, 16); ok {
		t.Fatal("expected overflow when shifting hi")
	}
	if got, ok := CombineAmount(7, 0, 64); !ok || got != 7 {
		t.Fatalf("full-width lo: got %d, %v", got, ok)
	}
}

func TestRangePadding(t *testing.T) {
	tests := []struct {
		widths []uint
		want   uint
	}{
		{[]uint{64}, 0},
		{[]uint{64, 16, 32}, 16},
		{[]uint{64, 16, 48}, 0},
		{[]uint{64, 16, 32, 16, 16, 16, 32, 64}, 0},
		{[]uint{64, 1}, 63},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := RangePadding(tt.widths...); got != tt.want {
			t.Fatalf("padding %v: got %d want %d", tt.widths, got, tt.want)
		}
	}
}

func TestSplitConfigValidate(t *testing.T) {
	for _, cfg := range []SplitConfig{TransferSplit, MintBurnSplit} {
		if err := cfg.Validate(); err != nil {
			t.Fatalf("%+v: %v", cfg, err)
		}
	}
	if err := (SplitConfig{LoBits: 40, HiBits: 40}).Validate(); !errors.Is(err, ErrIllegalAmountBitLength) {
		t.Fatalf("expected ErrIllegalAmountBitLength, got %v", err)
	}
}
