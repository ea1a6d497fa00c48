package vault

import (
	"math"
	"testing"
)

func TestMulDiv(t *testing.T) {
	cases := []struct {
		a, b, d uint64
		want    uint64
	}{
		{1000, 1000, 1100, 909},
		{1000, 1100, 1000, 1100},
		{1, 1, 1, 1},
		{0, 12345, 678, 0},
		// Intermediate product overflows 64 bits; the result does not.
		{math.MaxUint64, 3, 6, math.MaxUint64 / 2},
		{math.MaxUint64 / 2, 4, 2, math.MaxUint64 - 1},
		{1 << 62, 1 << 2, 1 << 2, 1 << 62},
	}
	for _, c := range cases {
		if got := mulDiv(c.a, c.b, c.d); got != c.want {
			t.Errorf("mulDiv(%d, %d, %d) = %d, want %d", c.a, c.b, c.d, got, c.want)
		}
	}
}

func TestMulDiv3(t *testing.T) {
	cases := []struct {
		a, b, c, d uint64
		want       uint64
	}{
		{100, 3600, 300, 400, 270_000},
		{10, 30, 50, 50, 300},
		// a*b alone overflows 64 bits.
		{1 << 40, 1 << 30, 1, 1 << 10, 1 << 60},
		{1 << 40, 1 << 25, 1, 256, 1 << 57},
		{0, 1, 1, 1, 0},
	}
	for _, c := range cases {
		if got := mulDiv3(c.a, c.b, c.c, c.d); got != c.want {
			t.Errorf("mulDiv3(%d, %d, %d, %d) = %d, want %d", c.a, c.b, c.c, c.d, got, c.want)
		}
	}
}

func TestRateCmp(t *testing.T) {
	cases := []struct {
		a, b Rate
		want int
	}{
		{Rate{1100, 1000}, Rate{1100, 1000}, 0},
		{Rate{11, 10}, Rate{1100, 1000}, 0}, // equal as rationals
		{Rate{1000, 1000}, Rate{1100, 1000}, -1},
		{Rate{1200, 1000}, Rate{1100, 1000}, 1},
		// Products overflow 64 bits.
		{Rate{math.MaxUint64, 3}, Rate{math.MaxUint64, 4}, 1},
	}
	for _, c := range cases {
		if got := c.a.Cmp(c.b); got != c.want {
			t.Errorf("(%s).Cmp(%s) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestRateFloat(t *testing.T) {
	r := Rate{Base: 1100, Shares: 1000}
	if got := r.Float(); got != 1.1 {
		t.Errorf("Float() = %f, want 1.1", got)
	}
	if got := (Rate{}).Float(); got != 0 {
		t.Errorf("empty rate Float() = %f, want 0", got)
	}
	if !(Rate{}).IsZero() {
		t.Error("empty rate should be zero")
	}
}
