package vault

import "fmt"

// Rate is a vault's exchange rate as an exact rational: Base units held per
// Shares outstanding. It is derived state, never stored rounded.
type Rate struct {
	Base   uint64 `json:"base"`
	Shares uint64 `json:"shares"`
}

// IsZero reports whether the vault is empty (no shares outstanding).
func (r Rate) IsZero() bool { return r.Shares == 0 }

// Cmp compares two rates as rationals: -1 if r < other, 0 if equal, +1 if
// r > other. Empty rates compare as zero.
func (r Rate) Cmp(other Rate) int {
	// Compare a/b vs c/d as a*d vs c*b in 128 bits.
	left := cross(r.Base, other.Shares)
	right := cross(other.Base, r.Shares)
	switch {
	case left.less(right):
		return -1
	case right.less(left):
		return 1
	default:
		return 0
	}
}

// Float returns the rate as a float64 for display only.
func (r Rate) Float() float64 {
	if r.Shares == 0 {
		return 0
	}
	return float64(r.Base) / float64(r.Shares)
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%d", r.Base, r.Shares)
}

// wide is a 128-bit product used for rate comparison.
type wide struct{ hi, lo uint64 }

func cross(a, b uint64) wide {
	hi, lo := mul64(a, b)
	return wide{hi, lo}
}

func (w wide) less(o wide) bool {
	if w.hi != o.hi {
		return w.hi < o.hi
	}
	return w.lo < o.lo
}
