package vault

import (
	"math/bits"

	"github.com/holiman/uint256"
)

// mul64 returns the 128-bit product of a and b as (hi, lo).
func mul64(a, b uint64) (hi, lo uint64) {
	return bits.Mul64(a, b)
}

// mulDiv computes floor(a * b / d) with a full-width 256-bit intermediate
// product, so the conversion between base units and shares never loses
// precision to an intermediate rounding step. d must be nonzero.
func mulDiv(a, b, d uint64) uint64 {
	var x, y, q uint256.Int
	x.SetUint64(a)
	y.SetUint64(b)
	x.Mul(&x, &y)
	y.SetUint64(d)
	q.Div(&x, &y)
	// a, b and d are 64-bit and d >= 1, so the quotient fits in 128 bits at
	// most; it fits 64 bits whenever b <= d or a*b < d<<64, which every
	// caller guarantees by converting against a pool the inputs belong to.
	return q.Uint64()
}

// mulDiv3 computes floor(a * b * c / d) with a 256-bit intermediate
// product, so none of the pairwise products needs to fit in 64 bits.
func mulDiv3(a, b, c, d uint64) uint64 {
	var x, y, q uint256.Int
	x.SetUint64(a)
	y.SetUint64(b)
	x.Mul(&x, &y)
	y.SetUint64(c)
	x.Mul(&x, &y)
	y.SetUint64(d)
	q.Div(&x, &y)
	return q.Uint64()
}
