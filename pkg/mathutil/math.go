package mathutil

import (
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.DivisionPrecision = 8
}

// Div takes two uint64 numbers and divides them x / y and returns the result as decimal.Decimal
func Div(x, y uint64) (z decimal.Decimal) {
	X, Y := decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0), decimal.NewFromBigInt(new(big.Int).SetUint64(y), 0)
	z = DivDecimal(X, Y)
	return
}

// DivDecimal takes two decimal.Decimal numbers and divides them x / y and returns the result as decimal.Decimal
func DivDecimal(X, Y decimal.Decimal) (z decimal.Decimal) {
	z = X.Div(Y)
	return
}

// MulDivFloor returns floor(x * y / z) computed over a 128-bit intermediate
// product. ok is false if z is zero or if the result does not fit in 64 bits.
func MulDivFloor(x, y, z uint64) (res uint64, ok bool) {
	if z == 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(x, y)
	if hi >= z {
		return 0, false
	}
	res, _ = bits.Div64(hi, lo, z)
	return res, true
}

// CmpMul compares the products a * b and c * d without overflow, returning
// -1, 0 or +1 like big.Int.Cmp.
func CmpMul(a, b, c, d uint64) int {
	hi1, lo1 := bits.Mul64(a, b)
	hi2, lo2 := bits.Mul64(c, d)
	switch {
	case hi1 < hi2:
		return -1
	case hi1 > hi2:
		return 1
	case lo1 < lo2:
		return -1
	case lo1 > lo2:
		return 1
	}
	return 0
}
