package mathutil

import (
	"errors"
	"math/bits"
)

const (
	// FillScale is the fixed-point scale of the legacy two-branch fill
	// computation.
	FillScale = uint64(100000)
	// MaxSafeAmount is the greatest amount accepted by fill computations.
	// Keeping both factors below it bounds every intermediate product.
	MaxSafeAmount = uint64(1)<<63 - uint64(1)<<31
)

var (
	// ErrDivisionByZero is returned when the requested total is zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is returned when an intermediate product does not fit in
	// the available width.
	ErrOverflow = errors.New("intermediate product overflows")
	// ErrUnsafeAmount is returned when an input exceeds MaxSafeAmount.
	ErrUnsafeAmount = errors.New("amount exceeds max safe value")
)

// FillAmount returns floor(offeredTotal * requestedFill / requestedTotal), the
// amount of offered asset released against requestedFill units of the
// requested asset.
func FillAmount(offeredTotal, requestedTotal, requestedFill uint64) (uint64, error) {
	if offeredTotal > MaxSafeAmount || requestedTotal > MaxSafeAmount ||
		requestedFill > MaxSafeAmount {
		return 0, ErrUnsafeAmount
	}
	if requestedTotal == 0 {
		return 0, ErrDivisionByZero
	}
	out, ok := MulDivFloor(offeredTotal, requestedFill, requestedTotal)
	if !ok {
		return 0, ErrOverflow
	}
	return out, nil
}

// ScaledFillAmount computes the fill output the way fixed-width note scripts
// do: the ratio between the two totals is scaled by FillScale and truncated
// before being applied to requestedFill. Its result can differ from
// FillAmount by a few units in either direction.
func ScaledFillAmount(offeredTotal, requestedTotal, requestedFill uint64) (uint64, error) {
	if offeredTotal == 0 || requestedTotal == 0 {
		return 0, ErrDivisionByZero
	}

	if offeredTotal < requestedTotal {
		scaledRequested, err := mul64(requestedTotal, FillScale)
		if err != nil {
			return 0, err
		}
		ratio := scaledRequested / offeredTotal
		scaledFill, err := mul64(requestedFill, FillScale)
		if err != nil {
			return 0, err
		}
		return scaledFill / ratio, nil
	}

	scaledOffered, err := mul64(offeredTotal, FillScale)
	if err != nil {
		return 0, err
	}
	ratio := scaledOffered / requestedTotal
	product, err := mul64(ratio, requestedFill)
	if err != nil {
		return 0, err
	}
	return product / FillScale, nil
}

// ScaledFillDrift returns the absolute difference between the scaled and the
// exact computation.
func ScaledFillDrift(offeredTotal, requestedTotal, requestedFill uint64) (uint64, error) {
	exact, err := FillAmount(offeredTotal, requestedTotal, requestedFill)
	if err != nil {
		return 0, err
	}
	scaled, err := ScaledFillAmount(offeredTotal, requestedTotal, requestedFill)
	if err != nil {
		return 0, err
	}
	if scaled > exact {
		return scaled - exact, nil
	}
	return exact - scaled, nil
}

func mul64(x, y uint64) (uint64, error) {
	hi, lo := bits.Mul64(x, y)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}
