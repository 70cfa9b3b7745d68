package mathutil

import (
	"errors"
	"fmt"
	"math/rand"
)

const (
	// MinDistributionValue is the smallest element of a random distribution.
	MinDistributionValue = 10
	// MaxDistributionValue is the greatest element of a random distribution.
	MaxDistributionValue = 20
)

var ErrInvalidDistribution = errors.New("invalid distribution")

// RandomDistribution splits total into n values in the range
// [MinDistributionValue, MaxDistributionValue] that sum up to total. The
// total must be reachable, ie. between n*MinDistributionValue and
// n*MaxDistributionValue.
func RandomDistribution(rng *rand.Rand, n int, total uint64) ([]uint64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: number of values must be positive", ErrInvalidDistribution)
	}
	totalMin := uint64(n) * MinDistributionValue
	totalMax := uint64(n) * MaxDistributionValue
	if total < totalMin || total > totalMax {
		return nil, fmt.Errorf(
			"%w: total must be between %d and %d for %d values between %d and %d",
			ErrInvalidDistribution, totalMin, totalMax, n,
			MinDistributionValue, MaxDistributionValue,
		)
	}

	res := make([]uint64, n)
	for i := range res {
		res[i] = MinDistributionValue
	}
	remaining := total - totalMin
	for remaining > 0 {
		for i := range res {
			if remaining == 0 {
				break
			}
			maxIncrement := MaxDistributionValue - res[i]
			if maxIncrement == 0 {
				continue
			}
			if remaining < maxIncrement {
				maxIncrement = remaining
			}
			increment := 1 + uint64(rng.Int63n(int64(maxIncrement)))
			res[i] += increment
			remaining -= increment
		}
	}

	rng.Shuffle(n, func(i, j int) { res[i], res[j] = res[j], res[i] })
	return res, nil
}
