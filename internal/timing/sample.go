package timing

import (
	"fmt"
	"math"
)

// SampleIndices picks k indices spread evenly over [0, n-1]. The first and
// last index are always kept when k >= 2. With k > n indices repeat.
func SampleIndices(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	if k == 1 {
		return []int{0}
	}
	idx := make([]int, k)
	for i := 0; i < k; i++ {
		idx[i] = int(math.RoundToEven(float64(i) * float64(n-1) / float64(k-1)))
	}
	return idx
}

// SampleEvenly returns k elements of seq chosen by SampleIndices.
func SampleEvenly[T any](seq []T, k int) ([]T, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: no items to sample", ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: sample size %d", ErrInvalidInput, k)
	}

	idx := SampleIndices(len(seq), k)
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = seq[j]
	}
	return out, nil
}
