// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package mathutil

import (
	"cmp"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Max returns the larger of x and y.
func Max[T cmp.Ordered](x T, y T) T {
	return max(x, y)
}

// Min returns the smaller of x and y.
func Min[T cmp.Ordered](x T, y T) T {
	return min(x, y)
}

// Clamp restricts v to [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// Cap restricts a factor to [0, 1].
func Cap(factor float64) float64 {
	return Clamp(factor, 0, 1)
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// QuadraticMean returns the root mean square, 0 for an empty slice.
func QuadraticMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	squares := make([]float64, len(values))
	for i, v := range values {
		squares[i] = v * v
	}
	return math.Sqrt(stat.Mean(squares, nil))
}

// MeanOfLargest returns the mean of the n largest values. n is clamped to [1, len(values)].
func MeanOfLargest(values []float64, n int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n = Clamp(n, 1, len(sorted))
	return stat.Mean(sorted[len(sorted)-n:], nil)
}
