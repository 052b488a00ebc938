// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Cap(-0.5))
	assert.Equal(t, 1.0, Cap(1.5))
	assert.Equal(t, 0.25, Cap(0.25))
	assert.Equal(t, 3, Clamp(7, 1, 3))
}

func TestMeans(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.InDelta(t, math.Sqrt(12.5), QuadraticMean([]float64{3, 4}), 1e-9)
	assert.Equal(t, 0.0, QuadraticMean(nil))
}

func TestMeanOfLargest(t *testing.T) {
	values := []float64{10, 40, 20, 30}
	assert.Equal(t, 35.0, MeanOfLargest(values, 2))
	assert.Equal(t, 40.0, MeanOfLargest(values, 0))
	assert.Equal(t, 25.0, MeanOfLargest(values, 10))
	assert.Equal(t, []float64{10, 40, 20, 30}, values)
}
