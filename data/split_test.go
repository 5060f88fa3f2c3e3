// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package data_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/alawryaguila/multiview-models/data"
)

func TestSplit_CountsAndCoverage(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		trainSize float64
		wantTrain int
	}{
		{"80/20 of 100", 100, 0.8, 80},
		{"90/10 of 100", 100, 0.9, 90},
		{"rounding up", 7, 0.5, 4},
		{"small fraction", 10, 0.25, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := []*mat.Dense{seqDense(tt.n, 2), seqDense(tt.n, 3)}
			res, err := data.Split(views, nil, tt.trainSize, 42)
			require.NoError(t, err)

			assert.Len(t, res.TrainIdx, tt.wantTrain)
			assert.Len(t, res.ValIdx, tt.n-tt.wantTrain)

			// Disjoint and covering {0, ..., n-1}.
			seen := make(map[int]int)
			for _, i := range res.TrainIdx {
				seen[i]++
			}
			for _, i := range res.ValIdx {
				seen[i]++
			}
			require.Len(t, seen, tt.n)
			for i := 0; i < tt.n; i++ {
				assert.Equal(t, 1, seen[i])
			}

			for v := range views {
				rows, _ := res.TrainViews[v].Dims()
				assert.Equal(t, tt.wantTrain, rows)
				rows, _ = res.ValViews[v].Dims()
				assert.Equal(t, tt.n-tt.wantTrain, rows)
			}
		})
	}
}

func TestSplit_Deterministic(t *testing.T) {
	views := []*mat.Dense{seqDense(50, 2)}

	a, err := data.Split(views, nil, 0.8, 42)
	require.NoError(t, err)
	b, err := data.Split(views, nil, 0.8, 42)
	require.NoError(t, err)
	assert.Equal(t, a.TrainIdx, b.TrainIdx)
	assert.Equal(t, a.ValIdx, b.ValIdx)

	c, err := data.Split(views, nil, 0.8, 7)
	require.NoError(t, err)
	assert.NotEqual(t, a.TrainIdx, c.TrainIdx)
}

func TestSplit_SlicesViewsAndLabelsIdentically(t *testing.T) {
	n := 20
	views := []*mat.Dense{seqDense(n, 1)}
	labels := make([]int64, n)
	for i := range labels {
		labels[i] = int64(i)
	}

	res, err := data.Split(views, labels, 0.75, 42)
	require.NoError(t, err)

	// Row content encodes the original index; label must match it.
	for i, idx := range res.TrainIdx {
		assert.Equal(t, float64(idx), res.TrainViews[0].At(i, 0))
		assert.Equal(t, int64(idx), res.TrainLabels[i])
	}
	for i, idx := range res.ValIdx {
		assert.Equal(t, float64(idx), res.ValViews[0].At(i, 0))
		assert.Equal(t, int64(idx), res.ValLabels[i])
	}
}

func TestSplit_Validation(t *testing.T) {
	views := []*mat.Dense{seqDense(10, 2)}

	_, err := data.Split(nil, nil, 0.8, 42)
	assert.Error(t, err)

	_, err = data.Split(views, nil, 0, 42)
	assert.Error(t, err)

	_, err = data.Split(views, nil, 1, 42)
	assert.Error(t, err)

	_, err = data.Split(views, []int64{1}, 0.8, 42)
	assert.Error(t, err)

	_, err = data.Split([]*mat.Dense{seqDense(10, 2), seqDense(9, 2)}, nil, 0.8, 42)
	assert.Error(t, err)

	// A fraction that would empty one side is rejected.
	_, err = data.Split([]*mat.Dense{seqDense(3, 1)}, nil, 0.95, 42)
	assert.Error(t, err)
}
