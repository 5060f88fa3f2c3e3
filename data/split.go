// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package data

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SplitResult is a train/validation partition applied identically to every
// view and to the label vector.
type SplitResult struct {
	TrainViews []*mat.Dense
	ValViews   []*mat.Dense

	TrainLabels []int64
	ValLabels   []int64

	TrainIdx []int
	ValIdx   []int
}

// Split partitions the sample indices into a training set of size
// round(trainSize * n) and its complement, then slices every view and the
// optional label vector with the same index sets.
//
// The partition is a deterministic function of seed and the sample count;
// reproducibility across runs is a correctness requirement of the training
// core, not an optimisation.
func Split(views []*mat.Dense, labels []int64, trainSize float64, seed int64) (*SplitResult, error) {
	if len(views) == 0 {
		return nil, fmt.Errorf("data: no views supplied")
	}
	if trainSize <= 0 || trainSize >= 1 {
		return nil, fmt.Errorf("data: train size %v outside (0, 1)", trainSize)
	}
	n, _ := views[0].Dims()
	for i, v := range views {
		rows, _ := v.Dims()
		if rows != n {
			return nil, fmt.Errorf("data: view 0 has %d samples but view %d has %d", n, i, rows)
		}
	}
	if labels != nil && len(labels) != n {
		return nil, fmt.Errorf("data: %d labels for %d samples", len(labels), n)
	}

	k := int(math.Round(trainSize * float64(n)))
	if k == 0 || k == n {
		return nil, fmt.Errorf("data: train size %v leaves an empty partition for %d samples", trainSize, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	trainIdx := append([]int(nil), perm[:k]...)
	valIdx := append([]int(nil), perm[k:]...)
	sort.Ints(trainIdx)
	sort.Ints(valIdx)

	res := &SplitResult{TrainIdx: trainIdx, ValIdx: valIdx}
	for _, v := range views {
		res.TrainViews = append(res.TrainViews, sliceRows(v, trainIdx))
		res.ValViews = append(res.ValViews, sliceRows(v, valIdx))
	}
	if labels != nil {
		res.TrainLabels = sliceLabels(labels, trainIdx)
		res.ValLabels = sliceLabels(labels, valIdx)
	}
	return res, nil
}

func sliceRows(d *mat.Dense, idx []int) *mat.Dense {
	_, cols := d.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, row := range idx {
		out.SetRow(i, d.RawRowView(row))
	}
	return out
}

func sliceLabels(labels []int64, idx []int) []int64 {
	out := make([]int64, len(idx))
	for i, row := range idx {
		out[i] = labels[row]
	}
	return out
}
