// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MSEResults reports the mean squared reconstruction error of the model
// over the given views, split into the same-view error (each view from
// its own or the shared code) and the cross-view error (each view from
// the other views' information). Both are averaged over views.
//
// For joint-representation models the cross error is measured by zeroing
// one view's input at a time and reconstructing it from the rest.
func (t *Trainer) MSEResults(views []*mat.Dense) (same, cross float64, err error) {
	rec, err := t.PredictReconstruction(views)
	if err != nil {
		return 0, 0, err
	}
	nv := float64(len(views))

	switch {
	case rec.Cross != nil:
		for i, v := range views {
			same += meanSquaredError(rec.Views[i][0], v)
			cross += meanSquaredError(rec.Cross[i], v)
		}
		return same / nv, cross / nv, nil

	case len(views) > 1 && len(rec.Views[0]) == len(views):
		for i, v := range views {
			for j := range rec.Views[i] {
				e := meanSquaredError(rec.Views[i][j], v)
				if i == j {
					same += e
				} else {
					cross += e
				}
			}
		}
		return same / nv, cross / nv, nil

	default:
		for i, v := range views {
			same += meanSquaredError(rec.Views[i][0], v)
		}
		// Shared-code cross error: reconstruct each view with its own
		// input removed.
		for i, v := range views {
			masked := make([]*mat.Dense, len(views))
			for j, w := range views {
				if j == i {
					r, c := w.Dims()
					masked[j] = mat.NewDense(r, c, nil)
				} else {
					masked[j] = w
				}
			}
			mrec, err := t.PredictReconstruction(masked)
			if err != nil {
				return 0, 0, fmt.Errorf("train: masked reconstruction of view %d: %w", i, err)
			}
			cross += meanSquaredError(mrec.Views[i][0], v)
		}
		return same / nv, cross / nv, nil
	}
}

// meanSquaredError is the elementwise mean of (a-b)^2. Shapes must match;
// prediction output always matches its input by construction.
func meanSquaredError(a, b *mat.Dense) float64 {
	rows, cols := a.Dims()
	var diff mat.Dense
	diff.Sub(a, b)
	raw := diff.RawMatrix().Data
	return floats.Dot(raw, raw) / float64(rows*cols)
}
