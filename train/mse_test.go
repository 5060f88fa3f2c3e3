// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// addConst returns a copy of d with c added to every element.
func addConst(d *mat.Dense, c float64) *mat.Dense {
	rows, cols := d.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, d.At(i, j)+c)
		}
	}
	return out
}

func TestMSEResultsPerView(t *testing.T) {
	// Identity encode/decode over two views that differ by exactly one:
	// each view reconstructs itself perfectly and the cross cells carry
	// the other view unchanged.
	model := newFakeTrainable(Info{NViews: 2, ZDim: 4}, []int{4, 4})
	model.identity = true
	tr, err := New(model, Standard, quietConfig(Config{Epochs: 1}))
	require.NoError(t, err)

	v0 := denseSeq(6, 4, 0)
	v1 := addConst(v0, 1)
	same, cross, err := tr.MSEResults([]*mat.Dense{v0, v1})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, same, 1e-9)
	assert.InDelta(t, 1.0, cross, 1e-9)
}

func TestMSEResultsJoint(t *testing.T) {
	// A joint identity model copies view 0's input into every
	// reconstruction. With identical views the same-view error is zero;
	// the cross error comes from reconstructing with one input zeroed.
	model := newFakeTrainable(Info{NViews: 2, ZDim: 4, Joint: true}, []int{4, 4})
	model.identity = true
	tr, err := New(model, Standard, quietConfig(Config{Epochs: 1}))
	require.NoError(t, err)

	v0 := denseSeq(4, 4, 1)
	v1 := denseSeq(4, 4, 1)
	same, cross, err := tr.MSEResults([]*mat.Dense{v0, v1})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, same, 1e-9)

	// Masking view 0 zeroes the shared code, so view 0's cross error is
	// the mean square of its values; masking view 1 leaves the code
	// intact and view 1 reconstructs perfectly.
	zero := mat.NewDense(4, 4, nil)
	want := meanSquaredError(zero, v0) / 2
	assert.InDelta(t, want, cross, 1e-6)
}

func TestMSEResultsCrossDecoder(t *testing.T) {
	model := &fakeCross{
		fakeTrainable: *newFakeTrainable(Info{NViews: 2, ZDim: 2}, []int{1, 1}),
	}
	tr, err := New(model, Standard, quietConfig(Config{Epochs: 1}))
	require.NoError(t, err)

	// Single-feature views of constant value 2: the same-view decode
	// reproduces the value, the cross decode negates it.
	v := mat.NewDense(3, 1, []float64{2, 2, 2})
	same, cross, err := tr.MSEResults([]*mat.Dense{v, v})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, same, 1e-9)
	assert.InDelta(t, 16.0, cross, 1e-9)
}

func TestMeanSquaredError(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 2, []float64{1, 2, 3, 6})
	assert.InDelta(t, 1.0, meanSquaredError(a, b), 1e-9)
}
