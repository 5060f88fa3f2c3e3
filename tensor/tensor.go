// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor API for multiview-models.
//
// The training core works on dense 2-D float32 matrices shaped
// (samples, features). The public entry points speak gonum's *mat.Dense;
// this package holds the internal representation batches are cut from and
// the device tag batches are staged with.
//
// Example:
//
//	views := mat.NewDense(100, 10, nil)
//	m := tensor.FromDense(views)
//	batch, _ := m.RowWindow(0, 25)
package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/alawryaguila/multiview-models/internal/tensor"
)

// Device represents the compute device a matrix is bound to.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Matrix is a dense row-major 2-D float32 tensor.
type Matrix = tensor.Matrix

// NewMatrix creates a zero-filled matrix of the given shape.
func NewMatrix(rows, cols int) (*Matrix, error) {
	return tensor.NewMatrix(rows, cols)
}

// Zeros creates a zero-filled matrix and panics on an invalid shape.
func Zeros(rows, cols int) *Matrix {
	return tensor.Zeros(rows, cols)
}

// FromSlice creates a matrix backed by a copy of data in row-major order.
func FromSlice(data []float32, rows, cols int) (*Matrix, error) {
	return tensor.FromSlice(data, rows, cols)
}

// FromDense converts a gonum dense matrix into a Matrix.
func FromDense(d *mat.Dense) *Matrix {
	return tensor.FromDense(d)
}
