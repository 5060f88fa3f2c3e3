// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn holds the trainable-parameter type shared by model
// implementations and the optimizers.
//
// Encoder and decoder architectures themselves are external collaborators;
// the training core only needs a handle on their parameters to zero, clip,
// clamp and step them.
package nn

import (
	"github.com/alawryaguila/multiview-models/internal/tensor"
)

// Parameter represents a trainable parameter.
//
// Parameters hold their current value and, between a model's backward pass
// and the optimizer step, the gradient of the total loss with respect to the
// value. The gradient is nil until the first backward pass.
type Parameter struct {
	name  string
	value *tensor.Matrix
	grad  *tensor.Matrix
}

// NewParameter creates a new trainable parameter.
//
// The value matrix should be initialized before the Parameter is created.
func NewParameter(name string, value *tensor.Matrix) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
	}
}

// Name returns the parameter name (e.g., "encoder0.weight").
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter value matrix.
func (p *Parameter) Value() *tensor.Matrix {
	return p.value
}

// Grad returns the gradient matrix, or nil before the first backward pass.
func (p *Parameter) Grad() *tensor.Matrix {
	return p.grad
}

// SetGrad replaces the gradient matrix.
// Called by model backward passes.
func (p *Parameter) SetGrad(grad *tensor.Matrix) {
	p.grad = grad
}

// AccumGrad adds grad to the stored gradient, allocating it if unset.
// Shapes must match the parameter value.
func (p *Parameter) AccumGrad(grad *tensor.Matrix) {
	if p.grad == nil {
		p.grad = grad.Clone()
		return
	}
	dst := p.grad.Data()
	for i, v := range grad.Data() {
		dst[i] += v
	}
}

// ZeroGrad clears the gradient.
//
// Optimizers call this before each backward pass so gradients from previous
// iterations do not accumulate.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}

// Clamp limits every element of the parameter value to [lo, hi], in place.
// Used for the Wasserstein critic weight constraint.
func (p *Parameter) Clamp(lo, hi float32) {
	data := p.value.Data()
	for i, v := range data {
		if v < lo {
			data[i] = lo
		} else if v > hi {
			data[i] = hi
		}
	}
}
