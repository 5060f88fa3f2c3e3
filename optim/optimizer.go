// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim implements optimization algorithms for training
// multiview autoencoder models.
//
// This package provides:
//   - Optimizer interface: zero/step protocol driven by the training core
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - ClipGradNorm: global gradient-norm clipping
//
// Models own one or more optimizers, grouped by parameter family (encoder,
// decoder, discriminator, generator). The trainer zeroes and steps whole
// groups together; the model's backward pass populates parameter gradients
// in between.
//
// Example:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//
//	for epoch := range epochs {
//	    optimizer.ZeroGrad()
//	    // model forward + loss + backward fills parameter gradients
//	    optimizer.Step()
//	}
package optim

import (
	"math"

	"github.com/alawryaguila/multiview-models/nn"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies the stored parameter gradients to the parameters.
	// Parameters whose gradient is nil are skipped.
	Step()

	// ZeroGrad clears every parameter gradient.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32
}

// ClipGradNorm rescales all parameter gradients in place so their combined
// L2 norm does not exceed maxNorm, and returns the norm before clipping.
// Parameters without gradients are ignored.
func ClipGradNorm(params []*nn.Parameter, maxNorm float32) float32 {
	var sq float64
	for _, p := range params {
		g := p.Grad()
		if g == nil {
			continue
		}
		for _, v := range g.Data() {
			sq += float64(v) * float64(v)
		}
	}
	total := float32(math.Sqrt(sq))
	if total <= maxNorm || total == 0 {
		return total
	}

	scale := maxNorm / total
	for _, p := range params {
		g := p.Grad()
		if g == nil {
			continue
		}
		data := g.Data()
		for i := range data {
			data[i] *= scale
		}
	}
	return total
}
