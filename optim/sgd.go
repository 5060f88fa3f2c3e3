// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/alawryaguila/multiview-models/internal/tensor"
	"github.com/alawryaguila/multiview-models/nn"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter]*tensor.Matrix
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Matrix),
	}
}

// Step applies one gradient-descent update to every parameter that has a
// gradient.
func (s *SGD) Step() {
	for _, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			// Parameter didn't participate in the backward pass.
			continue
		}

		value := param.Value().Data()
		if s.momentum == 0 {
			for i, g := range grad.Data() {
				value[i] -= s.lr * g
			}
			continue
		}

		vel, ok := s.velocities[param]
		if !ok {
			vel = tensor.Zeros(grad.Rows(), grad.Cols())
			s.velocities[param] = vel
		}
		vdata := vel.Data()
		for i, g := range grad.Data() {
			vdata[i] = s.momentum*vdata[i] + g
			value[i] -= s.lr * vdata[i]
		}
	}
}

// ZeroGrad clears all parameter gradients.
func (s *SGD) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// LR returns the learning rate.
func (s *SGD) LR() float32 {
	return s.lr
}
