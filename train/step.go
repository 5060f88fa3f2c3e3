// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"fmt"

	"github.com/alawryaguila/multiview-models/optim"
)

// stepper runs one batch for a model family, in training or evaluation
// mode. The trainer owns the epoch loop; steppers own the per-batch
// optimisation protocol.
type stepper interface {
	optimiseBatch(b Batch) (Losses, error)
	validateBatch(b Batch) (Losses, error)
}

// standardStepper drives Trainable models: forward, loss, zero, backward,
// step. A positive clipNorm rescales gradients before stepping, which is
// how the supervised family trains.
type standardStepper struct {
	m        Trainable
	clipNorm float32
}

func (s *standardStepper) optimiseBatch(b Batch) (Losses, error) {
	fwd, err := s.m.Forward(b)
	if err != nil {
		return nil, fmt.Errorf("train: forward: %w", err)
	}
	losses, err := s.m.Loss(b, fwd)
	if err != nil {
		return nil, fmt.Errorf("train: loss: %w", err)
	}
	if _, ok := losses.Total(); !ok {
		return nil, fmt.Errorf("train: loss record from %q has no total entry", s.m.Name())
	}
	for _, o := range s.m.Optimizers() {
		o.ZeroGrad()
	}
	if err := s.m.Backward(b, fwd, losses); err != nil {
		return nil, fmt.Errorf("train: backward: %w", err)
	}
	if s.clipNorm > 0 {
		optim.ClipGradNorm(s.m.Parameters(), s.clipNorm)
	}
	for _, o := range s.m.Optimizers() {
		o.Step()
	}
	return losses, nil
}

func (s *standardStepper) validateBatch(b Batch) (Losses, error) {
	fwd, err := s.m.Forward(b)
	if err != nil {
		return nil, fmt.Errorf("train: forward: %w", err)
	}
	losses, err := s.m.Loss(b, fwd)
	if err != nil {
		return nil, fmt.Errorf("train: loss: %w", err)
	}
	return losses, nil
}

// adversarialStepper drives AdversarialModels through the three sub-steps
// of one batch. Each sub-step zeroes and steps only its own optimizer
// group, and a Wasserstein critic has its weights clamped after the
// discriminator step.
type adversarialStepper struct {
	m AdversarialModel
}

func (s *adversarialStepper) optimiseBatch(b Batch) (Losses, error) {
	fwd, err := s.m.ForwardRecon(b)
	if err != nil {
		return nil, fmt.Errorf("train: recon forward: %w", err)
	}
	recon, err := s.m.ReconLoss(b, fwd)
	if err != nil {
		return nil, fmt.Errorf("train: recon loss: %w", err)
	}
	for _, o := range s.m.EncoderOptimizers() {
		o.ZeroGrad()
	}
	for _, o := range s.m.DecoderOptimizers() {
		o.ZeroGrad()
	}
	if err := s.m.BackwardRecon(b, fwd); err != nil {
		return nil, fmt.Errorf("train: recon backward: %w", err)
	}
	for _, o := range s.m.EncoderOptimizers() {
		o.Step()
	}
	for _, o := range s.m.DecoderOptimizers() {
		o.Step()
	}

	fwd, err = s.m.ForwardDiscrim(b)
	if err != nil {
		return nil, fmt.Errorf("train: discriminator forward: %w", err)
	}
	disc, err := s.m.DiscrimLoss(fwd)
	if err != nil {
		return nil, fmt.Errorf("train: discriminator loss: %w", err)
	}
	do := s.m.DiscriminatorOptimizer()
	do.ZeroGrad()
	if err := s.m.BackwardDiscrim(fwd); err != nil {
		return nil, fmt.Errorf("train: discriminator backward: %w", err)
	}
	do.Step()
	if s.m.Wasserstein() {
		for _, p := range s.m.DiscriminatorParameters() {
			p.Clamp(-0.01, 0.01)
		}
	}

	fwd, err = s.m.ForwardGen(b)
	if err != nil {
		return nil, fmt.Errorf("train: generator forward: %w", err)
	}
	gen, err := s.m.GenLoss(fwd)
	if err != nil {
		return nil, fmt.Errorf("train: generator loss: %w", err)
	}
	for _, o := range s.m.GeneratorOptimizers() {
		o.ZeroGrad()
	}
	if err := s.m.BackwardGen(fwd); err != nil {
		return nil, fmt.Errorf("train: generator backward: %w", err)
	}
	for _, o := range s.m.GeneratorOptimizers() {
		o.Step()
	}

	return Losses{"recon": recon, "disc": disc, "gen": gen}, nil
}

func (s *adversarialStepper) validateBatch(b Batch) (Losses, error) {
	fwd, err := s.m.ForwardRecon(b)
	if err != nil {
		return nil, fmt.Errorf("train: recon forward: %w", err)
	}
	recon, err := s.m.ReconLoss(b, fwd)
	if err != nil {
		return nil, fmt.Errorf("train: recon loss: %w", err)
	}
	fwd, err = s.m.ForwardDiscrim(b)
	if err != nil {
		return nil, fmt.Errorf("train: discriminator forward: %w", err)
	}
	disc, err := s.m.DiscrimLoss(fwd)
	if err != nil {
		return nil, fmt.Errorf("train: discriminator loss: %w", err)
	}
	fwd, err = s.m.ForwardGen(b)
	if err != nil {
		return nil, fmt.Errorf("train: generator forward: %w", err)
	}
	gen, err := s.m.GenLoss(fwd)
	if err != nil {
		return nil, fmt.Errorf("train: generator loss: %w", err)
	}
	return Losses{"recon": recon, "disc": disc, "gen": gen}, nil
}
