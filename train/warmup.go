// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

// Warmup linearly ramps a loss weight from zero to its target over the
// first epochs of a run. Models hold one per warmed coefficient and read
// it from SetEpoch.
type Warmup struct {
	target float32
	epochs int
}

// NewWarmup builds a schedule that reaches target at epoch epochs. A
// non-positive epoch count disables the ramp; the target applies from the
// first epoch.
func NewWarmup(target float32, epochs int) *Warmup {
	return &Warmup{target: target, epochs: epochs}
}

// Beta returns the weight for a 1-based epoch: zero at epoch 1, the
// target from the final warmup epoch on.
func (w *Warmup) Beta(epoch int) float32 {
	if w.epochs <= 1 || epoch >= w.epochs {
		return w.target
	}
	if epoch < 1 {
		return 0
	}
	return w.target * float32(epoch-1) / float32(w.epochs-1)
}
