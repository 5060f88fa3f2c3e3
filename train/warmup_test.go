// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarmupBeta(t *testing.T) {
	w := NewWarmup(1.0, 5)

	assert.Equal(t, float32(0), w.Beta(1))
	assert.InDelta(t, 0.25, w.Beta(2), 1e-6)
	assert.InDelta(t, 0.5, w.Beta(3), 1e-6)
	assert.InDelta(t, 0.75, w.Beta(4), 1e-6)
	assert.Equal(t, float32(1), w.Beta(5))
	assert.Equal(t, float32(1), w.Beta(6))
	assert.Equal(t, float32(0), w.Beta(0))
}

func TestWarmupDisabled(t *testing.T) {
	w := NewWarmup(2.5, 0)
	assert.Equal(t, float32(2.5), w.Beta(1))
	assert.Equal(t, float32(2.5), w.Beta(100))

	w = NewWarmup(2.5, 1)
	assert.Equal(t, float32(2.5), w.Beta(1))
}
