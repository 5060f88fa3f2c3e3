// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package history_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alawryaguila/multiview-models/history"
)

func TestLogger_AppendsSeries(t *testing.T) {
	l := history.New()
	l.OnTrainInit([]string{"loss", "kl", "ll"})

	require.NoError(t, l.OnStepFi(map[string]float32{"loss": 1, "kl": 0.5, "ll": -0.5}))
	require.NoError(t, l.OnStepFi(map[string]float32{"loss": 0.8, "kl": 0.4, "ll": -0.4}))

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []string{"loss", "kl", "ll"}, l.Keys())
	assert.Equal(t, []float32{1, 0.8}, l.Series("loss"))
	assert.Equal(t, []float32{0.5, 0.4}, l.Series("kl"))
}

func TestLogger_RejectsMismatchedRecord(t *testing.T) {
	l := history.New()
	l.OnTrainInit([]string{"recon", "disc", "gen"})

	assert.Error(t, l.OnStepFi(map[string]float32{"recon": 1, "disc": 2}))
	assert.Error(t, l.OnStepFi(map[string]float32{"recon": 1, "disc": 2, "other": 3}))
}

func TestLogger_StepBeforeInit(t *testing.T) {
	l := history.New()
	assert.Error(t, l.OnStepFi(map[string]float32{"loss": 1}))
}

func TestLogger_WriteCSV(t *testing.T) {
	l := history.New()
	l.OnTrainInit([]string{"loss"})
	require.NoError(t, l.OnStepFi(map[string]float32{"loss": 0.5}))
	require.NoError(t, l.OnStepFi(map[string]float32{"loss": 0.25}))

	var buf bytes.Buffer
	require.NoError(t, l.WriteCSV(&buf))
	assert.Equal(t, "epoch,loss\n1,0.5\n2,0.25\n", buf.String())
}
