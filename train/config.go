// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/alawryaguila/multiview-models/checkpoint"
	"github.com/alawryaguila/multiview-models/history"
)

// LossLogger receives per-epoch loss records from a training run. The
// concrete logger shipped with this module is history.Logger.
type LossLogger interface {
	// OnTrainInit declares the loss field names for the run.
	OnTrainInit(keys []string)
	// OnStepFi appends one record; its key set must match OnTrainInit.
	OnStepFi(record map[string]float32) error
}

// Plotter renders a finished run's loss curves. Optional; wired through
// Config and invoked only when a model is saved.
type Plotter interface {
	PlotLosses(logger LossLogger, title string) error
}

// Config collects every knob of a training run. The zero value is not
// runnable; New applies the documented defaults and validates the rest.
type Config struct {
	// Epochs is the number of training epochs. Required, positive.
	Epochs int

	// BatchSize is the mini-batch size. Zero trains on the whole dataset
	// as a single batch per epoch.
	BatchSize int

	// Validate enables a held-out validation pass after every training
	// epoch, with its own loss logger.
	Validate bool

	// TrainSize is the fraction of samples assigned to the training
	// partition when Validate is set. Defaults to 0.9; must lie strictly
	// between 0 and 1.
	TrainSize float64

	// Seed drives the train/validation shuffle. Defaults to 42.
	Seed int64

	// UseGPU requests the WebGPU device when one is available; training
	// falls back to the CPU silently otherwise.
	UseGPU bool

	// Workers, when positive, prefetches that many batches ahead of the
	// training loop on a background goroutine per view.
	Workers int

	// SaveModel persists the model parameters after the final epoch.
	// Requires the model to implement StateDicter.
	SaveModel bool

	// OutputPath is the directory checkpoints are written to. Empty means
	// a per-model dated directory under the working directory.
	OutputPath string

	// Overwrite decides what happens when the checkpoint file already
	// exists. Defaults to checkpoint.Fail.
	Overwrite checkpoint.Policy

	// MAF holds per-feature minor allele frequencies for models that
	// consume SNP data: one slice per view, in view order, with nil
	// entries for views that need no centring. Required for SNP models
	// and rejected for all others.
	MAF [][]float32

	// Verbose logs every epoch's losses.
	Verbose bool

	// Log is the structured logger used for progress output. Defaults to
	// the logrus standard logger.
	Log logrus.FieldLogger

	// NewLogger constructs the loss loggers for the run. Defaults to
	// history.New.
	NewLogger func() LossLogger

	// Plotter, when set, renders the train (and validation) curves after
	// a successful save.
	Plotter Plotter
}

// withDefaults returns a copy of the config with defaults filled in.
func (c Config) withDefaults() Config {
	if c.TrainSize == 0 {
		c.TrainSize = 0.9
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	if c.NewLogger == nil {
		c.NewLogger = func() LossLogger { return history.New() }
	}
	return c
}

// validate checks the run knobs against each other and the model's fixed
// properties.
func (c Config) validate(model Model) error {
	if model == nil {
		return fmt.Errorf("train: model is nil")
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("train: epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("train: batch size must be non-negative, got %d", c.BatchSize)
	}
	if c.TrainSize <= 0 || c.TrainSize >= 1 {
		return fmt.Errorf("train: train size must lie strictly between 0 and 1, got %v", c.TrainSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("train: workers must be non-negative, got %d", c.Workers)
	}
	info := model.Info()
	if info.SNP && c.MAF == nil {
		return fmt.Errorf("train: model %q consumes SNP views but no MAF values were configured", model.Name())
	}
	if !info.SNP && c.MAF != nil {
		return fmt.Errorf("train: MAF values configured but model %q does not consume SNP views", model.Name())
	}
	if c.SaveModel {
		if _, ok := model.(StateDicter); !ok {
			return fmt.Errorf("train: save requested but model %q does not expose its state", model.Name())
		}
	}
	return nil
}
