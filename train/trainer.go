// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/alawryaguila/multiview-models/backend/cpu"
	"github.com/alawryaguila/multiview-models/backend/webgpu"
	"github.com/alawryaguila/multiview-models/checkpoint"
	"github.com/alawryaguila/multiview-models/data"
	"github.com/alawryaguila/multiview-models/internal/tensor"
)

// Trainer drives a model through training, validation, prediction and
// persistence. Construct one with New; a Trainer is not safe for
// concurrent use.
type Trainer struct {
	model  Model
	family Family
	cfg    Config
	step   stepper
	log    logrus.FieldLogger

	// valLogger holds the validation losses of the last Fit when the run
	// had a validation pass.
	valLogger LossLogger

	// lastSplit holds the train/validation partition of the last Fit, so
	// callers can run prediction over the exact held-out samples.
	lastSplit *data.SplitResult
}

// New builds a Trainer for one model under one family protocol. The model
// must implement the capability interface its family trains through:
// Trainable for Standard, CCA and Supervised, AdversarialModel for
// Adversarial.
func New(model Model, family Family, cfg Config) (*Trainer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(model); err != nil {
		return nil, err
	}

	var step stepper
	switch family {
	case Standard, CCA:
		m, ok := model.(Trainable)
		if !ok {
			return nil, fmt.Errorf("train: %s family requires a Trainable model, %q is not one", family, model.Name())
		}
		step = &standardStepper{m: m}
	case Supervised:
		m, ok := model.(Trainable)
		if !ok {
			return nil, fmt.Errorf("train: %s family requires a Trainable model, %q is not one", family, model.Name())
		}
		step = &standardStepper{m: m, clipNorm: supervisedClipNorm}
	case Adversarial:
		m, ok := model.(AdversarialModel)
		if !ok {
			return nil, fmt.Errorf("train: %s family requires an AdversarialModel, %q is not one", family, model.Name())
		}
		step = &adversarialStepper{m: m}
	default:
		return nil, fmt.Errorf("train: unknown family %d", family)
	}

	return &Trainer{
		model:  model,
		family: family,
		cfg:    cfg,
		step:   step,
		log:    cfg.Log.WithField("model", model.Name()),
	}, nil
}

// Gradient norms of supervised models are clipped to this before each
// optimizer step.
const supervisedClipNorm = 0.5

// Model returns the trained model.
func (t *Trainer) Model() Model { return t.model }

// Family returns the training protocol in use.
func (t *Trainer) Family() Family { return t.family }

// ValidationLogger returns the validation losses of the last Fit, or nil
// when the run had no validation pass.
func (t *Trainer) ValidationLogger() LossLogger { return t.valLogger }

// LastSplit returns the train/validation partition of the last Fit, or nil
// when the run had no validation pass. The held-out views it carries are
// what validation-set prediction should run over.
func (t *Trainer) LastSplit() *data.SplitResult { return t.lastSplit }

// Fit trains the model over the configured number of epochs and returns
// the training loss logger, one record per epoch. Views share a leading
// sample dimension; labels are required for the supervised family and
// must match it. When validation is configured the data is split first
// and the validation losses are kept on ValidationLogger.
func (t *Trainer) Fit(views []*mat.Dense, labels []int64) (LossLogger, error) {
	if t.family == Supervised && labels == nil {
		return nil, fmt.Errorf("train: %s family requires labels", t.family)
	}

	device, release := t.acquireDevice()
	defer release()

	trainViews, trainLabels := views, labels
	var valViews []*mat.Dense
	var valLabels []int64
	t.lastSplit = nil
	if t.cfg.Validate {
		res, err := data.Split(views, labels, t.cfg.TrainSize, t.cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("train: split: %w", err)
		}
		trainViews, trainLabels = res.TrainViews, res.TrainLabels
		valViews, valLabels = res.ValViews, res.ValLabels
		t.lastSplit = res
	}

	gens, err := data.NewGenerators(trainViews, t.genOptions(trainLabels))
	if err != nil {
		return nil, fmt.Errorf("train: generators: %w", err)
	}
	var valGens []data.Iterator
	if t.cfg.Validate {
		valGens, err = data.NewGenerators(valViews, t.genOptions(valLabels))
		if err != nil {
			return nil, fmt.Errorf("train: validation generators: %w", err)
		}
	}

	logger := t.cfg.NewLogger()
	var valLogger LossLogger

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if ea, ok := t.model.(EpochAware); ok {
			ea.SetEpoch(epoch)
		}

		t.model.SetTraining(true)
		losses, err := t.runEpoch(gens, device, t.step.optimiseBatch)
		if err != nil {
			return nil, fmt.Errorf("train: epoch %d: %w", epoch, err)
		}
		if t.cfg.Verbose {
			t.logEpoch("train", epoch, losses)
		}
		if epoch == 1 {
			logger.OnTrainInit(losses.Keys())
		}
		if err := logger.OnStepFi(losses); err != nil {
			return nil, fmt.Errorf("train: epoch %d: %w", epoch, err)
		}

		if t.cfg.Validate {
			t.model.SetTraining(false)
			vlosses, err := t.runEpoch(valGens, device, t.step.validateBatch)
			if err != nil {
				return nil, fmt.Errorf("train: validation epoch %d: %w", epoch, err)
			}
			if t.cfg.Verbose {
				t.logEpoch("validation", epoch, vlosses)
			}
			if epoch == 1 {
				valLogger = t.cfg.NewLogger()
				valLogger.OnTrainInit(vlosses.Keys())
			}
			if err := valLogger.OnStepFi(vlosses); err != nil {
				return nil, fmt.Errorf("train: validation epoch %d: %w", epoch, err)
			}
		}
	}
	t.model.SetTraining(false)
	t.valLogger = valLogger

	if t.cfg.SaveModel {
		if err := t.save(logger, valLogger); err != nil {
			return nil, err
		}
	}
	return logger, nil
}

// runEpoch drives one pass over the generators and returns the last
// batch's loss record, which is what goes on the epoch log.
func (t *Trainer) runEpoch(gens []data.Iterator, device tensor.Device, step func(Batch) (Losses, error)) (Losses, error) {
	for _, g := range gens {
		g.Reset()
	}
	var last Losses
	for {
		b, ok, err := nextBatch(gens, device)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		losses, err := step(b)
		if err != nil {
			return nil, err
		}
		last = losses
	}
	if last == nil {
		return nil, fmt.Errorf("train: epoch produced no batches")
	}
	return last, nil
}

// nextBatch advances every view's generator one step in lockstep and
// stages the slices on the active device. All generators must exhaust on
// the same step.
func nextBatch(gens []data.Iterator, device tensor.Device) (Batch, bool, error) {
	var b Batch
	for i, g := range gens {
		vb, ok := g.Next()
		if i == 0 {
			if !ok {
				// Drain the remaining generators so a desync still
				// surfaces as an error.
				for _, rest := range gens[1:] {
					if _, restOK := rest.Next(); restOK {
						return Batch{}, false, fmt.Errorf("train: view generators out of step")
					}
				}
				return Batch{}, false, nil
			}
			b.Views = make([]*tensor.Matrix, 0, len(gens))
		} else if !ok {
			return Batch{}, false, fmt.Errorf("train: view generators out of step")
		}
		b.Views = append(b.Views, vb.Data.ToDevice(device))
		if b.Labels == nil {
			b.Labels = vb.Labels
		}
	}
	return b, true, nil
}

// genOptions maps the run config onto generator options for one partition.
func (t *Trainer) genOptions(labels []int64) data.Options {
	opts := data.Options{
		BatchSize: t.cfg.BatchSize,
		Labels:    labels,
		Workers:   t.cfg.Workers,
	}
	if t.model.Info().SNP {
		opts.MAF = t.cfg.MAF
	}
	return opts
}

// acquireDevice picks the compute device for this run. GPU requests fall
// back to the CPU when no adapter is available.
func (t *Trainer) acquireDevice() (tensor.Device, func()) {
	if t.cfg.UseGPU && webgpu.IsAvailable() {
		b, err := webgpu.New()
		if err == nil {
			t.log.WithField("backend", b.Name()).Debug("using webgpu device")
			return tensor.WebGPU, b.Release
		}
		t.log.WithError(err).Warn("webgpu unavailable, falling back to cpu")
	}
	b := cpu.New()
	return b.Device(), b.Release
}

func (t *Trainer) logEpoch(phase string, epoch int, losses Losses) {
	fields := logrus.Fields{"phase": phase, "epoch": epoch}
	for k, v := range losses {
		fields[k] = v
	}
	t.log.WithFields(fields).Info("epoch complete")
}

// save writes the model checkpoint, and the loss curves when a plotter is
// configured.
func (t *Trainer) save(logger, valLogger LossLogger) error {
	sd := t.model.(StateDicter)

	dir := t.cfg.OutputPath
	if dir == "" {
		var err error
		dir, err = checkpoint.OutputDir(".", t.model.Name())
		if err != nil {
			return fmt.Errorf("train: output dir: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("train: output dir: %w", err)
	}

	path := filepath.Join(dir, "model.mvm")
	meta := map[string]string{
		"model":  t.model.Name(),
		"family": t.family.String(),
	}
	written, err := checkpoint.Save(path, sd.StateDict(), meta, t.cfg.Overwrite)
	if err != nil {
		return fmt.Errorf("train: save: %w", err)
	}
	t.log.WithField("path", written).Info("model saved")

	if t.cfg.Plotter != nil {
		if err := t.cfg.Plotter.PlotLosses(logger, "training"); err != nil {
			return fmt.Errorf("train: plot: %w", err)
		}
		if valLogger != nil {
			if err := t.cfg.Plotter.PlotLosses(valLogger, "validation"); err != nil {
				return fmt.Errorf("train: plot: %w", err)
			}
		}
	}
	return nil
}
