// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"sort"

	"github.com/alawryaguila/multiview-models/internal/tensor"
	"github.com/alawryaguila/multiview-models/nn"
	"github.com/alawryaguila/multiview-models/optim"
)

// Losses is one batch's loss record: named loss components mapped to their
// scalar values. Every record for a run must carry the same key set.
type Losses map[string]float32

// Total returns the scalar the backward pass minimises. Either "loss" or
// "total" is accepted as the key.
func (l Losses) Total() (float32, bool) {
	if v, ok := l["loss"]; ok {
		return v, true
	}
	v, ok := l["total"]
	return v, ok
}

// Keys returns the loss field names in sorted order.
func (l Losses) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Batch is the unit of work handed to a model: one aligned slice of every
// view, staged on the active device, plus the label window when the run is
// label-conditioned.
type Batch struct {
	Views  []*tensor.Matrix
	Labels []int64
}

// Info describes the fixed properties of a model the trainer needs for
// dispatch and output sizing.
type Info struct {
	// NViews is the number of views the model was built for.
	NViews int
	// ZDim is the latent dimensionality.
	ZDim int
	// Joint reports whether the model combines all views into one shared
	// latent code (e.g. product-of-experts) rather than one code per view.
	Joint bool
	// Sparse reports whether the model enforces latent sparsity; sparse
	// latents are thresholded before reconstruction or output.
	Sparse bool
	// SNP reports whether the model consumes genetic-variant views that
	// must be MAF-centred.
	SNP bool
}

// Encoding is the output of a model's encoder pass: per-latent mean and,
// for variational encoders, log-variance. Deterministic encoders leave
// LogVar nil. Joint-representation models produce single-element slices.
type Encoding struct {
	Mu     []*tensor.Matrix
	LogVar []*tensor.Matrix
}

// Model is the protocol every model family implements. The probability
// math and network architectures behind these methods are external; the
// trainer only sequences them.
type Model interface {
	// Name identifies the model (used for output paths and logging).
	Name() string
	// Info returns the model's fixed dispatch properties.
	Info() Info
	// SetTraining switches between training and evaluation behaviour.
	SetTraining(training bool)

	// Encode runs the encoder networks over one batch of views.
	Encode(views []*tensor.Matrix) (*Encoding, error)
	// Reparameterise draws the latent code from an encoding. Deterministic
	// models return the mean unchanged.
	Reparameterise(enc *Encoding) ([]*tensor.Matrix, error)
	// Decode reconstructs every view from the latent codes. The result is
	// indexed [view][latent]: element (i, j) is view i reconstructed from
	// latent code j, with a single inner element for joint codes.
	Decode(z []*tensor.Matrix) ([][]*tensor.Matrix, error)
}

// Trainable is the capability the standard, CCA and supervised families
// train through: one forward pass, one loss record, one backward pass, and
// a set of optimizers zeroed and stepped together.
type Trainable interface {
	Model

	// Forward runs the model over one batch and returns an opaque forward
	// result later handed to Loss and Backward.
	Forward(b Batch) (any, error)
	// Loss computes the named loss components for a batch. The record must
	// contain a "loss" (or "total") entry.
	Loss(b Batch, fwd any) (Losses, error)
	// Backward populates parameter gradients for the total loss.
	Backward(b Batch, fwd any, losses Losses) error
	// Parameters returns every trainable parameter.
	Parameters() []*nn.Parameter
	// Optimizers returns the optimizer group stepped after each backward
	// pass.
	Optimizers() []optim.Optimizer
}

// AdversarialModel is the capability the adversarial family trains through:
// three sequential sub-steps per batch (reconstruction, discriminator,
// generator), each with its own forward pass, scalar loss, backward pass
// and optimizer group.
type AdversarialModel interface {
	Model

	ForwardRecon(b Batch) (any, error)
	ReconLoss(b Batch, fwd any) (float32, error)
	BackwardRecon(b Batch, fwd any) error

	ForwardDiscrim(b Batch) (any, error)
	DiscrimLoss(fwd any) (float32, error)
	BackwardDiscrim(fwd any) error

	ForwardGen(b Batch) (any, error)
	GenLoss(fwd any) (float32, error)
	BackwardGen(fwd any) error

	EncoderOptimizers() []optim.Optimizer
	DecoderOptimizers() []optim.Optimizer
	DiscriminatorOptimizer() optim.Optimizer
	GeneratorOptimizers() []optim.Optimizer

	// DiscriminatorParameters are clamped into [-0.01, 0.01] after each
	// discriminator step when the model trains a Wasserstein critic.
	DiscriminatorParameters() []*nn.Parameter
	Wasserstein() bool
}

// LabelledEncoder is implemented by label-conditioned models whose encoder
// consumes the label batch alongside the views. The prediction path calls
// it instead of Encode whenever the model implements it, so conditioned
// models see their labels at inference as well as during training.
type LabelledEncoder interface {
	EncodeLabelled(views []*tensor.Matrix, labels []int64) (*Encoding, error)
}

// CrossDecoder is implemented by families that decode an explicit
// cross-view reconstruction alongside the same-view one: for each view,
// its reconstruction from the other views' codes.
type CrossDecoder interface {
	DecodeCross(z []*tensor.Matrix) (same []*tensor.Matrix, cross []*tensor.Matrix, err error)
}

// Thresholder is implemented by sparse models; near-zero latent dimensions
// are forced to exactly zero before reconstruction or output.
type Thresholder interface {
	ApplyThreshold(z []*tensor.Matrix) []*tensor.Matrix
}

// EpochAware models are told the current (1-based) epoch before each
// training pass, for schedules such as KL warmup.
type EpochAware interface {
	SetEpoch(epoch int)
}

// StateDicter exposes a model's parameters for persistence.
type StateDicter interface {
	StateDict() map[string]*tensor.Matrix
}

// Family tags the closed set of training protocols.
type Family int

// Model families.
const (
	// Standard: one forward pass, one loss, generic optimizer stepping.
	Standard Family = iota
	// Adversarial: reconstruction, discriminator and generator sub-steps.
	Adversarial
	// CCA: trains like Standard; reconstruction is decoded once from the
	// shared code rather than per source latent.
	CCA
	// Supervised: label-conditioned forward pass with gradient-norm
	// clipping before each optimizer step.
	Supervised
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case Standard:
		return "standard"
	case Adversarial:
		return "adversarial"
	case CCA:
		return "cca"
	case Supervised:
		return "supervised"
	default:
		return "unknown"
	}
}
