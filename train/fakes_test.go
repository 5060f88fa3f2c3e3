// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/alawryaguila/multiview-models/internal/tensor"
	"github.com/alawryaguila/multiview-models/nn"
	"github.com/alawryaguila/multiview-models/optim"
)

// countingOptimizer records its calls; it never touches parameters, so
// gradients written by fake backward passes stay inspectable afterwards.
type countingOptimizer struct {
	tag   string
	steps int
	zeros int
	order *[]string
}

func (o *countingOptimizer) Step() {
	o.steps++
	if o.order != nil {
		*o.order = append(*o.order, o.tag+".step")
	}
}

func (o *countingOptimizer) ZeroGrad() {
	o.zeros++
	if o.order != nil {
		*o.order = append(*o.order, o.tag+".zero")
	}
}

func (o *countingOptimizer) LR() float32 { return 0.01 }

var _ optim.Optimizer = (*countingOptimizer)(nil)

// fakeModel implements the Model protocol with transparent arithmetic so
// tests can trace values through the trainer.
//
// Encode emits, per latent, a (rows, ZDim) code whose every element is
// the first feature of the source view's row, which makes sample order
// and offset arithmetic observable in the outputs. Decode fills each
// reconstruction from the code the same way, unless identity mode is on,
// in which case codes are full copies of the views and reconstructions
// full copies of the codes.
type fakeModel struct {
	name     string
	info     Info
	featDims []int

	identity   bool
	decodeFlat bool

	training    bool
	trainingLog []bool
	epochs      []int
}

func (f *fakeModel) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeModel) Info() Info { return f.info }

func (f *fakeModel) SetTraining(training bool) {
	f.training = training
	f.trainingLog = append(f.trainingLog, training)
}

func (f *fakeModel) SetEpoch(epoch int) {
	f.epochs = append(f.epochs, epoch)
}

func (f *fakeModel) Encode(views []*tensor.Matrix) (*Encoding, error) {
	if len(views) != f.info.NViews {
		return nil, fmt.Errorf("fake: got %d views, want %d", len(views), f.info.NViews)
	}
	nCodes := f.info.NViews
	if f.info.Joint {
		nCodes = 1
	}
	mu := make([]*tensor.Matrix, nCodes)
	for i := range mu {
		if f.identity {
			mu[i] = views[i].Clone()
			continue
		}
		rows := views[i].Rows()
		z := tensor.Zeros(rows, f.info.ZDim)
		for r := 0; r < rows; r++ {
			for c := 0; c < f.info.ZDim; c++ {
				z.Set(r, c, views[i].At(r, 0))
			}
		}
		mu[i] = z
	}
	return &Encoding{Mu: mu}, nil
}

func (f *fakeModel) Reparameterise(enc *Encoding) ([]*tensor.Matrix, error) {
	return enc.Mu, nil
}

func (f *fakeModel) Decode(z []*tensor.Matrix) ([][]*tensor.Matrix, error) {
	src := z
	if f.decodeFlat {
		src = z[:1]
	}
	out := make([][]*tensor.Matrix, len(f.featDims))
	for i, cols := range f.featDims {
		out[i] = make([]*tensor.Matrix, len(src))
		for j, code := range src {
			if f.identity {
				out[i][j] = code.Clone()
				continue
			}
			rows := code.Rows()
			rec := tensor.Zeros(rows, cols)
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					rec.Set(r, c, code.At(r, 0))
				}
			}
			out[i][j] = rec
		}
	}
	return out, nil
}

// fakeTrainable adds the Trainable capability: a counted forward pass, a
// decreasing loss record and a backward pass that can plant gradients.
type fakeTrainable struct {
	fakeModel

	params []*nn.Parameter
	opts   []optim.Optimizer

	forwards   int
	backwards  int
	lastLabels []int64
	lastViews  []*tensor.Matrix
	gradFn     func()
}

func newFakeTrainable(info Info, featDims []int) *fakeTrainable {
	p := nn.NewParameter("w", tensor.Zeros(1, 2))
	return &fakeTrainable{
		fakeModel: fakeModel{info: info, featDims: featDims},
		params:    []*nn.Parameter{p},
		opts:      []optim.Optimizer{&countingOptimizer{tag: "opt"}},
	}
}

func (f *fakeTrainable) counter() *countingOptimizer {
	return f.opts[0].(*countingOptimizer)
}

func (f *fakeTrainable) Forward(b Batch) (any, error) {
	f.forwards++
	f.lastLabels = b.Labels
	f.lastViews = b.Views
	return b, nil
}

func (f *fakeTrainable) Loss(b Batch, fwd any) (Losses, error) {
	return Losses{
		"loss": 1 / float32(f.forwards),
		"kl":   0.5 / float32(f.forwards),
	}, nil
}

func (f *fakeTrainable) Backward(b Batch, fwd any, losses Losses) error {
	f.backwards++
	if f.gradFn != nil {
		f.gradFn()
	}
	return nil
}

func (f *fakeTrainable) Parameters() []*nn.Parameter { return f.params }

func (f *fakeTrainable) Optimizers() []optim.Optimizer { return f.opts }

var _ Trainable = (*fakeTrainable)(nil)
var _ EpochAware = (*fakeTrainable)(nil)

// fakeSaveable exposes its parameters for checkpointing.
type fakeSaveable struct {
	fakeTrainable
	state map[string]*tensor.Matrix
}

func (f *fakeSaveable) StateDict() map[string]*tensor.Matrix { return f.state }

var _ StateDicter = (*fakeSaveable)(nil)

// fakeLabelled is a label-conditioned model: its encoder records the label
// window it was handed, then encodes the views as usual.
type fakeLabelled struct {
	fakeTrainable
	encodeLabels []int64
}

func (f *fakeLabelled) EncodeLabelled(views []*tensor.Matrix, labels []int64) (*Encoding, error) {
	f.encodeLabels = labels
	return f.fakeModel.Encode(views)
}

var _ LabelledEncoder = (*fakeLabelled)(nil)

// fakeThresholded zeroes latent elements with magnitude below one.
type fakeThresholded struct {
	fakeTrainable
}

func (f *fakeThresholded) ApplyThreshold(z []*tensor.Matrix) []*tensor.Matrix {
	out := make([]*tensor.Matrix, len(z))
	for i, zi := range z {
		t := zi.Clone()
		data := t.Data()
		for k, v := range data {
			if v < 1 && v > -1 {
				data[k] = 0
			}
		}
		out[i] = t
	}
	return out
}

var _ Thresholder = (*fakeThresholded)(nil)

// fakeCross decodes the same-view reconstruction from the code and the
// cross-view one as its negation.
type fakeCross struct {
	fakeTrainable
}

func (f *fakeCross) DecodeCross(z []*tensor.Matrix) ([]*tensor.Matrix, []*tensor.Matrix, error) {
	same := make([]*tensor.Matrix, len(f.featDims))
	cross := make([]*tensor.Matrix, len(f.featDims))
	for i, cols := range f.featDims {
		rows := z[0].Rows()
		s := tensor.Zeros(rows, cols)
		c := tensor.Zeros(rows, cols)
		for r := 0; r < rows; r++ {
			for j := 0; j < cols; j++ {
				s.Set(r, j, z[0].At(r, 0))
				c.Set(r, j, -z[0].At(r, 0))
			}
		}
		same[i] = s
		cross[i] = c
	}
	return same, cross, nil
}

var _ CrossDecoder = (*fakeCross)(nil)

// fakeAdversarial implements the three-sub-step protocol with counted
// transitions and fixed losses.
type fakeAdversarial struct {
	fakeModel

	encOpt, decOpt, discOpt, genOpt *countingOptimizer
	discParams                      []*nn.Parameter
	wasserstein                     bool
	order                           []string
}

func newFakeAdversarial(info Info, featDims []int, wasserstein bool) *fakeAdversarial {
	f := &fakeAdversarial{
		fakeModel:   fakeModel{info: info, featDims: featDims},
		wasserstein: wasserstein,
	}
	f.encOpt = &countingOptimizer{tag: "enc", order: &f.order}
	f.decOpt = &countingOptimizer{tag: "dec", order: &f.order}
	f.discOpt = &countingOptimizer{tag: "disc", order: &f.order}
	f.genOpt = &countingOptimizer{tag: "gen", order: &f.order}

	w, _ := tensor.FromSlice([]float32{0.5, -0.5, 0.003}, 1, 3)
	f.discParams = []*nn.Parameter{nn.NewParameter("disc.w", w)}
	return f
}

func (f *fakeAdversarial) mark(s string) { f.order = append(f.order, s) }

func (f *fakeAdversarial) ForwardRecon(b Batch) (any, error) {
	f.mark("recon.forward")
	return b, nil
}

func (f *fakeAdversarial) ReconLoss(b Batch, fwd any) (float32, error) { return 0.3, nil }

func (f *fakeAdversarial) BackwardRecon(b Batch, fwd any) error {
	f.mark("recon.backward")
	return nil
}

func (f *fakeAdversarial) ForwardDiscrim(b Batch) (any, error) {
	f.mark("discrim.forward")
	return b, nil
}

func (f *fakeAdversarial) DiscrimLoss(fwd any) (float32, error) { return 0.2, nil }

func (f *fakeAdversarial) BackwardDiscrim(fwd any) error {
	f.mark("discrim.backward")
	return nil
}

func (f *fakeAdversarial) ForwardGen(b Batch) (any, error) {
	f.mark("gen.forward")
	return b, nil
}

func (f *fakeAdversarial) GenLoss(fwd any) (float32, error) { return 0.1, nil }

func (f *fakeAdversarial) BackwardGen(fwd any) error {
	f.mark("gen.backward")
	return nil
}

func (f *fakeAdversarial) EncoderOptimizers() []optim.Optimizer {
	return []optim.Optimizer{f.encOpt}
}

func (f *fakeAdversarial) DecoderOptimizers() []optim.Optimizer {
	return []optim.Optimizer{f.decOpt}
}

func (f *fakeAdversarial) DiscriminatorOptimizer() optim.Optimizer { return f.discOpt }

func (f *fakeAdversarial) GeneratorOptimizers() []optim.Optimizer {
	return []optim.Optimizer{f.genOpt}
}

func (f *fakeAdversarial) DiscriminatorParameters() []*nn.Parameter { return f.discParams }

func (f *fakeAdversarial) Wasserstein() bool { return f.wasserstein }

var _ AdversarialModel = (*fakeAdversarial)(nil)

// denseSeq builds a (rows, cols) matrix with element (i, j) = offset +
// i*cols + j, so every row is identifiable by its first element.
func denseSeq(rows, cols int, offset float64) *mat.Dense {
	d := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d.Set(i, j, offset+float64(i*cols+j))
		}
	}
	return d
}
