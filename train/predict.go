// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/alawryaguila/multiview-models/data"
	"github.com/alawryaguila/multiview-models/internal/tensor"
)

// Reconstruction is the output of PredictReconstruction.
type Reconstruction struct {
	// Views is indexed [view][latent]: element (i, j) is view i
	// reconstructed from latent code j. Families with a single shared
	// code have one inner element per view.
	Views [][]*mat.Dense

	// Cross, for families that decode an explicit cross-view
	// reconstruction, holds view i as reconstructed without its own
	// input. Nil for all other families.
	Cross []*mat.Dense
}

// PredictLatents encodes every sample and reassembles the latent codes in
// input order. Joint-representation models yield a single matrix; others
// yield one per view. Sparse models have their latents thresholded first.
// Labels are only needed for label-conditioned models and may be nil
// otherwise.
func (t *Trainer) PredictLatents(views []*mat.Dense, labels []int64) ([]*mat.Dense, error) {
	if t.family == Supervised && labels == nil {
		return nil, fmt.Errorf("train: %s family requires labels", t.family)
	}
	device, release := t.acquireDevice()
	defer release()
	t.model.SetTraining(false)

	gens, err := data.NewGenerators(views, t.genOptions(labels))
	if err != nil {
		return nil, fmt.Errorf("train: generators: %w", err)
	}

	info := t.model.Info()
	nOut := info.NViews
	if info.Joint {
		nOut = 1
	}
	n := gens[0].Len()
	accs := make([]*tensor.Matrix, nOut)
	for i := range accs {
		accs[i] = tensor.Zeros(n, info.ZDim)
	}

	err = t.forEachBatch(gens, device, func(b Batch, start, end int) error {
		z, err := t.encodeLatents(b)
		if err != nil {
			return err
		}
		if len(z) != nOut {
			return fmt.Errorf("train: model %q produced %d latent codes, want %d", t.model.Name(), len(z), nOut)
		}
		for i, zi := range z {
			if err := accs[i].SetRowWindow(start, zi.ToDevice(tensor.CPU)); err != nil {
				return fmt.Errorf("train: latent window [%d:%d): %w", start, end, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*mat.Dense, nOut)
	for i, acc := range accs {
		out[i] = acc.ToDense()
	}
	return out, nil
}

// PredictReconstruction decodes every sample and reassembles the
// reconstructions in input order. The shape of the result follows the
// family: standard per-view models fill the full [view][latent] grid,
// shared-code families a single column, and cross-decoding families the
// same-view column plus the Cross slice.
func (t *Trainer) PredictReconstruction(views []*mat.Dense) (*Reconstruction, error) {
	device, release := t.acquireDevice()
	defer release()
	t.model.SetTraining(false)

	gens, err := data.NewGenerators(views, t.genOptions(nil))
	if err != nil {
		return nil, fmt.Errorf("train: generators: %w", err)
	}

	info := t.model.Info()
	n := gens[0].Len()

	cd, hasCross := t.model.(CrossDecoder)
	crossPath := hasCross && !info.Joint && t.family != CCA

	nLatents := info.NViews
	if info.Joint || t.family == CCA || crossPath {
		nLatents = 1
	}

	// One accumulator per (view, latent) cell, sized to the view's
	// feature count.
	accs := make([][]*tensor.Matrix, len(views))
	for i, v := range views {
		_, cols := v.Dims()
		accs[i] = make([]*tensor.Matrix, nLatents)
		for j := range accs[i] {
			accs[i][j] = tensor.Zeros(n, cols)
		}
	}
	var crossAccs []*tensor.Matrix
	if crossPath {
		crossAccs = make([]*tensor.Matrix, len(views))
		for i, v := range views {
			_, cols := v.Dims()
			crossAccs[i] = tensor.Zeros(n, cols)
		}
	}

	err = t.forEachBatch(gens, device, func(b Batch, start, end int) error {
		z, err := t.encodeLatents(b)
		if err != nil {
			return err
		}

		if crossPath {
			same, cross, err := cd.DecodeCross(z)
			if err != nil {
				return fmt.Errorf("train: decode: %w", err)
			}
			if len(same) != len(views) || len(cross) != len(views) {
				return fmt.Errorf("train: cross decode produced %d/%d views, want %d", len(same), len(cross), len(views))
			}
			for i := range views {
				if err := accs[i][0].SetRowWindow(start, same[i].ToDevice(tensor.CPU)); err != nil {
					return fmt.Errorf("train: reconstruction window [%d:%d): %w", start, end, err)
				}
				if err := crossAccs[i].SetRowWindow(start, cross[i].ToDevice(tensor.CPU)); err != nil {
					return fmt.Errorf("train: cross window [%d:%d): %w", start, end, err)
				}
			}
			return nil
		}

		recons, err := t.model.Decode(z)
		if err != nil {
			return fmt.Errorf("train: decode: %w", err)
		}
		if len(recons) != len(views) {
			return fmt.Errorf("train: decode produced %d views, want %d", len(recons), len(views))
		}
		for i := range recons {
			if len(recons[i]) != nLatents {
				return fmt.Errorf("train: decode produced %d codes for view %d, want %d", len(recons[i]), i, nLatents)
			}
			for j := range recons[i] {
				if err := accs[i][j].SetRowWindow(start, recons[i][j].ToDevice(tensor.CPU)); err != nil {
					return fmt.Errorf("train: reconstruction window [%d:%d): %w", start, end, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec := &Reconstruction{Views: make([][]*mat.Dense, len(accs))}
	for i := range accs {
		rec.Views[i] = make([]*mat.Dense, nLatents)
		for j := range accs[i] {
			rec.Views[i][j] = accs[i][j].ToDense()
		}
	}
	if crossPath {
		rec.Cross = make([]*mat.Dense, len(crossAccs))
		for i, acc := range crossAccs {
			rec.Cross[i] = acc.ToDense()
		}
	}
	return rec, nil
}

// encodeLatents runs the inference half of the model over one batch:
// encode (label-conditioned when the model supports it), draw the code,
// threshold when the model is sparse.
func (t *Trainer) encodeLatents(b Batch) ([]*tensor.Matrix, error) {
	var enc *Encoding
	var err error
	if le, ok := t.model.(LabelledEncoder); ok {
		enc, err = le.EncodeLabelled(b.Views, b.Labels)
	} else {
		enc, err = t.model.Encode(b.Views)
	}
	if err != nil {
		return nil, fmt.Errorf("train: encode: %w", err)
	}
	z, err := t.model.Reparameterise(enc)
	if err != nil {
		return nil, fmt.Errorf("train: reparameterise: %w", err)
	}
	if t.model.Info().Sparse {
		if th, ok := t.model.(Thresholder); ok {
			z = th.ApplyThreshold(z)
		}
	}
	return z, nil
}

// forEachBatch walks the generators once, handing each batch to fn along
// with its [start, end) sample window; the final window is clamped to the
// sample count so partial batches land in the right rows.
func (t *Trainer) forEachBatch(gens []data.Iterator, device tensor.Device, fn func(b Batch, start, end int) error) error {
	n := gens[0].Len()
	bs := gens[0].BatchSize()
	nb := gens[0].NumBatches()
	for idx := 0; idx < nb; idx++ {
		b, ok, err := nextBatch(gens, device)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("train: generators exhausted after %d of %d batches", idx, nb)
		}
		start := idx * bs
		end := start + bs
		if idx == nb-1 {
			end = n
		}
		if err := fn(b, start, end); err != nil {
			return err
		}
	}
	return nil
}
