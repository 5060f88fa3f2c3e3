// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data builds the per-view data pipelines the training core consumes:
// dataset adapters over raw view matrices, synchronized batch generators, the
// reproducible train/validation split and the SNP centring transform.
//
// All generators for one fit or predict call are built over the same index
// sequence and must be consumed in lockstep; shuffling is deliberately
// disabled so batch k of every view covers the same sample positions.
package data

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/alawryaguila/multiview-models/internal/tensor"
)

// Batch is one materialised slice of a view: the sample rows and, when the
// dataset carries labels, the aligned label window.
type Batch struct {
	Data   *tensor.Matrix
	Labels []int64
}

// Dataset is an indexable sample provider for one view.
//
// Batch materialises rows [start, end). Implementations may transform the
// fetched rows (the SNP adapter centres them) but must preserve row order.
type Dataset interface {
	Len() int
	Features() int
	Batch(start, end int) *Batch
}

// MatrixDataset adapts a raw view matrix.
type MatrixDataset struct {
	m *tensor.Matrix
}

// NewMatrixDataset wraps one view, given as a (samples, features) dense
// matrix.
func NewMatrixDataset(d *mat.Dense) *MatrixDataset {
	return &MatrixDataset{m: tensor.FromDense(d)}
}

// Len returns the sample count.
func (d *MatrixDataset) Len() int { return d.m.Rows() }

// Features returns the feature count.
func (d *MatrixDataset) Features() int { return d.m.Cols() }

// Batch returns rows [start, end).
func (d *MatrixDataset) Batch(start, end int) *Batch {
	w, err := d.m.RowWindow(start, end)
	if err != nil {
		// Generators only request in-range windows.
		panic(err)
	}
	return &Batch{Data: w}
}

// LabelledDataset pairs a dataset with a per-sample label vector.
type LabelledDataset struct {
	inner  Dataset
	labels []int64
}

// NewLabelled wraps ds so every batch carries the aligned label window.
func NewLabelled(ds Dataset, labels []int64) (*LabelledDataset, error) {
	if len(labels) != ds.Len() {
		return nil, fmt.Errorf("data: %d labels for %d samples", len(labels), ds.Len())
	}
	return &LabelledDataset{inner: ds, labels: labels}, nil
}

// Len returns the sample count.
func (d *LabelledDataset) Len() int { return d.inner.Len() }

// Features returns the feature count.
func (d *LabelledDataset) Features() int { return d.inner.Features() }

// Batch returns rows [start, end) together with their labels.
func (d *LabelledDataset) Batch(start, end int) *Batch {
	b := d.inner.Batch(start, end)
	b.Labels = d.labels[start:end]
	return b
}

// SNPDataset is the adapter variant for genetic-variant views. Fetched rows
// are centred with the view's minor-allele frequencies before delivery.
type SNPDataset struct {
	inner Dataset
	maf   []float32
}

// NewSNP wraps ds so every fetched batch is MAF-centred.
func NewSNP(ds Dataset, maf []float32) (*SNPDataset, error) {
	if len(maf) != ds.Features() {
		return nil, fmt.Errorf("data: %d allele frequencies for %d features", len(maf), ds.Features())
	}
	return &SNPDataset{inner: ds, maf: maf}, nil
}

// Len returns the sample count.
func (d *SNPDataset) Len() int { return d.inner.Len() }

// Features returns the feature count.
func (d *SNPDataset) Features() int { return d.inner.Features() }

// Batch returns MAF-centred rows [start, end).
func (d *SNPDataset) Batch(start, end int) *Batch {
	b := d.inner.Batch(start, end)
	centred, err := CentreSNPs(b.Data, d.maf)
	if err != nil {
		// The MAF width was validated at construction.
		panic(err)
	}
	b.Data = centred
	return b
}
