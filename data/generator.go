// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package data

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Iterator yields the batches of one view, in index order, exactly once per
// pass. Reset rewinds the iterator for the next epoch.
type Iterator interface {
	Next() (*Batch, bool)
	Reset()
	Len() int
	BatchSize() int
	NumBatches() int
}

// Options configures generator construction for a fit or predict call.
type Options struct {
	// BatchSize is the mini-batch size. Zero means the whole dataset is
	// delivered as a single batch.
	BatchSize int

	// Labels, when set, must align with every view by sample index.
	Labels []int64

	// MAF, when set, switches views to the genetic-variant adapter. One
	// per-feature frequency slice per view, in view order; a nil entry
	// leaves that view uncentred.
	MAF [][]float32

	// Workers enables background prefetch with the given channel depth.
	// Zero keeps batch fetching synchronous.
	Workers int
}

// NewGenerators builds one iterator per view over the same index sequence.
//
// Every view must have the same sample count and, when labels or allele
// frequencies are supplied, match them in length. Violations are reported
// before any batch is fetched.
func NewGenerators(views []*mat.Dense, opts Options) ([]Iterator, error) {
	if len(views) == 0 {
		return nil, fmt.Errorf("data: no views supplied")
	}
	if opts.BatchSize < 0 {
		return nil, fmt.Errorf("data: negative batch size %d", opts.BatchSize)
	}
	n, _ := views[0].Dims()
	for i, v := range views {
		rows, _ := v.Dims()
		if rows != n {
			return nil, fmt.Errorf("data: view 0 has %d samples but view %d has %d", n, i, rows)
		}
	}
	if opts.Labels != nil && len(opts.Labels) != n {
		return nil, fmt.Errorf("data: %d labels for %d samples", len(opts.Labels), n)
	}
	if opts.MAF != nil && len(opts.MAF) != len(views) {
		return nil, fmt.Errorf("data: %d allele frequency sets for %d views", len(opts.MAF), len(views))
	}

	generators := make([]Iterator, 0, len(views))
	for i, v := range views {
		var ds Dataset = NewMatrixDataset(v)
		if opts.MAF != nil && opts.MAF[i] != nil {
			snp, err := NewSNP(ds, opts.MAF[i])
			if err != nil {
				return nil, err
			}
			ds = snp
		}
		if opts.Labels != nil {
			labelled, err := NewLabelled(ds, opts.Labels)
			if err != nil {
				return nil, err
			}
			ds = labelled
		}

		var it Iterator = newGenerator(ds, opts.BatchSize)
		if opts.Workers > 0 {
			it = prefetch(it, opts.Workers)
		}
		generators = append(generators, it)
	}
	return generators, nil
}

// generator iterates a dataset in fixed-size index windows.
type generator struct {
	ds        Dataset
	batchSize int
	next      int
}

func newGenerator(ds Dataset, batchSize int) *generator {
	if batchSize <= 0 || batchSize > ds.Len() {
		batchSize = ds.Len()
	}
	return &generator{ds: ds, batchSize: batchSize}
}

// Len returns the dataset sample count.
func (g *generator) Len() int { return g.ds.Len() }

// BatchSize returns the effective batch size.
func (g *generator) BatchSize() int { return g.batchSize }

// NumBatches returns ceil(Len/BatchSize).
func (g *generator) NumBatches() int {
	return (g.ds.Len() + g.batchSize - 1) / g.batchSize
}

// Next yields the next batch, or false when the pass is complete.
func (g *generator) Next() (*Batch, bool) {
	if g.next >= g.ds.Len() {
		return nil, false
	}
	start := g.next
	end := start + g.batchSize
	if end > g.ds.Len() {
		end = g.ds.Len()
	}
	g.next = end
	return g.ds.Batch(start, end), true
}

// Reset rewinds the generator for the next pass.
func (g *generator) Reset() {
	g.next = 0
}

// prefetcher decouples batch materialisation from consumption: a single
// producer goroutine walks the source iterator in order and stages batches
// in a buffered channel. Ordering is unchanged; only fetch latency is hidden.
type prefetcher struct {
	src     Iterator
	depth   int
	ch      chan *Batch
	stop    chan struct{}
	started bool
}

func prefetch(src Iterator, depth int) *prefetcher {
	return &prefetcher{src: src, depth: depth}
}

// Len returns the source sample count.
func (p *prefetcher) Len() int { return p.src.Len() }

// BatchSize returns the source batch size.
func (p *prefetcher) BatchSize() int { return p.src.BatchSize() }

// NumBatches returns the source batch count.
func (p *prefetcher) NumBatches() int { return p.src.NumBatches() }

// Next yields the next staged batch, or false when the pass is complete.
func (p *prefetcher) Next() (*Batch, bool) {
	if !p.started {
		p.start()
	}
	b, ok := <-p.ch
	return b, ok
}

func (p *prefetcher) start() {
	p.ch = make(chan *Batch, p.depth)
	p.stop = make(chan struct{})
	p.started = true

	go func(ch chan<- *Batch, stop <-chan struct{}) {
		defer close(ch)
		for {
			b, ok := p.src.Next()
			if !ok {
				return
			}
			select {
			case ch <- b:
			case <-stop:
				return
			}
		}
	}(p.ch, p.stop)
}

// Reset stops any in-flight producer, discards staged batches and rewinds
// the source.
func (p *prefetcher) Reset() {
	if p.started {
		close(p.stop)
		for range p.ch {
			// Drain until the producer closes the channel.
		}
		p.started = false
	}
	p.src.Reset()
}
