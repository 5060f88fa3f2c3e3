// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package data

import (
	"fmt"

	"github.com/alawryaguila/multiview-models/internal/tensor"
)

// CentreSNPs centres genetic-variant data against per-column minor-allele
// frequencies. Twice the expected minor-allele dosage is subtracted from
// every column, applied twice to account for the reference recoding step,
// and any non-finite result is replaced with zero.
//
// Centring with all-zero frequencies is the identity.
func CentreSNPs(m *tensor.Matrix, maf []float32) (*tensor.Matrix, error) {
	if len(maf) != m.Cols() {
		return nil, fmt.Errorf("data: %d allele frequencies for %d columns", len(maf), m.Cols())
	}
	dosage := make([]float32, len(maf))
	for i, f := range maf {
		dosage[i] = 2 * f
	}

	out := m.Clone()
	if err := out.SubRowVector(dosage); err != nil {
		return nil, err
	}
	if err := out.SubRowVector(dosage); err != nil {
		return nil, err
	}
	out.ScrubNaN()
	return out, nil
}
