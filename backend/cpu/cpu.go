// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/alawryaguila/multiview-models/internal/backend/cpu"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.Backend

// New creates a new CPU backend.
//
// Example:
//
//	import "github.com/alawryaguila/multiview-models/backend/cpu"
//
//	func main() {
//	    backend := cpu.New()
//	    _ = backend.Device()
//	}
func New() *Backend {
	return internalcpu.New()
}
