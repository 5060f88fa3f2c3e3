// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend for GPU device selection.
//
// The training core only ever asks this backend two questions: whether a GPU
// is present, and for a device handle to stage batches against. A requested
// GPU that is not available is not an error; the trainer falls back to CPU.
package webgpu

import (
	internalwebgpu "github.com/alawryaguila/multiview-models/internal/backend/webgpu"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// New creates a new WebGPU backend.
//
// Returns an error if WebGPU initialization fails (e.g., no compatible GPU).
// Call Release() when done to free GPU resources.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable checks if WebGPU is available on the current system.
//
// It attempts to initialize a WebGPU adapter to verify that a compatible GPU
// and drivers are present.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
