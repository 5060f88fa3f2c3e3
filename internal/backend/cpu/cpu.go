// Package cpu implements the CPU backend for multiview-models.
//
// All numeric work the training core performs itself (SNP centring, latent
// thresholding, reconstruction error) runs on the host, so the CPU backend
// carries no state beyond its device identity.
package cpu

import (
	"github.com/alawryaguila/multiview-models/internal/tensor"
)

// Backend is the CPU compute backend.
type Backend struct{}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{}
}

// Device returns the device this backend computes on.
func (b *Backend) Device() tensor.Device {
	return tensor.CPU
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "cpu"
}

// Release frees backend resources. The CPU backend holds none.
func (b *Backend) Release() {}
