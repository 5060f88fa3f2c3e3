package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Device represents the compute device a matrix is bound to.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// Matrix is a dense row-major 2-D float32 tensor of shape (samples, features).
//
// Every view of a multiview dataset, every batch cut from it and every
// prediction accumulator is a Matrix. Storage is host memory; the device tag
// records which backend the matrix was staged for.
type Matrix struct {
	rows, cols int
	data       []float32
	device     Device
}

// NewMatrix creates a zero-filled matrix of the given shape.
func NewMatrix(rows, cols int) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("tensor: invalid shape (%d, %d)", rows, cols)
	}
	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}, nil
}

// Zeros is NewMatrix without the error return, for shapes known to be valid.
// Panics on a non-positive dimension.
func Zeros(rows, cols int) *Matrix {
	m, err := NewMatrix(rows, cols)
	if err != nil {
		panic(err)
	}
	return m
}

// FromSlice creates a matrix backed by a copy of data, which must hold
// exactly rows*cols elements in row-major order.
func FromSlice(data []float32, rows, cols int) (*Matrix, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("tensor: data length %d does not match shape (%d, %d)", len(data), rows, cols)
	}
	m, err := NewMatrix(rows, cols)
	if err != nil {
		return nil, err
	}
	copy(m.data, data)
	return m, nil
}

// FromDense converts a gonum dense matrix into a Matrix.
//
// This is the bridge between the public API, which speaks *mat.Dense, and the
// float32 batches the training core moves around.
func FromDense(d *mat.Dense) *Matrix {
	r, c := d.Dims()
	m := Zeros(r, c)
	for i := 0; i < r; i++ {
		row := d.RawRowView(i)
		for j := 0; j < c; j++ {
			m.data[i*c+j] = float32(row[j])
		}
	}
	return m
}

// ToDense converts the matrix back into a gonum dense matrix.
// The result shares no storage with the receiver.
func (m *Matrix) ToDense() *mat.Dense {
	out := mat.NewDense(m.rows, m.cols, nil)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.Set(i, j, float64(m.data[i*m.cols+j]))
		}
	}
	return out
}

// Rows returns the number of rows (samples).
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns (features).
func (m *Matrix) Cols() int { return m.cols }

// Device returns the device tag.
func (m *Matrix) Device() Device { return m.device }

// Data returns the underlying row-major storage.
func (m *Matrix) Data() []float32 { return m.data }

// At returns the element at (i, j).
func (m *Matrix) At(i, j int) float32 { return m.data[i*m.cols+j] }

// Set assigns the element at (i, j).
func (m *Matrix) Set(i, j int, v float32) { m.data[i*m.cols+j] = v }

// Row returns row i as a slice sharing the matrix storage.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	out := Zeros(m.rows, m.cols)
	copy(out.data, m.data)
	out.device = m.device
	return out
}

// ToDevice returns a copy of the matrix tagged for the given device.
// A matrix already on the device is returned unchanged.
func (m *Matrix) ToDevice(d Device) *Matrix {
	if m.device == d {
		return m
	}
	out := m.Clone()
	out.device = d
	return out
}

// RowWindow copies rows [start, end) into a new matrix.
func (m *Matrix) RowWindow(start, end int) (*Matrix, error) {
	if start < 0 || end > m.rows || start >= end {
		return nil, fmt.Errorf("tensor: row window [%d, %d) out of range for %d rows", start, end, m.rows)
	}
	out := Zeros(end-start, m.cols)
	copy(out.data, m.data[start*m.cols:end*m.cols])
	out.device = m.device
	return out, nil
}

// SetRowWindow writes src into the receiver starting at row start.
// This is the accumulator write used to reassemble full-dataset outputs from
// per-batch results.
func (m *Matrix) SetRowWindow(start int, src *Matrix) error {
	if src.cols != m.cols {
		return fmt.Errorf("tensor: column mismatch: %d != %d", src.cols, m.cols)
	}
	if start < 0 || start+src.rows > m.rows {
		return fmt.Errorf("tensor: rows [%d, %d) out of range for %d rows", start, start+src.rows, m.rows)
	}
	copy(m.data[start*m.cols:], src.data)
	return nil
}

// ScrubNaN replaces every non-finite element with zero, in place.
func (m *Matrix) ScrubNaN() {
	for i, v := range m.data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			m.data[i] = 0
		}
	}
}

// SubRowVector subtracts v from every row, in place.
// len(v) must equal the number of columns.
func (m *Matrix) SubRowVector(v []float32) error {
	if len(v) != m.cols {
		return fmt.Errorf("tensor: vector length %d does not match %d columns", len(v), m.cols)
	}
	for i := 0; i < m.rows; i++ {
		row := m.Row(i)
		for j := range row {
			row[j] -= v[j]
		}
	}
	return nil
}

// Equal reports whether two matrices have the same shape and elements.
func (m *Matrix) Equal(other *Matrix) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != other.data[i] {
			return false
		}
	}
	return true
}
