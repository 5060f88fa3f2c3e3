// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint persists trained model state.
//
// Files use a small binary container: magic bytes, a format version, a JSON
// header describing every tensor, the float32 payload, and a trailing CRC-32
// of the payload. Path collisions are resolved by an explicit policy decided
// before any I/O; there is no interactive prompt in the save path.
package checkpoint

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alawryaguila/multiview-models/internal/tensor"
)

// Magic identifies multiview-models checkpoint files.
const Magic = "MVMC"

// FormatVersion is the current container version.
const FormatVersion = 1

// Policy decides what happens when the target path already exists.
type Policy int

// Collision policies.
const (
	// Fail refuses to touch an existing file.
	Fail Policy = iota
	// Overwrite replaces an existing file.
	Overwrite
	// Rename writes to a fresh path with a unique suffix.
	Rename
)

// ErrExists is returned by Save under the Fail policy when the target path
// is already taken.
var ErrExists = errors.New("checkpoint: path already exists")

type tensorMeta struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Offset int64  `json:"offset"`
}

type header struct {
	Tensors  []tensorMeta      `json:"tensors"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Saved    string            `json:"saved"`
}

// ResolvePath applies the collision policy to the requested path and returns
// the path Save will actually write.
func ResolvePath(path string, policy Policy) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path, nil
	} else if err != nil {
		return "", fmt.Errorf("checkpoint: stat %s: %w", path, err)
	}

	switch policy {
	case Overwrite:
		return path, nil
	case Rename:
		ext := filepath.Ext(path)
		stem := strings.TrimSuffix(path, ext)
		suffix := uuid.NewString()[:8]
		return stem + "-" + suffix + ext, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrExists, path)
	}
}

// Save writes a state dictionary to path, first resolving it against the
// collision policy, and returns the path written.
func Save(path string, state map[string]*tensor.Matrix, metadata map[string]string, policy Policy) (string, error) {
	if len(state) == 0 {
		return "", fmt.Errorf("checkpoint: empty state dictionary")
	}
	resolved, err := ResolvePath(path, policy)
	if err != nil {
		return "", err
	}

	// Deterministic tensor order.
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	hdr := header{
		Metadata: metadata,
		Saved:    time.Now().UTC().Format(time.RFC3339),
	}
	var offset int64
	for _, name := range names {
		m := state[name]
		hdr.Tensors = append(hdr.Tensors, tensorMeta{
			Name:   name,
			Rows:   m.Rows(),
			Cols:   m.Cols(),
			Offset: offset,
		})
		offset += int64(4 * m.Rows() * m.Cols())
	}
	headerJSON, err := json.Marshal(hdr)
	if err != nil {
		return "", fmt.Errorf("checkpoint: marshal header: %w", err)
	}

	var payload bytes.Buffer
	for _, name := range names {
		for _, v := range state[name].Data() {
			if err := binary.Write(&payload, binary.LittleEndian, math.Float32bits(v)); err != nil {
				return "", fmt.Errorf("checkpoint: encode payload: %w", err)
			}
		}
	}

	f, err := os.Create(resolved)
	if err != nil {
		return "", fmt.Errorf("checkpoint: create %s: %w", resolved, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.WriteString(Magic); err != nil {
		return "", fmt.Errorf("checkpoint: write magic: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return "", fmt.Errorf("checkpoint: write version: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return "", fmt.Errorf("checkpoint: write header size: %w", err)
	}
	if _, err := f.Write(headerJSON); err != nil {
		return "", fmt.Errorf("checkpoint: write header: %w", err)
	}
	if _, err := f.Write(payload.Bytes()); err != nil {
		return "", fmt.Errorf("checkpoint: write payload: %w", err)
	}
	checksum := crc32.ChecksumIEEE(payload.Bytes())
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return "", fmt.Errorf("checkpoint: write checksum: %w", err)
	}
	return resolved, nil
}

// Load reads a state dictionary written by Save, verifying the payload
// checksum.
func Load(path string) (map[string]*tensor.Matrix, map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("checkpoint: read %s: %w", path, err)
	}
	r := bytes.NewReader(raw)

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != Magic {
		return nil, nil, fmt.Errorf("checkpoint: %s is not a checkpoint file", path)
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("checkpoint: read version: %w", err)
	}
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("checkpoint: unsupported format version %d", version)
	}
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("checkpoint: read header size: %w", err)
	}
	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("checkpoint: read header: %w", err)
	}
	var hdr header
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return nil, nil, fmt.Errorf("checkpoint: decode header: %w", err)
	}

	payloadStart := int64(len(Magic)) + 4 + 8 + int64(headerSize)
	if int64(len(raw)) < payloadStart+4 {
		return nil, nil, fmt.Errorf("checkpoint: truncated file %s", path)
	}
	payload := raw[payloadStart : len(raw)-4]
	stored := binary.LittleEndian.Uint32(raw[len(raw)-4:])
	if crc32.ChecksumIEEE(payload) != stored {
		return nil, nil, fmt.Errorf("checkpoint: checksum mismatch in %s", path)
	}

	state := make(map[string]*tensor.Matrix, len(hdr.Tensors))
	for _, meta := range hdr.Tensors {
		count := meta.Rows * meta.Cols
		end := meta.Offset + int64(4*count)
		if meta.Offset < 0 || end > int64(len(payload)) {
			return nil, nil, fmt.Errorf("checkpoint: tensor %q extends past payload", meta.Name)
		}
		vals := make([]float32, count)
		for i := range vals {
			bits := binary.LittleEndian.Uint32(payload[meta.Offset+int64(4*i):])
			vals[i] = math.Float32frombits(bits)
		}
		m, err := tensor.FromSlice(vals, meta.Rows, meta.Cols)
		if err != nil {
			return nil, nil, fmt.Errorf("checkpoint: tensor %q: %w", meta.Name, err)
		}
		state[meta.Name] = m
	}
	return state, hdr.Metadata, nil
}

// OutputDir creates and returns <root>/<model>/<date>, the canonical
// location for a training run's artefacts.
func OutputDir(root, model string) (string, error) {
	date := strings.ReplaceAll(time.Now().Format("2006-01-02"), "-", "_")
	dir := filepath.Join(root, model, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("checkpoint: create output dir: %w", err)
	}
	return dir, nil
}
