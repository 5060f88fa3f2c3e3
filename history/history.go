// Copyright 2026 The multiview-models Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package history records named loss series across training epochs.
//
// The trainer initialises a Logger with the field names of the first loss
// record and appends one record per epoch. Downstream consumers (plotting,
// experiment tracking) read the accumulated series; WriteCSV exports them in
// a form any external tool can ingest.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Logger accumulates named scalar series across epochs.
//
// The set of field names fixed by OnTrainInit must equal the key set of
// every record subsequently passed to OnStepFi.
type Logger struct {
	keys    []string
	history map[string][]float32
}

// New creates an empty Logger. OnTrainInit must be called before records are
// appended.
func New() *Logger {
	return &Logger{history: make(map[string][]float32)}
}

// OnTrainInit fixes the loss field names for this run and resets any
// previously recorded series.
func (l *Logger) OnTrainInit(keys []string) {
	l.keys = append([]string(nil), keys...)
	l.history = make(map[string][]float32, len(keys))
	for _, k := range keys {
		l.history[k] = nil
	}
}

// OnStepFi appends one record to every series.
// The record's key set must match the keys passed to OnTrainInit.
func (l *Logger) OnStepFi(record map[string]float32) error {
	if l.keys == nil {
		return fmt.Errorf("history: OnStepFi called before OnTrainInit")
	}
	if len(record) != len(l.keys) {
		return fmt.Errorf("history: record has %d fields, logger tracks %d", len(record), len(l.keys))
	}
	for _, k := range l.keys {
		v, ok := record[k]
		if !ok {
			return fmt.Errorf("history: record is missing field %q", k)
		}
		l.history[k] = append(l.history[k], v)
	}
	return nil
}

// Keys returns the tracked field names in their initialisation order.
func (l *Logger) Keys() []string {
	return append([]string(nil), l.keys...)
}

// Series returns the recorded values for one field.
func (l *Logger) Series(key string) []float32 {
	return l.history[key]
}

// Len returns the number of records appended so far.
func (l *Logger) Len() int {
	if len(l.keys) == 0 {
		return 0
	}
	return len(l.history[l.keys[0]])
}

// WriteCSV writes the history as one epoch-indexed row per record.
func (l *Logger) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"epoch"}, l.keys...)); err != nil {
		return fmt.Errorf("history: write header: %w", err)
	}
	for i := 0; i < l.Len(); i++ {
		row := make([]string, 0, len(l.keys)+1)
		row = append(row, strconv.Itoa(i+1))
		for _, k := range l.keys {
			row = append(row, strconv.FormatFloat(float64(l.history[k][i]), 'g', -1, 32))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("history: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
