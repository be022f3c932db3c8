// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/SomethingNew71/UltraLog/pkg/units"
)

// Format tags the wire format a log was parsed from.
type Format string

const (
	FormatHaltech   Format = "haltech"
	FormatEcumaster Format = "ecumaster"
	FormatMlg       Format = "mlg"
)

// Metadata carries the optional header information a parser found.
type Metadata struct {
	Firmware     string  `json:"firmware,omitempty"`
	SampleRateHz float64 `json:"sampleRate,omitempty"`
	CapturedAt   int64   `json:"capturedAt,omitempty"`
}

// Channel is one measured signal. The sample vector always has the
// same length as the owning Log's time vector; gaps are NaN. Samples
// stay in SourceUnit forever, display conversion happens on read.
type Channel struct {
	ID         int
	RawName    string
	Name       string
	Kind       units.Kind
	SourceUnit units.Unit
	Samples    []Float

	// Min/Max over finite samples, NaN when there are none.
	Min float64
	Max float64
}

// FinalizeBounds recomputes Min/Max from the finite samples. Parsers
// call this once per channel; declared bounds in file headers are
// advisory only and never trusted.
func (c *Channel) FinalizeBounds() {
	min, max := math.NaN(), math.NaN()
	for _, s := range c.Samples {
		v := float64(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	c.Min, c.Max = min, max
}

// Log is one parsed file. It is immutable after construction: parsers
// build it, verify the length invariant, and publish it through the
// ingest scheduler. The tab manager then normalizes channel names and
// sets Path once, before the tab becomes visible; nothing mutates it
// afterwards.
type Log struct {
	ID       uint64
	Path     string
	Format   Format
	Meta     Metadata
	Time     []float64
	Channels []*Channel
}

var nextLogID atomic.Uint64

// NewLogID returns a process-unique id used to key downsample cache
// entries after the Log itself is gone.
func NewLogID() uint64 {
	return nextLogID.Add(1)
}

// Channel returns the channel with the given id or nil.
func (l *Log) Channel(id int) *Channel {
	for _, c := range l.Channels {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Duration returns the covered time span in seconds.
func (l *Log) Duration() float64 {
	if len(l.Time) == 0 {
		return 0
	}
	return l.Time[len(l.Time)-1] - l.Time[0]
}

// LookupIndex returns the largest index i with Time[i] <= t, or -1 if
// t lies before the first sample. This is the cursor-tracking hot path
// and must stay O(log n).
func (l *Log) LookupIndex(t float64) int {
	if len(l.Time) == 0 || t < l.Time[0] {
		return -1
	}
	// First index with Time[i] > t, minus one.
	i := sort.Search(len(l.Time), func(i int) bool { return l.Time[i] > t })
	return i - 1
}

// CheckInvariants verifies the length invariant all parsers must
// uphold. A violation is a parser bug, not a file problem.
func (l *Log) CheckInvariants() bool {
	for _, c := range l.Channels {
		if len(c.Samples) != len(l.Time) {
			return false
		}
	}
	for i := 1; i < len(l.Time); i++ {
		if l.Time[i] < l.Time[i-1] {
			return false
		}
	}
	return true
}
