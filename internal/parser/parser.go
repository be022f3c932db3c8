// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Parsing of the three supported ECU log formats into schema.Log.
// Parsers receive the full file bytes, re-read from the start and
// yield at phase boundaries so the ingest scheduler can cancel them.
package parser

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/SomethingNew71/UltraLog/pkg/schema"
	"github.com/SomethingNew71/UltraLog/pkg/units"
)

// Progress receives the parse progress in [0, 1]. May be nil.
type Progress func(fraction float64)

// How many data rows are parsed between two cancellation checks and
// progress reports.
const rowBlockSize = 4096

// Parse detects the format and runs the matching parser. All errors
// are file-level and recovered at the ingest scheduler boundary.
func Parse(ctx context.Context, data []byte, progress Progress) (*schema.Log, error) {
	format, err := Detect(data)
	if err != nil {
		return nil, err
	}

	var l *schema.Log
	switch format {
	case schema.FormatHaltech:
		l, err = parseHaltech(ctx, data, progress)
	case schema.FormatEcumaster:
		l, err = parseEcumaster(ctx, data, progress)
	case schema.FormatMlg:
		l, err = parseMlg(ctx, data, progress)
	}
	if err != nil {
		return nil, err
	}

	finalize(l, format)
	return l, nil
}

func finalize(l *schema.Log, format schema.Format) {
	l.ID = schema.NewLogID()
	l.Format = format
	for _, c := range l.Channels {
		c.FinalizeBounds()
	}
	if !l.CheckInvariants() {
		// A parser handed out a malformed Log. That is a bug in the
		// parser, not a property of the file.
		log.Panic("PARSER > log invariants violated after parse")
	}
}

// kindForUnit derives the quantity kind from a raw unit string. A
// missing or unmatched unit leaves the kind unknown.
func kindForUnit(raw string) (units.Unit, units.Kind) {
	u := units.NewUnit(raw)
	if u == units.None {
		return units.None, units.KindUnknown
	}
	return u, u.Kind()
}

// parseSample parses one CSV field into a sample. Anything that is not
// a finite number becomes a NaN gap.
func parseSample(field string) schema.Float {
	field = strings.TrimSpace(field)
	if field == "" {
		return schema.NaN
	}
	v, err := parseFloat(field)
	if err != nil {
		return schema.NaN
	}
	return schema.Float(v)
}

// parseFloat accepts both decimal points and decimal commas.
func parseFloat(s string) (float64, error) {
	if strings.ContainsRune(s, ',') {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}

// clampTime enforces the non-decreasing time invariant. ECUs
// occasionally emit a stray backwards timestamp around logger
// restarts; those are pulled up to the previous sample.
func clampTime(time []float64) {
	warned := false
	for i := 1; i < len(time); i++ {
		if time[i] < time[i-1] {
			if !warned {
				log.Warnf("PARSER > non-monotonic timestamp %g after %g, clamping", time[i], time[i-1])
				warned = true
			}
			time[i] = time[i-1]
		}
		if math.IsNaN(time[i]) {
			time[i] = time[i-1]
		}
	}
}

func report(progress Progress, fraction float64) {
	if progress != nil {
		progress(fraction)
	}
}
