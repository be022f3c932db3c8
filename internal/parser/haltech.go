// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package parser

import (
	"context"
	"strings"

	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/SomethingNew71/UltraLog/pkg/schema"
)

// Haltech CSV layout: a '%DataLog%' tag line, a channel-name row, a
// unit row, optionally labeled min/max rows, then comma separated data
// rows. The header ends at the first blank line or the first purely
// numeric line.
func parseHaltech(ctx context.Context, data []byte, progress Progress) (*schema.Log, error) {
	lines := splitLines(data)

	// Header phase.
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) || !strings.HasPrefix(strings.TrimSpace(lines[i]), "%DataLog%") {
		return nil, ErrUnrecognizedFormat
	}
	meta := schema.Metadata{Firmware: strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[i]), "%DataLog%"))}
	i++

	var names, unitStrs []string
	dataStart := -1
	for ; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if names != nil {
				dataStart = i + 1
				break
			}
			continue
		}
		if names != nil && numericRow(line) {
			dataStart = i
			break
		}

		fields := strings.Split(line, ",")
		switch {
		case names == nil:
			names = trimFields(fields)
		case unitStrs == nil:
			unitStrs = trimFields(fields)
		default:
			// Labeled min/max rows are advisory only; bounds are
			// recomputed from the samples regardless.
			log.Debugf("PARSER/HALTECH > ignoring header row %q", fields[0])
		}
	}

	if names == nil || dataStart < 0 {
		return nil, &TruncatedFileError{Offset: int64(len(data))}
	}
	if unitStrs == nil {
		unitStrs = make([]string, len(names))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeCol := -1
	for c, n := range names {
		if strings.EqualFold(n, "time") {
			timeCol = c
			break
		}
	}
	if timeCol < 0 {
		log.Warn("PARSER/HALTECH > no Time column, using row index as time base")
	}

	// The time column stays a selectable channel besides being the
	// time base.
	l := &schema.Log{Meta: meta}
	for c, n := range names {
		unitStr := ""
		if c < len(unitStrs) {
			unitStr = unitStrs[c]
		}
		u, kind := kindForUnit(unitStr)
		l.Channels = append(l.Channels, &schema.Channel{
			ID:         c,
			RawName:    n,
			Name:       n,
			Kind:       kind,
			SourceUnit: u,
		})
	}

	// Row phase.
	expected := len(names)
	rows := 0
	for i = dataStart; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != expected {
			return nil, &InconsistentRowError{Line: i + 1, Expected: expected, Got: len(fields)}
		}

		if timeCol >= 0 {
			t, err := parseFloat(strings.TrimSpace(fields[timeCol]))
			if err != nil {
				return nil, &InconsistentRowError{Line: i + 1, Expected: expected, Got: len(fields)}
			}
			l.Time = append(l.Time, t)
		} else {
			l.Time = append(l.Time, float64(rows))
		}
		for c := range l.Channels {
			l.Channels[c].Samples = append(l.Channels[c].Samples, parseSample(fields[c]))
		}

		rows++
		if rows%rowBlockSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			report(progress, float64(i)/float64(len(lines)))
		}
	}

	clampTime(l.Time)
	report(progress, 1.0)
	return l, nil
}

func splitLines(data []byte) []string {
	return strings.Split(string(data), "\n")
}

func trimFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

// numericRow reports whether every field of the line parses as a
// number. Such a line is the first data row.
func numericRow(line string) bool {
	fields := strings.Split(line, ",")
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, err := parseFloat(f); err != nil {
			return false
		}
	}
	return true
}
