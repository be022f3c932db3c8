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

// ECUMaster CSV: one header line of hierarchical channel paths with
// the unit in trailing parentheses ('Engine.Rpm (rpm)'), data rows
// below. The delimiter is whichever of ';' or tab yields more columns
// on the header line. Decimal commas are accepted.
func parseEcumaster(ctx context.Context, data []byte, progress Progress) (*schema.Log, error) {
	lines := splitLines(data)

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) {
		return nil, ErrUnrecognizedFormat
	}

	header := strings.TrimRight(lines[i], "\r")
	delim := ";"
	if strings.Count(header, "\t") > strings.Count(header, ";") {
		delim = "\t"
	}
	headers := strings.Split(header, delim)
	if len(headers) < 2 {
		return nil, ErrUnrecognizedFormat
	}
	i++

	l := &schema.Log{}
	timeCol := -1
	for c, h := range headers {
		path, unitStr := splitUnitSuffix(strings.TrimSpace(h))
		leaf := path
		if idx := strings.LastIndex(path, "."); idx >= 0 {
			leaf = path[idx+1:]
		}
		if timeCol < 0 && strings.EqualFold(leaf, "time") {
			timeCol = c
		}

		u, kind := kindForUnit(unitStr)
		l.Channels = append(l.Channels, &schema.Channel{
			ID:         c,
			RawName:    path,
			Name:       leaf,
			Kind:       kind,
			SourceUnit: u,
		})
	}
	if timeCol < 0 {
		log.Debug("PARSER/ECUMASTER > no time column, using row index as time base")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	expected := len(headers)
	rows := 0
	for ; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, delim)
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

// splitUnitSuffix splits 'Engine.Rpm (rpm)' into the channel path and
// the unit string. A header without parentheses has no unit.
func splitUnitSuffix(h string) (path string, unit string) {
	if !strings.HasSuffix(h, ")") {
		return h, ""
	}
	idx := strings.LastIndex(h, "(")
	if idx < 0 {
		return h, ""
	}
	return strings.TrimSpace(h[:idx]), strings.TrimSpace(h[idx+1 : len(h)-1])
}
