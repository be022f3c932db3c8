// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package parser

import (
	"bytes"
	"strings"

	"github.com/SomethingNew71/UltraLog/pkg/schema"
)

// DetectionWindow is the largest prefix Detect inspects. Callers may
// hand over the whole file; anything past the window is ignored.
const DetectionWindow = 64 * 1024

var mlgMagic = []byte("MLVLG\x00")

// Detect classifies the input by content. Extensions are advisory
// only; parsers re-read the bytes from the start, Detect consumes
// nothing. The rules run in order:
//
//  1. MLG magic in the first six bytes.
//  2. First non-whitespace line starts with '%DataLog%' (Haltech).
//  3. First non-blank line is a semicolon or tab row and the second
//     line repeats the delimiter count (ECUMaster).
func Detect(head []byte) (schema.Format, error) {
	if len(head) > DetectionWindow {
		head = head[:DetectionWindow]
	}

	if bytes.HasPrefix(head, mlgMagic) {
		return schema.FormatMlg, nil
	}

	if strings.HasPrefix(strings.TrimLeft(string(head), " \t\r\n"), "%DataLog%") {
		return schema.FormatHaltech, nil
	}

	if isEcumaster(head) {
		return schema.FormatEcumaster, nil
	}

	return "", ErrUnrecognizedFormat
}

func isEcumaster(head []byte) bool {
	lines := nonBlankLines(head, 2)
	if len(lines) < 2 {
		return false
	}

	for _, delim := range []string{";", "\t"} {
		n := strings.Count(lines[0], delim)
		if n > 0 && strings.Count(lines[1], delim) == n {
			return true
		}
	}
	return false
}

func nonBlankLines(data []byte, max int) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == max {
			break
		}
	}
	return out
}
