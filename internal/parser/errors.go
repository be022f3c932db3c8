// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package parser

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedFormat is returned when the detector matches none of
// the known wire formats.
var ErrUnrecognizedFormat = errors.New("file format not recognized")

// TruncatedFileError reports a file that ends before its declared
// content does.
type TruncatedFileError struct {
	Offset int64
}

func (e *TruncatedFileError) Error() string {
	return fmt.Sprintf("file truncated at offset %d", e.Offset)
}

// InconsistentRowError reports a data row whose field count does not
// match the header.
type InconsistentRowError struct {
	Line     int
	Expected int
	Got      int
}

func (e *InconsistentRowError) Error() string {
	return fmt.Sprintf("line %d: expected %d fields, got %d", e.Line, e.Expected, e.Got)
}

// UnsupportedVersionError reports an MLG file with a version outside
// the accepted range.
type UnsupportedVersionError struct {
	Got int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported format version %d", e.Got)
}

// InvalidUtf8Error reports undecodable text in a header field.
type InvalidUtf8Error struct {
	Offset int64
}

func (e *InvalidUtf8Error) Error() string {
	return fmt.Sprintf("invalid utf8 at offset %d", e.Offset)
}
