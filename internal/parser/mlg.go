// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package parser

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/SomethingNew71/UltraLog/pkg/schema"
)

// MegaLogViewer binary layout, all integers big-endian:
//
//	offset  size  field
//	0       6     magic 'MLVLG\0'
//	6       2     format version (1 or 2)
//	8       2     field count F
//	10      4     record count R
//	14      2     record length L
//	16      F*55  field descriptors
//	...           payload (v2: 8 byte epoch, then 4 byte timestamp per record)
//
// Each descriptor: type(1) name(34) units(10) scale(f32) translate(f32)
// digits(1) flags(1). Sample value = raw*scale + translate.
const (
	mlgHeaderSize     = 16
	mlgDescriptorSize = 55
	mlgNameSize       = 34
	mlgUnitsSize      = 10
)

type mlgField struct {
	typeCode  byte
	name      string
	units     string
	scale     float64
	translate float64
	digits    byte
	size      int
}

var mlgTypeSizes = map[byte]int{
	0: 1, // u08
	1: 1, // s08
	2: 2, // u16
	3: 2, // s16
	4: 4, // u32
	5: 4, // s32
	6: 4, // f32
}

func parseMlg(ctx context.Context, data []byte, progress Progress) (*schema.Log, error) {
	if len(data) < mlgHeaderSize {
		return nil, &TruncatedFileError{Offset: int64(len(data))}
	}

	version := int(binary.BigEndian.Uint16(data[6:8]))
	if version != 1 && version != 2 {
		return nil, &UnsupportedVersionError{Got: version}
	}
	fieldCount := int(binary.BigEndian.Uint16(data[8:10]))
	recordCount := int(binary.BigEndian.Uint32(data[10:14]))
	recordLen := int(binary.BigEndian.Uint16(data[14:16]))
	if fieldCount == 0 {
		return nil, &TruncatedFileError{Offset: mlgHeaderSize}
	}

	// Descriptor phase.
	descEnd := mlgHeaderSize + fieldCount*mlgDescriptorSize
	if len(data) < descEnd {
		return nil, &TruncatedFileError{Offset: int64(len(data))}
	}

	fields := make([]mlgField, fieldCount)
	stride := 0
	for i := 0; i < fieldCount; i++ {
		off := mlgHeaderSize + i*mlgDescriptorSize
		d := data[off : off+mlgDescriptorSize]

		size, ok := mlgTypeSizes[d[0]]
		if !ok {
			return nil, &InconsistentRowError{Line: i, Expected: len(mlgTypeSizes) - 1, Got: int(d[0])}
		}

		name, err := mlgString(d[1:1+mlgNameSize], int64(off+1))
		if err != nil {
			return nil, err
		}
		unitsStr, err := mlgString(d[1+mlgNameSize:1+mlgNameSize+mlgUnitsSize], int64(off+1+mlgNameSize))
		if err != nil {
			return nil, err
		}

		fields[i] = mlgField{
			typeCode:  d[0],
			name:      name,
			units:     unitsStr,
			scale:     float64(math.Float32frombits(binary.BigEndian.Uint32(d[45:49]))),
			translate: float64(math.Float32frombits(binary.BigEndian.Uint32(d[49:53]))),
			digits:    d[53],
			size:      size,
		}
		stride += size
	}
	if stride != recordLen {
		return nil, &InconsistentRowError{Line: 0, Expected: recordLen, Got: stride}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Record phase. Version 2 prepends an 8 byte epoch to the payload
	// and a 4 byte millisecond timestamp to every record; the epoch is
	// ignored for the time base.
	payload := descEnd
	recordStride := recordLen
	l := &schema.Log{}
	if version == 2 {
		if len(data) < payload+8 {
			return nil, &TruncatedFileError{Offset: int64(len(data))}
		}
		l.Meta.CapturedAt = int64(binary.BigEndian.Uint64(data[payload : payload+8]))
		payload += 8
		recordStride += 4
	}
	if len(data) < payload+recordCount*recordStride {
		return nil, &TruncatedFileError{Offset: int64(len(data))}
	}

	// Field 0 is the time field in seconds; it stays a channel too.
	for i, f := range fields {
		u, kind := kindForUnit(f.units)
		l.Channels = append(l.Channels, &schema.Channel{
			ID:         i,
			RawName:    f.name,
			Name:       f.name,
			Kind:       kind,
			SourceUnit: u,
		})
	}

	l.Time = make([]float64, 0, recordCount)
	for r := 0; r < recordCount; r++ {
		rec := data[payload+r*recordStride:]
		if version == 2 {
			ts := binary.BigEndian.Uint32(rec[:4])
			l.Time = append(l.Time, float64(ts)/1000.0)
			rec = rec[4:]
		}

		off := 0
		for i := range fields {
			raw := mlgRaw(fields[i].typeCode, rec[off:off+fields[i].size])
			v := raw*fields[i].scale + fields[i].translate
			l.Channels[i].Samples = append(l.Channels[i].Samples, schema.Float(v))
			off += fields[i].size
		}
		if version == 1 {
			l.Time = append(l.Time, float64(l.Channels[0].Samples[r]))
		}

		if (r+1)%rowBlockSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			report(progress, float64(r+1)/float64(recordCount))
		}
	}

	clampTime(l.Time)
	report(progress, 1.0)
	return l, nil
}

func mlgRaw(typeCode byte, b []byte) float64 {
	switch typeCode {
	case 0:
		return float64(b[0])
	case 1:
		return float64(int8(b[0]))
	case 2:
		return float64(binary.BigEndian.Uint16(b))
	case 3:
		return float64(int16(binary.BigEndian.Uint16(b)))
	case 4:
		return float64(binary.BigEndian.Uint32(b))
	case 5:
		return float64(int32(binary.BigEndian.Uint32(b)))
	case 6:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
	}
	return math.NaN()
}

// mlgString decodes a null-padded descriptor string.
func mlgString(b []byte, offset int64) (string, error) {
	s := strings.TrimRight(string(b), "\x00")
	if !utf8.ValidString(s) {
		return "", &InvalidUtf8Error{Offset: offset}
	}
	return s, nil
}
