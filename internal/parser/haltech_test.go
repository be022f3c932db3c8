// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/SomethingNew71/UltraLog/pkg/schema"
	"github.com/SomethingNew71/UltraLog/pkg/units"
)

func haltechFixture(rows int) []byte {
	var b strings.Builder
	b.WriteString("%DataLog% NSP 2.31\n")
	b.WriteString("Time,RPM,AFR\n")
	b.WriteString("s,rpm,afr\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,%d,14.7\n", i, 1000+10*i)
	}
	return []byte(b.String())
}

func TestHaltechBasic(t *testing.T) {
	l, err := Parse(context.Background(), haltechFixture(1000), nil)
	if err != nil {
		t.Fatal(err)
	}

	if l.Format != schema.FormatHaltech {
		t.Errorf("expected haltech format, got %s", l.Format)
	}
	if len(l.Channels) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(l.Channels))
	}
	if l.Time[0] != 0.0 || l.Time[999] != 999.0 {
		t.Errorf("unexpected time base [%v, %v]", l.Time[0], l.Time[999])
	}

	rpm := l.Channels[1]
	if rpm.Name != "RPM" || rpm.Kind != units.Rotation {
		t.Errorf("unexpected channel %q kind %s", rpm.Name, rpm.Kind)
	}
	if rpm.Min != 1000.0 || rpm.Max != 10990.0 {
		t.Errorf("expected RPM bounds [1000, 10990], got [%v, %v]", rpm.Min, rpm.Max)
	}

	afr := l.Channels[2]
	if afr.Min != 14.7 || afr.Max != 14.7 {
		t.Errorf("expected constant AFR 14.7, got [%v, %v]", afr.Min, afr.Max)
	}

	if !l.CheckInvariants() {
		t.Fatal("invariants must hold")
	}
}

func TestHaltechBlankLineEndsHeader(t *testing.T) {
	data := []byte("%DataLog%\nTime,RPM\ns,rpm\n\n0,1000\n1,2000\n")
	l, err := Parse(context.Background(), data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Time) != 2 || l.Time[1] != 1.0 {
		t.Fatalf("unexpected time vector %v", l.Time)
	}
}

func TestHaltechGaps(t *testing.T) {
	data := []byte("%DataLog%\nTime,RPM\ns,rpm\n0,1000\n1,\n2,3000\n")
	l, err := Parse(context.Background(), data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !l.Channels[1].Samples[1].IsNaN() {
		t.Error("empty field must become a NaN gap")
	}
	if l.Channels[1].Min != 1000.0 || l.Channels[1].Max != 3000.0 {
		t.Errorf("bounds must skip gaps, got [%v, %v]", l.Channels[1].Min, l.Channels[1].Max)
	}
}

func TestHaltechInconsistentRow(t *testing.T) {
	data := []byte("%DataLog%\nTime,RPM\ns,rpm\n0,1000\n1,2000,extra\n")
	_, err := Parse(context.Background(), data, nil)

	var rowErr *InconsistentRowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("expected InconsistentRowError, got %v", err)
	}
	if rowErr.Line != 5 || rowErr.Expected != 2 || rowErr.Got != 3 {
		t.Errorf("unexpected error details %+v", rowErr)
	}
}

func TestHaltechCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, haltechFixture(20000), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHaltechProgress(t *testing.T) {
	var last float64
	_, err := Parse(context.Background(), haltechFixture(10000), func(f float64) { last = f })
	if err != nil {
		t.Fatal(err)
	}
	if last != 1.0 {
		t.Errorf("expected final progress 1.0, got %v", last)
	}
}
