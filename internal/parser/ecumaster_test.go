// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/SomethingNew71/UltraLog/pkg/schema"
	"github.com/SomethingNew71/UltraLog/pkg/units"
)

func TestEcumasterBasic(t *testing.T) {
	data := []byte("Engine.Rpm (rpm);Coolant.Temp (°C)\n1000;85\n2000;90\n")
	l, err := Parse(context.Background(), data, nil)
	if err != nil {
		t.Fatal(err)
	}

	if l.Format != schema.FormatEcumaster {
		t.Errorf("expected ecumaster format, got %s", l.Format)
	}
	if len(l.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(l.Channels))
	}

	rpm := l.Channels[0]
	if rpm.RawName != "Engine.Rpm" || rpm.Name != "Rpm" {
		t.Errorf("unexpected names raw=%q display=%q", rpm.RawName, rpm.Name)
	}
	if rpm.SourceUnit != units.Rpm {
		t.Errorf("expected rpm unit, got %s", rpm.SourceUnit)
	}

	temp := l.Channels[1]
	if temp.RawName != "Coolant.Temp" || temp.SourceUnit != units.Celsius {
		t.Errorf("unexpected channel raw=%q unit=%s", temp.RawName, temp.SourceUnit)
	}

	if rpm.Samples[0] != 1000 || rpm.Samples[1] != 2000 ||
		temp.Samples[0] != 85 || temp.Samples[1] != 90 {
		t.Error("samples do not match input")
	}
}

func TestEcumasterTabDelimiter(t *testing.T) {
	data := []byte("Engine.Rpm (rpm)\tEngine.Map (kPa)\n1000\t101.3\n1500\t95\n")
	l, err := Parse(context.Background(), data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(l.Channels))
	}
	if l.Channels[1].Kind != units.Pressure {
		t.Errorf("expected pressure kind, got %s", l.Channels[1].Kind)
	}
}

func TestEcumasterDecimalComma(t *testing.T) {
	data := []byte("Engine.Lambda (λ);Engine.Batt (V)\n0,85;13,8\n1,02;14,1\n")
	l, err := Parse(context.Background(), data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.Channels[0].Samples[0] != 0.85 || l.Channels[1].Samples[1] != 14.1 {
		t.Errorf("decimal commas must parse, got %v and %v",
			l.Channels[0].Samples[0], l.Channels[1].Samples[1])
	}
}

func TestEcumasterTimeColumn(t *testing.T) {
	data := []byte("Log.Time (s);Engine.Rpm (rpm)\n0,0;1000\n0,5;1500\n1,0;2000\n")
	l, err := Parse(context.Background(), data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.Time[0] != 0.0 || l.Time[1] != 0.5 || l.Time[2] != 1.0 {
		t.Errorf("unexpected time base %v", l.Time)
	}
}

func TestEcumasterNoTimeColumn(t *testing.T) {
	data := []byte("Engine.Rpm (rpm);Coolant.Temp (°C)\n1000;85\n2000;90\n")
	l, err := Parse(context.Background(), data, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Row index fallback.
	if l.Time[0] != 0.0 || l.Time[1] != 1.0 {
		t.Errorf("unexpected fallback time base %v", l.Time)
	}
}

func TestEcumasterInconsistentRow(t *testing.T) {
	data := []byte("Engine.Rpm (rpm);Coolant.Temp (°C)\n1000;85\n2000\n")
	_, err := Parse(context.Background(), data, nil)

	var rowErr *InconsistentRowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("expected InconsistentRowError, got %v", err)
	}
	if rowErr.Expected != 2 || rowErr.Got != 1 {
		t.Errorf("unexpected error details %+v", rowErr)
	}
}

func TestEcumasterNoUnit(t *testing.T) {
	data := []byte("Engine.Rpm (rpm);Custom.Thing\n1000;1\n2000;2\n")
	l, err := Parse(context.Background(), data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.Channels[1].Kind != units.KindUnknown {
		t.Errorf("missing unit must yield unknown kind, got %s", l.Channels[1].Kind)
	}
}
