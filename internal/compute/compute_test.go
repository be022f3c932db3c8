// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package compute

import (
	"math"
	"testing"

	"github.com/SomethingNew71/UltraLog/pkg/schema"
	"github.com/SomethingNew71/UltraLog/pkg/units"
)

func testLog() *schema.Log {
	return &schema.Log{
		ID:   schema.NewLogID(),
		Time: []float64{0, 1, 2},
		Channels: []*schema.Channel{
			{ID: 0, RawName: "MAP", Name: "Manifold Pressure", Samples: []schema.Float{100, 200, schema.NaN}},
			{ID: 1, RawName: "RPM", Name: "RPM", Samples: []schema.Float{1000, 2000, 3000}},
		},
	}
}

func TestExtend(t *testing.T) {
	l := testLog()
	out := Extend(l, []schema.ComputedChannel{
		{Name: "Boost", Expr: "Manifold_Pressure * 0.145038", Unit: "psi"},
	})

	if len(l.Channels) != 2 {
		t.Fatal("input log must not be mutated")
	}
	if len(out.Channels) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(out.Channels))
	}

	boost := out.Channels[2]
	if boost.ID != 2 || boost.Name != "Boost" {
		t.Errorf("unexpected channel %+v", boost)
	}
	if boost.SourceUnit != units.Psi || boost.Kind != units.Pressure {
		t.Errorf("unit must resolve from definition, got %s/%s", boost.SourceUnit, boost.Kind)
	}
	if math.Abs(float64(boost.Samples[0])-14.5038) > 1e-6 {
		t.Errorf("unexpected sample %v", boost.Samples[0])
	}
	if !boost.Samples[2].IsNaN() {
		t.Error("NaN input must propagate")
	}
}

func TestExtendRawNameBinding(t *testing.T) {
	out := Extend(testLog(), []schema.ComputedChannel{
		{Name: "Load", Expr: "MAP / 100.0"},
	})
	if v := float64(out.Channels[2].Samples[1]); v != 2.0 {
		t.Errorf("raw names must be bound, got %v", v)
	}
}

func TestExtendBadExpression(t *testing.T) {
	l := testLog()
	out := Extend(l, []schema.ComputedChannel{
		{Name: "Broken", Expr: "MAP +* 2"},
	})
	if len(out.Channels) != 2 {
		t.Fatal("uncompilable definitions must be skipped")
	}
}

func TestExtendUndefinedInput(t *testing.T) {
	out := Extend(testLog(), []schema.ComputedChannel{
		{Name: "Ghost", Expr: "NoSuchChannel * 2"},
	})
	if len(out.Channels) != 3 {
		t.Fatal("expected the channel to exist")
	}
	if !AllNaN(out.Channels[2]) {
		t.Error("undefined inputs must evaluate to NaN")
	}
}

func TestIdentifier(t *testing.T) {
	cases := map[string]string{
		"Manifold Pressure": "Manifold_Pressure",
		"Engine.Rpm":        "Engine_Rpm",
		"AFR":               "AFR",
		"Lambda (λ)":        "Lambda____",
	}
	for in, want := range cases {
		if got := Identifier(in); got != want {
			t.Errorf("Identifier(%q): expected %q, got %q", in, want, got)
		}
	}
}
