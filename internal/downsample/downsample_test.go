// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package downsample

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/SomethingNew71/UltraLog/pkg/schema"
	"github.com/SomethingNew71/UltraLog/pkg/units"
)

func testLog(n int) *schema.Log {
	l := &schema.Log{ID: schema.NewLogID(), Format: schema.FormatHaltech}
	ch := &schema.Channel{ID: 0, Name: "RPM", Kind: units.Rotation, SourceUnit: units.Rpm}
	for i := 0; i < n; i++ {
		l.Time = append(l.Time, float64(i)*0.01)
		ch.Samples = append(ch.Samples, schema.Float(math.Sin(float64(i)/50.0)*3000+4000))
	}
	ch.FinalizeBounds()
	l.Channels = []*schema.Channel{ch}
	return l
}

func TestDownsampleReduces(t *testing.T) {
	l := testLog(50000)
	c := New(DefaultBudget)

	vp := Viewport{Min: 0, Max: 500}
	s, err := c.Get(context.Background(), l, 0, vp, 200)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 200 {
		t.Fatalf("expected 200 points, got %d", len(s))
	}
	if s[0].T != 0.0 {
		t.Errorf("first point must be the slice start, got %v", s[0].T)
	}
}

func TestDownsampleDeterministic(t *testing.T) {
	l := testLog(10000)
	c := New(DefaultBudget)
	vp := Viewport{Min: 10, Max: 60}

	a, err := c.Get(context.Background(), l, 0, vp, 300)
	if err != nil {
		t.Fatal(err)
	}
	// Second call is a cache hit and must be identical.
	b, err := c.Get(context.Background(), l, 0, vp, 300)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatal("two calls differ in length")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("two calls differ at %d", i)
		}
	}

	// And a fresh cache recomputes the same series.
	fresh, _ := New(DefaultBudget).Get(context.Background(), l, 0, vp, 300)
	for i := range a {
		if a[i] != fresh[i] {
			t.Fatalf("recomputation differs at %d", i)
		}
	}
}

func TestDownsampleSmallViewport(t *testing.T) {
	l := testLog(1000)
	c := New(DefaultBudget)

	// Fewer points in the viewport than buckets: no reduction.
	s, err := c.Get(context.Background(), l, 0, Viewport{Min: 0, Max: 0.505}, 2000)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 51 {
		t.Fatalf("expected 51 raw points, got %d", len(s))
	}

	// Empty viewport yields an empty series.
	s, err = c.Get(context.Background(), l, 0, Viewport{Min: 100, Max: 200}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 0 {
		t.Fatalf("expected empty series, got %d points", len(s))
	}
}

func TestInvalidViewport(t *testing.T) {
	l := testLog(100)
	c := New(DefaultBudget)

	for _, vp := range []Viewport{
		{Min: math.NaN(), Max: 1},
		{Min: 0, Max: math.NaN()},
		{Min: 2, Max: 1},
		{Min: 1, Max: 1},
	} {
		if _, err := c.Get(context.Background(), l, 0, vp, 100); !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("viewport %+v: expected ErrInvalidViewport, got %v", vp, err)
		}
	}
}

func TestKeyCapturesIdentity(t *testing.T) {
	a, err := NewKey(1, 0, Viewport{Min: 0.0, Max: 1.0}, 100)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewKey(1, 0, Viewport{Min: math.Copysign(0.0, -1), Max: 1.0}, 100)
	if a == b {
		t.Error("-0.0 and +0.0 viewports must key differently")
	}

	c, _ := NewKey(1, 0, Viewport{Min: 0.0, Max: 1.0}, 100)
	if a != c {
		t.Error("identical viewports must share a key")
	}
}

func TestDropLog(t *testing.T) {
	l1 := testLog(1000)
	l2 := testLog(1000)
	c := New(DefaultBudget)
	ctx := context.Background()

	c.Get(ctx, l1, 0, Viewport{Min: 0, Max: 5}, 100)
	c.Get(ctx, l1, 0, Viewport{Min: 0, Max: 2}, 100)
	c.Get(ctx, l2, 0, Viewport{Min: 0, Max: 5}, 100)

	if n := c.DropLog(l1.ID); n != 2 {
		t.Fatalf("expected 2 dropped entries, got %d", n)
	}
	if entries, _, _ := c.Stats(); entries != 1 {
		t.Fatalf("expected 1 surviving entry, got %d", entries)
	}
}

func TestConvertSeries(t *testing.T) {
	s := Series{{T: 0, V: 100}, {T: 1, V: schema.NaN}, {T: 2, V: 200}}
	out, err := ConvertSeries(s, units.Kilopascal, units.Psi)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(float64(out[0].V)-14.5038) > 1e-3 {
		t.Errorf("expected 14.5038 psi, got %v", out[0].V)
	}
	if !out[1].V.IsNaN() {
		t.Error("NaN gap must survive conversion")
	}
	// Source series untouched.
	if s[0].V != 100 {
		t.Error("cached series must not be mutated")
	}
}
