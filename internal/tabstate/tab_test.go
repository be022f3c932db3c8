// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package tabstate

import (
	"errors"
	"testing"

	"github.com/SomethingNew71/UltraLog/pkg/schema"
)

func testLog(seconds int) *schema.Log {
	l := &schema.Log{ID: schema.NewLogID(), Format: schema.FormatHaltech}
	for i := 0; i <= seconds*10; i++ {
		l.Time = append(l.Time, float64(i)*0.1)
	}
	for c := 0; c < 12; c++ {
		ch := &schema.Channel{ID: c, Name: "ch", Samples: make([]schema.Float, len(l.Time))}
		l.Channels = append(l.Channels, ch)
	}
	return l
}

func TestInitialViewport(t *testing.T) {
	long := newTab(1, "/a", testLog(300))
	if long.viewMin != 0.0 || long.viewMax != 60.0 {
		t.Errorf("expected first 60s, got [%v, %v]", long.viewMin, long.viewMax)
	}

	short := newTab(2, "/b", testLog(10))
	if short.viewMin != 0.0 || short.viewMax != 10.0 {
		t.Errorf("short log must show everything, got [%v, %v]", short.viewMin, short.viewMax)
	}
}

func TestSelectionRules(t *testing.T) {
	tab := newTab(1, "/a", testLog(10))

	if err := tab.Select(0); err != nil {
		t.Fatal(err)
	}
	if err := tab.Select(0); !errors.Is(err, ErrAlreadySelected) {
		t.Fatalf("expected ErrAlreadySelected, got %v", err)
	}
	if err := tab.Select(99); !errors.Is(err, ErrUnknownChannel) {
		t.Fatalf("expected ErrUnknownChannel, got %v", err)
	}

	for c := 1; c < MaxSelections; c++ {
		if err := tab.Select(c); err != nil {
			t.Fatal(err)
		}
	}
	if err := tab.Select(10); !errors.Is(err, ErrSelectionFull) {
		t.Fatalf("expected ErrSelectionFull, got %v", err)
	}

	snap := tab.Snapshot()
	if len(snap.Selected) != MaxSelections {
		t.Fatalf("expected %d selections, got %d", MaxSelections, len(snap.Selected))
	}
}

func TestColorAssignment(t *testing.T) {
	tab := newTab(1, "/a", testLog(10))

	tab.Select(0)
	tab.Select(1)
	tab.Select(2)
	tab.Deselect(1)
	tab.Select(3)

	snap := tab.Snapshot()
	colors := map[int]int{}
	for _, sel := range snap.Selected {
		colors[sel.ChannelID] = sel.ColorIndex
	}

	if colors[0] != 0 || colors[2] != 2 {
		t.Errorf("existing colors must not be renumbered: %v", colors)
	}
	// The freed index is reused for the newest selection.
	if colors[3] != 1 {
		t.Errorf("expected freed color 1 for channel 3, got %d", colors[3])
	}
}

func TestCursorClamping(t *testing.T) {
	tab := newTab(1, "/a", testLog(10))

	tab.SetCursor(-5.0)
	if tab.Snapshot().Cursor != 0.0 {
		t.Error("cursor must clamp at the start")
	}
	tab.SetCursor(99.0)
	if tab.Snapshot().Cursor != 10.0 {
		t.Error("cursor must clamp at the end")
	}
	tab.SetCursor(5.0)
	if tab.Snapshot().Cursor != 5.0 {
		t.Error("in-range cursor must stick")
	}
}

func TestViewport(t *testing.T) {
	tab := newTab(1, "/a", testLog(100))

	if err := tab.SetViewport(20, 30); err != nil {
		t.Fatal(err)
	}
	if err := tab.SetViewport(30, 20); !errors.Is(err, ErrBadViewport) {
		t.Fatal("inverted bounds must be rejected")
	}

	// Out-of-range requests clamp into the log.
	if err := tab.SetViewport(-10, 2000); err != nil {
		t.Fatal(err)
	}
	snap := tab.Snapshot()
	if snap.ViewMin != 0.0 || snap.ViewMax != 100.0 {
		t.Errorf("expected clamped full range, got [%v, %v]", snap.ViewMin, snap.ViewMax)
	}

	tab.SetViewport(20, 30)
	tab.ResetZoom()
	snap = tab.Snapshot()
	if snap.ViewMin != 0.0 || snap.ViewMax != 100.0 {
		t.Errorf("reset must restore the full range, got [%v, %v]", snap.ViewMin, snap.ViewMax)
	}
}

func TestManagerOpenClose(t *testing.T) {
	m := NewManager(nil, nil, nil, nil)

	tab, err := m.Open("/logs/run1.csv", testLog(10))
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := m.TabByPath("/logs/run1.csv"); !ok || id != int(tab.ID()) {
		t.Fatal("open tab must be findable by path")
	}

	if _, err := m.Open("/logs/run1.csv", testLog(10)); err == nil {
		t.Fatal("second open of one path must be refused")
	}

	m.Close(tab.ID())
	if _, ok := m.TabByPath("/logs/run1.csv"); ok {
		t.Fatal("closed tab must release its path")
	}
	if len(m.List()) != 0 {
		t.Fatal("expected no open tabs")
	}
}

func TestManagerNormalization(t *testing.T) {
	cfg := &schema.ProgramConfig{NormalizationEnabled: true}
	m := NewManager(cfg, nil, nil, nil)

	l := testLog(10)
	l.Channels[0].Name = "Act_AFR"
	// Without a normalizer instance names stay as parsed.
	tab, err := m.Open("/logs/x.csv", l)
	if err != nil {
		t.Fatal(err)
	}
	if tab.Log().Channels[0].Name != "Act_AFR" {
		t.Fatal("no normalizer, no rename")
	}
}
