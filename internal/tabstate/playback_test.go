// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package tabstate

import (
	"math"
	"testing"
	"time"
)

func TestPlaybackAdvance(t *testing.T) {
	tab := newTab(1, "/a", testLog(100))
	start := time.Now()

	tab.SetCursor(10.0)
	tab.Play(start)

	// cursor_after - cursor_before == speed * wall-clock elapsed.
	tab.Tick(start.Add(2*time.Second), false)
	snap := tab.Snapshot()
	if math.Abs(snap.Cursor-12.0) > 1e-6 {
		t.Errorf("expected cursor 12, got %v", snap.Cursor)
	}
	if snap.Playback != Playing {
		t.Error("playback must continue")
	}
}

func TestPlaybackSpeed(t *testing.T) {
	tab := newTab(1, "/a", testLog(100))
	start := time.Now()

	if err := tab.SetSpeed(4.0, start); err != nil {
		t.Fatal(err)
	}
	if err := tab.SetSpeed(3.0, start); err == nil {
		t.Fatal("3x is not a supported speed")
	}

	tab.Play(start)
	tab.Tick(start.Add(5*time.Second), false)
	if c := tab.Snapshot().Cursor; math.Abs(c-20.0) > 1e-6 {
		t.Errorf("expected cursor 20 at 4x, got %v", c)
	}
}

func TestPlaybackStopsAtEnd(t *testing.T) {
	tab := newTab(1, "/a", testLog(10))
	start := time.Now()

	tab.Play(start)
	tab.Tick(start.Add(time.Hour), false)

	snap := tab.Snapshot()
	if snap.Playback != Stopped {
		t.Error("playback must stop at the log end")
	}
	if snap.Cursor != 10.0 {
		t.Errorf("cursor must clamp to the last timestamp, got %v", snap.Cursor)
	}
}

func TestPlaybackPauseAnchors(t *testing.T) {
	tab := newTab(1, "/a", testLog(100))
	start := time.Now()

	tab.Play(start)
	tab.Pause(start.Add(3 * time.Second))
	if c := tab.Snapshot().Cursor; math.Abs(c-3.0) > 1e-6 {
		t.Errorf("pause must keep the advanced cursor, got %v", c)
	}

	// Resuming continues from the paused cursor, not the old anchor.
	resume := start.Add(10 * time.Second)
	tab.Play(resume)
	tab.Tick(resume.Add(time.Second), false)
	if c := tab.Snapshot().Cursor; math.Abs(c-4.0) > 1e-6 {
		t.Errorf("expected cursor 4 after resume, got %v", c)
	}
}

func TestPlaybackStopResets(t *testing.T) {
	tab := newTab(1, "/a", testLog(100))
	start := time.Now()

	tab.Play(start)
	tab.Tick(start.Add(5*time.Second), false)
	tab.Stop()

	snap := tab.Snapshot()
	if snap.Playback != Stopped || snap.Cursor != 0.0 {
		t.Errorf("stop must reset the cursor, got %v at %v", snap.Playback, snap.Cursor)
	}
}

func TestCursorTrackingCentersViewport(t *testing.T) {
	tab := newTab(1, "/a", testLog(300))
	start := time.Now()

	tab.SetViewport(0, 20)
	tab.SetCursor(100.0)
	tab.Play(start)
	tab.Tick(start.Add(time.Second), true)

	snap := tab.Snapshot()
	center := (snap.ViewMin + snap.ViewMax) / 2
	if math.Abs(center-snap.Cursor) > 1e-6 {
		t.Errorf("cursor %v must sit at viewport center %v", snap.Cursor, center)
	}
	if snap.ViewMax-snap.ViewMin != 20.0 {
		t.Error("tracking must translate, not rescale")
	}

	// At the end of the log the viewport clamps instead of centering.
	// Pause first: Play is a no-op while already playing.
	tab.Pause(start.Add(time.Second))
	tab.SetCursor(299.0)
	tab.Play(start)
	tab.Tick(start.Add(10*time.Second), true)
	snap = tab.Snapshot()
	if snap.ViewMax > 300.0+1e-9 || snap.ViewMin < 0.0 {
		t.Errorf("viewport must stay inside the log, got [%v, %v]", snap.ViewMin, snap.ViewMax)
	}
}
