// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Per-document view state: channel selection, cursor, viewport and
// playback. Mutations happen on the UI thread, the renderer reads
// consistent snapshots.
package tabstate

import (
	"errors"
	"sync"
	"time"

	"github.com/SomethingNew71/UltraLog/pkg/schema"
)

type TabID int

// MaxSelections bounds the selection list; equal to the palette size
// so every selection can have a distinct color.
const MaxSelections = PaletteSize

// InitialViewportSeconds is how much of a fresh log is visible.
const InitialViewportSeconds = 60.0

var (
	ErrSelectionFull   = errors.New("selection limit reached")
	ErrAlreadySelected = errors.New("channel already selected")
	ErrUnknownChannel  = errors.New("channel not in this log")
	ErrBadViewport     = errors.New("viewport bounds out of order")
)

// Selection pairs a channel with its palette slot, insertion ordered.
type Selection struct {
	ChannelID  int
	ColorIndex int
}

type PlaybackState int

const (
	Stopped PlaybackState = iota
	Playing
	Paused
)

// Speeds are the playback multipliers the UI offers.
var Speeds = []float64{0.25, 0.5, 1, 2, 4, 8}

// Tab is one open document.
type Tab struct {
	mutex sync.Mutex

	id   TabID
	path string
	log  *schema.Log

	selected []Selection
	cursor   float64
	viewMin  float64
	viewMax  float64

	playback     PlaybackState
	speed        float64
	anchorCursor float64
	anchorWall   time.Time
}

// Snapshot is the consistent view the renderer consumes each frame.
type Snapshot struct {
	ID       TabID
	Path     string
	Log      *schema.Log
	Selected []Selection
	Cursor   float64
	ViewMin  float64
	ViewMax  float64
	Playback PlaybackState
	Speed    float64
}

func newTab(id TabID, path string, l *schema.Log) *Tab {
	t := &Tab{
		id:    id,
		path:  path,
		log:   l,
		speed: 1.0,
	}
	t.cursor = t.timeMin()
	t.viewMin = t.timeMin()
	t.viewMax = t.timeMin() + InitialViewportSeconds
	if t.viewMax > t.timeMax() || l.Duration() < InitialViewportSeconds {
		t.viewMax = t.timeMax()
	}
	if t.viewMax <= t.viewMin {
		// Degenerate single-instant logs still need a nonempty
		// viewport.
		t.viewMax = t.viewMin + 1.0
	}
	return t
}

func (t *Tab) ID() TabID        { return t.id }
func (t *Tab) Path() string     { return t.path }
func (t *Tab) Log() *schema.Log { return t.log }

func (t *Tab) timeMin() float64 {
	if len(t.log.Time) == 0 {
		return 0
	}
	return t.log.Time[0]
}

func (t *Tab) timeMax() float64 {
	if len(t.log.Time) == 0 {
		return 0
	}
	return t.log.Time[len(t.log.Time)-1]
}

// Snapshot returns a consistent copy of the view state.
func (t *Tab) Snapshot() Snapshot {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	selected := make([]Selection, len(t.selected))
	copy(selected, t.selected)
	return Snapshot{
		ID:       t.id,
		Path:     t.path,
		Log:      t.log,
		Selected: selected,
		Cursor:   t.cursor,
		ViewMin:  t.viewMin,
		ViewMax:  t.viewMax,
		Playback: t.playback,
		Speed:    t.speed,
	}
}

// Select adds a channel to the plot. Colors are assigned greedily from
// the palette, skipping indices in use; with every index taken the new
// selection shares the oldest slot's color.
func (t *Tab) Select(channelID int) error {
	if t.log.Channel(channelID) == nil {
		return ErrUnknownChannel
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if len(t.selected) >= MaxSelections {
		return ErrSelectionFull
	}
	for _, sel := range t.selected {
		if sel.ChannelID == channelID {
			return ErrAlreadySelected
		}
	}

	t.selected = append(t.selected, Selection{
		ChannelID:  channelID,
		ColorIndex: t.nextColorLocked(),
	})
	return nil
}

func (t *Tab) nextColorLocked() int {
	var used [PaletteSize]bool
	for _, sel := range t.selected {
		if sel.ColorIndex >= 0 && sel.ColorIndex < PaletteSize {
			used[sel.ColorIndex] = true
		}
	}
	for i := 0; i < PaletteSize; i++ {
		if !used[i] {
			return i
		}
	}
	return t.selected[0].ColorIndex
}

// Deselect removes a channel; its color index becomes free again.
func (t *Tab) Deselect(channelID int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for i, sel := range t.selected {
		if sel.ChannelID == channelID {
			t.selected = append(t.selected[:i], t.selected[i+1:]...)
			return
		}
	}
}

// SetCursor clamps into the log's time range.
func (t *Tab) SetCursor(cursor float64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.cursor = t.clampCursor(cursor)
}

func (t *Tab) clampCursor(cursor float64) float64 {
	if cursor < t.timeMin() {
		return t.timeMin()
	}
	if cursor > t.timeMax() {
		return t.timeMax()
	}
	return cursor
}

// SetViewport clamps the requested range into the log's bounds.
func (t *Tab) SetViewport(min, max float64) error {
	if min >= max {
		return ErrBadViewport
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if min < t.timeMin() {
		min = t.timeMin()
	}
	if max > t.timeMax() {
		max = t.timeMax()
	}
	if min >= max {
		return ErrBadViewport
	}
	t.viewMin, t.viewMax = min, max
	return nil
}

// ResetZoom restores the full time range.
func (t *Tab) ResetZoom() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.viewMin, t.viewMax = t.timeMin(), t.timeMax()
	if t.viewMax <= t.viewMin {
		t.viewMax = t.viewMin + 1.0
	}
}
