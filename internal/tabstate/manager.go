// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package tabstate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/SomethingNew71/UltraLog/internal/compute"
	"github.com/SomethingNew71/UltraLog/internal/downsample"
	"github.com/SomethingNew71/UltraLog/internal/normalizer"
	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/SomethingNew71/UltraLog/pkg/schema"
)

// SessionRecorder receives opened logs for the recent-files store.
type SessionRecorder interface {
	RecordOpen(path string, l *schema.Log)
}

// Manager owns the open tabs and upholds the unique-canonical-path
// invariant together with the ingest scheduler.
type Manager struct {
	mutex sync.Mutex

	cfg     *schema.ProgramConfig
	norm    *normalizer.Normalizer
	cache   *downsample.Cache
	session SessionRecorder

	tabs   map[TabID]*Tab
	byPath map[string]TabID
	nextID TabID
}

// NewManager wires the collaborators; norm and session may be nil.
func NewManager(cfg *schema.ProgramConfig, norm *normalizer.Normalizer, cache *downsample.Cache, session SessionRecorder) *Manager {
	return &Manager{
		cfg:     cfg,
		norm:    norm,
		cache:   cache,
		session: session,
		tabs:    map[TabID]*Tab{},
		byPath:  map[string]TabID{},
	}
}

// TabByPath implements the duplicate check the ingest scheduler
// consults before starting a load.
func (m *Manager) TabByPath(canonicalPath string) (int, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	id, ok := m.byPath[canonicalPath]
	return int(id), ok
}

// Open publishes a freshly parsed log as a new tab. Channel names are
// normalized and computed channels attached before the tab becomes
// visible; afterwards the log is immutable.
func (m *Manager) Open(canonicalPath string, l *schema.Log) (*Tab, error) {
	if m.cfg != nil && m.cfg.NormalizationEnabled && m.norm != nil {
		table := m.norm.Table()
		for _, c := range l.Channels {
			c.Name = table.Normalize(c.Name)
		}
	}
	if m.cfg != nil {
		l = compute.Extend(l, m.cfg.ComputedChannels)
	}
	l.Path = canonicalPath

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if id, ok := m.byPath[canonicalPath]; ok {
		// The scheduler already dedups; hitting this means a race on
		// the UI thread. Focus the existing tab.
		return m.tabs[id], fmt.Errorf("path already open in tab %d", id)
	}

	m.nextID++
	t := newTab(m.nextID, canonicalPath, l)
	m.tabs[t.id] = t
	m.byPath[canonicalPath] = t.id

	if m.session != nil {
		m.session.RecordOpen(canonicalPath, l)
	}
	log.Infof("TABS > opened %s as tab %d (%d channels, %d samples)",
		canonicalPath, t.id, len(l.Channels), len(l.Time))
	return t, nil
}

// Close drops a tab and eagerly invalidates its downsample entries.
func (m *Manager) Close(id TabID) {
	m.mutex.Lock()
	t, ok := m.tabs[id]
	if ok {
		delete(m.tabs, id)
		delete(m.byPath, t.path)
	}
	m.mutex.Unlock()

	if ok && m.cache != nil {
		dropped := m.cache.DropLog(t.log.ID)
		log.Debugf("TABS > closed tab %d, dropped %d cache entries", id, dropped)
	}
}

// Get returns an open tab.
func (m *Manager) Get(id TabID) (*Tab, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	t, ok := m.tabs[id]
	return t, ok
}

// List returns the open tabs in id order.
func (m *Manager) List() []*Tab {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make([]*Tab, 0, len(m.tabs))
	for _, t := range m.tabs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
