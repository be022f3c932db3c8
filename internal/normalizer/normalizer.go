// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Channel name normalization: ECU vendors disagree on channel naming,
// a rule table maps raw names onto stable display names.
package normalizer

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/SomethingNew71/UltraLog/internal/util"
	"github.com/SomethingNew71/UltraLog/pkg/log"
)

// Rule maps one raw channel name onto a display name. Matching is a
// case-insensitive exact comparison, not a pattern.
type Rule struct {
	Source string
	Target string
}

// Builtin rules. User rules from the rule file are prepended and
// therefore win.
var builtins = []Rule{
	{"Act_AFR", "AFR"},
	{"AFR1", "AFR"},
	{"Aft", "AFR"},
	{"Lambda1", "AFR"},
	{"MAP", "Manifold Pressure"},
	{"Boost_Press", "Manifold Pressure"},
	{"Manifold_Press", "Manifold Pressure"},
	{"Engine Speed", "RPM"},
	{"EngSpeed", "RPM"},
	{"Rpm", "RPM"},
	{"Engine_RPM", "RPM"},
	{"CLT", "Coolant Temp"},
	{"Coolant_Temp", "Coolant Temp"},
	{"ECT", "Coolant Temp"},
	{"IAT", "Intake Air Temp"},
	{"Air_Temp", "Intake Air Temp"},
	{"TPS", "Throttle Position"},
	{"Throttle_Pos", "Throttle Position"},
	{"Batt", "Battery Voltage"},
	{"VBat", "Battery Voltage"},
	{"Battery_V", "Battery Voltage"},
}

// Table is an immutable rule snapshot. Normalization is a total
// function: unmatched names pass through unchanged.
type Table struct {
	rules []Rule
}

// NewTable builds a snapshot with the custom rules taking precedence
// over the builtins.
func NewTable(custom []Rule) *Table {
	rules := make([]Rule, 0, len(custom)+len(builtins))
	rules = append(rules, custom...)
	rules = append(rules, builtins...)
	return &Table{rules: rules}
}

// Normalize maps a raw channel name to its display name. Rules are
// evaluated top to bottom, the first match wins.
func (t *Table) Normalize(raw string) string {
	for _, r := range t.rules {
		if strings.EqualFold(r.Source, raw) {
			return r.Target
		}
	}
	return raw
}

// ParseRules reads the line-oriented rule file format: one
// `<raw-name><TAB><display-name>` per line; blank lines and lines
// starting with '#' are comments.
func ParseRules(r io.Reader) ([]Rule, error) {
	var rules []Rule
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(strings.TrimSpace(text), "#") {
			continue
		}
		src, target, ok := strings.Cut(text, "\t")
		if !ok || strings.TrimSpace(src) == "" || strings.TrimSpace(target) == "" {
			log.Warnf("NORMALIZER > skipping malformed rule on line %d", line)
			continue
		}
		rules = append(rules, Rule{Source: strings.TrimSpace(src), Target: strings.TrimSpace(target)})
	}
	return rules, sc.Err()
}

// Normalizer serves the active table snapshot and swaps in a new one
// whenever the rule-file editor commits. Readers always see a
// consistent snapshot.
type Normalizer struct {
	mutex sync.RWMutex
	path  string
	table *Table
}

// New loads the rule file (if any) and starts watching it.
func New(path string) *Normalizer {
	n := &Normalizer{path: path, table: NewTable(nil)}
	if path == "" {
		return n
	}

	n.reload()
	if util.CheckFileExists(path) {
		util.AddListener(path, n)
	}
	return n
}

// Table returns the active snapshot.
func (n *Normalizer) Table() *Table {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.table
}

// Normalize resolves raw against the active snapshot.
func (n *Normalizer) Normalize(raw string) string {
	return n.Table().Normalize(raw)
}

func (n *Normalizer) reload() {
	f, err := os.Open(n.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Errorf("NORMALIZER > opening rule file: %v", err)
		}
		return
	}
	defer f.Close()

	rules, err := ParseRules(f)
	if err != nil {
		log.Errorf("NORMALIZER > reading rule file: %v", err)
		return
	}

	table := NewTable(rules)
	n.mutex.Lock()
	n.table = table
	n.mutex.Unlock()
	log.Infof("NORMALIZER > loaded %d custom rules from %s", len(rules), n.path)
}

func (n *Normalizer) EventMatch(event string) bool {
	return strings.Contains(event, n.path)
}

func (n *Normalizer) EventCallback() {
	n.reload()
}
