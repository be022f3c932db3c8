// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Computed channels: user-defined expressions over a log's channels,
// evaluated once per sample when a log is opened. 'Boost_psi' as
// 'Manifold_Pressure * 0.145038' and friends.
package compute

import (
	"math"
	"strings"

	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/SomethingNew71/UltraLog/pkg/schema"
	"github.com/SomethingNew71/UltraLog/pkg/units"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

type compiled struct {
	def  schema.ComputedChannel
	prog *vm.Program
}

// Extend evaluates the definitions against the log and returns a new
// Log carrying the computed channels behind the parsed ones. The input
// Log is never mutated; definitions that fail to compile are skipped
// with a log message, samples that fail to evaluate become NaN gaps.
func Extend(l *schema.Log, defs []schema.ComputedChannel) *schema.Log {
	if len(defs) == 0 {
		return l
	}

	progs := make([]compiled, 0, len(defs))
	for _, def := range defs {
		prog, err := expr.Compile(def.Expr, expr.AsFloat64(), expr.AllowUndefinedVariables())
		if err != nil {
			log.Errorf("COMPUTE > cannot compile %q: %v", def.Name, err)
			continue
		}
		progs = append(progs, compiled{def: def, prog: prog})
	}
	if len(progs) == 0 {
		return l
	}

	out := &schema.Log{
		ID:       l.ID,
		Path:     l.Path,
		Format:   l.Format,
		Meta:     l.Meta,
		Time:     l.Time,
		Channels: make([]*schema.Channel, len(l.Channels), len(l.Channels)+len(progs)),
	}
	copy(out.Channels, l.Channels)

	nextID := 0
	for _, c := range l.Channels {
		if c.ID >= nextID {
			nextID = c.ID + 1
		}
	}

	env := make(map[string]interface{}, len(l.Channels)+1)
	for _, p := range progs {
		u, kind := units.NewUnit(p.def.Unit), units.KindUnknown
		if u != units.None {
			kind = u.Kind()
		}
		ch := &schema.Channel{
			ID:         nextID,
			RawName:    p.def.Expr,
			Name:       p.def.Name,
			Kind:       kind,
			SourceUnit: u,
			Samples:    make([]schema.Float, len(l.Time)),
		}
		nextID++

		for i := range l.Time {
			env["t"] = l.Time[i]
			for _, src := range l.Channels {
				v := float64(src.Samples[i])
				env[Identifier(src.Name)] = v
				env[Identifier(src.RawName)] = v
			}

			value, err := expr.Run(p.prog, env)
			if err != nil {
				ch.Samples[i] = schema.NaN
				continue
			}
			f, ok := value.(float64)
			if !ok {
				ch.Samples[i] = schema.NaN
				continue
			}
			ch.Samples[i] = schema.Float(f)
		}

		ch.FinalizeBounds()
		out.Channels = append(out.Channels, ch)
	}

	return out
}

// Identifier maps a channel name onto the spelling usable inside an
// expression: anything outside [A-Za-z0-9_] becomes an underscore.
func Identifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// AllNaN is a sanity helper: a computed channel whose every sample is
// NaN usually means a misspelled input.
func AllNaN(c *schema.Channel) bool {
	for _, s := range c.Samples {
		if !math.IsNaN(float64(s)) {
			return false
		}
	}
	return true
}
