// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"github.com/SomethingNew71/UltraLog/pkg/units"
)

// UnitPreferences selects the display unit per quantity kind. Values
// are the long unit names from pkg/units (e.g. 'celsius', 'psi').
type UnitPreferences struct {
	Temperature  string `json:"temperature"`
	Pressure     string `json:"pressure"`
	Speed        string `json:"speed"`
	Distance     string `json:"distance"`
	FuelEconomy  string `json:"fuel_economy"`
	Volume       string `json:"volume"`
	FlowRate     string `json:"flow_rate"`
	Acceleration string `json:"acceleration"`
}

// DisplayUnit resolves the preferred display unit for a kind. Kinds
// without a preference (rpm, angle, ...) display in their source unit.
func (p *UnitPreferences) DisplayUnit(k units.Kind) units.Unit {
	var name string
	switch k {
	case units.Temperature:
		name = p.Temperature
	case units.Pressure:
		name = p.Pressure
	case units.Speed:
		name = p.Speed
	case units.Distance:
		name = p.Distance
	case units.FuelEconomy:
		name = p.FuelEconomy
	case units.Volume:
		name = p.Volume
	case units.FlowRate:
		name = p.FlowRate
	case units.Acceleration:
		name = p.Acceleration
	default:
		return units.InvalidUnit
	}
	return units.NewUnitByName(name)
}

// ComputedChannel is a user-defined math channel evaluated over the
// log's channels at open time.
type ComputedChannel struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
	Unit string `json:"unit,omitempty"`
}

// Format of the configuration (file). See internal/config for the
// defaults.
type ProgramConfig struct {
	// Path to the user normalization rule file (tab separated).
	RuleFile string `json:"rule-file,omitempty"`

	// Path to the sqlite session database. Empty disables the
	// session store.
	DB string `json:"db,omitempty"`

	// Total sample budget of the downsample cache across all entries.
	CacheBudget int `json:"cache-budget,omitempty"`

	// Default bucket count for downsample requests.
	DefaultBuckets int `json:"default-buckets,omitempty"`

	// Recent-file entries older than this many days are pruned.
	RetentionDays int `json:"retention-days,omitempty"`

	Colorblind           bool `json:"colorblind"`
	CursorTracking       bool `json:"cursor_tracking"`
	NormalizationEnabled bool `json:"normalization_enabled"`

	Units UnitPreferences `json:"units"`

	ComputedChannels []ComputedChannel `json:"computed-channels,omitempty"`
}
