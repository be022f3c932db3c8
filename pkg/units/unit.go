// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package units

import "regexp"

// Unit is one concrete display or source unit. Every unit belongs to
// exactly one Kind; the Factor converts into the kind's neutral unit
// (the first entry of KindsMap[kind].Units). Temperatures and fuel
// economy do not fit a plain factor and are special-cased in Convert.
type Unit int

const (
	InvalidUnit Unit = iota
	Kelvin
	Celsius
	Fahrenheit
	Kilopascal
	Psi
	Bar
	KilometersPerHour
	MilesPerHour
	Kilometers
	Miles
	LitersPer100Km
	MilesPerGallon
	Liters
	Gallons
	LitersPerMinute
	GallonsPerMinute
	MetersPerSecondSq
	GForce
	Rpm
	Degree
	Lambda
	Volt
	Second
	Millisecond
	Percent
	None
)

type UnitData struct {
	Long   string
	Short  string
	Kind   Kind
	Factor float64
	// Regex matches the unit strings ECUs put in their log headers.
	Regex string
}

// Exact published factors. 1 psi = 6.894757 kPa, 1 mph = 1.609344 km/h,
// 1 gal = 3.785411784 l, 1 g = 9.80665 m/s².
var UnitsMap map[Unit]UnitData = map[Unit]UnitData{
	Kelvin:     {Long: "kelvin", Short: "K", Kind: Temperature, Factor: 1.0, Regex: `^([kK]elvin|K)$`},
	Celsius:    {Long: "celsius", Short: "°C", Kind: Temperature, Factor: 1.0, Regex: `^(°[cC]|deg[cC]|[cC]elsius|C)$`},
	Fahrenheit: {Long: "fahrenheit", Short: "°F", Kind: Temperature, Factor: 1.0, Regex: `^(°[fF]|deg[fF]|[fF]ahrenheit|F)$`},

	Kilopascal: {Long: "kpa", Short: "kPa", Kind: Pressure, Factor: 1.0, Regex: `^([kK][pP][aA])$`},
	Psi:        {Long: "psi", Short: "psi", Kind: Pressure, Factor: 6.894757, Regex: `^([pP][sS][iI])$`},
	Bar:        {Long: "bar", Short: "bar", Kind: Pressure, Factor: 100.0, Regex: `^([bB]ar)$`},

	KilometersPerHour: {Long: "kmh", Short: "km/h", Kind: Speed, Factor: 1.0, Regex: `^([kK][mM]/?[hH]|[kK][pP][hH])$`},
	MilesPerHour:      {Long: "mph", Short: "mph", Kind: Speed, Factor: 1.609344, Regex: `^([mM][pP][hH])$`},

	Kilometers: {Long: "km", Short: "km", Kind: Distance, Factor: 1.0, Regex: `^([kK][mM])$`},
	Miles:      {Long: "miles", Short: "mi", Kind: Distance, Factor: 1.609344, Regex: `^([mM][iI](les)?)$`},

	LitersPer100Km: {Long: "l-per-100km", Short: "l/100km", Kind: FuelEconomy, Factor: 1.0, Regex: `^([lL]/100\s?[kK][mM])$`},
	MilesPerGallon: {Long: "mpg", Short: "mpg", Kind: FuelEconomy, Factor: 1.0, Regex: `^([mM][pP][gG])$`},

	Liters:  {Long: "liters", Short: "l", Kind: Volume, Factor: 1.0, Regex: `^([lL](iters?)?)$`},
	Gallons: {Long: "gallons", Short: "gal", Kind: Volume, Factor: 3.785411784, Regex: `^([gG]al(lons?)?)$`},

	LitersPerMinute:  {Long: "l-per-min", Short: "l/min", Kind: FlowRate, Factor: 1.0, Regex: `^([lL]/?min|[lL][pP][mM])$`},
	GallonsPerMinute: {Long: "gpm", Short: "gpm", Kind: FlowRate, Factor: 3.785411784, Regex: `^([gG][pP][mM]|[gG]al/min)$`},

	MetersPerSecondSq: {Long: "mps2", Short: "m/s²", Kind: Acceleration, Factor: 1.0, Regex: `^([mM]/[sS](²|\^?2)|mps2)$`},
	GForce:            {Long: "g", Short: "g", Kind: Acceleration, Factor: 9.80665, Regex: `^([gG])$`},

	Rpm:         {Long: "rpm", Short: "RPM", Kind: Rotation, Factor: 1.0, Regex: `^([rR][pP][mM]|1/min)$`},
	Degree:      {Long: "degrees", Short: "°", Kind: Angle, Factor: 1.0, Regex: `^(°|[dD]eg(rees?)?|[bB][tT][dD][cC])$`},
	Lambda:      {Long: "lambda", Short: "λ", Kind: Ratio, Factor: 1.0, Regex: `^(λ|[lL]ambda|:1|[aA][fF][rR])$`},
	Volt:        {Long: "volts", Short: "V", Kind: Voltage, Factor: 1.0, Regex: `^([vV](olts?)?)$`},
	Second:      {Long: "seconds", Short: "s", Kind: Duration, Factor: 1.0, Regex: `^([sS](ec(onds?)?)?)$`},
	Millisecond: {Long: "ms", Short: "ms", Kind: Duration, Factor: 0.001, Regex: `^([mM][sS])$`},
	Percent:     {Long: "percent", Short: "%", Kind: Percentage, Factor: 1.0, Regex: `^(%|[pP]ercent)$`},

	None: {Long: "none", Short: "", Kind: Dimensionless, Factor: 1.0},
}

// Detection probes units in a fixed order so that overlapping regexes
// stay deterministic.
var unitDetectOrder = []Unit{
	Celsius, Fahrenheit, Kelvin,
	Kilopascal, Psi, Bar,
	KilometersPerHour, MilesPerHour,
	LitersPer100Km, MilesPerGallon,
	LitersPerMinute, GallonsPerMinute,
	Kilometers, Miles,
	Gallons, Liters,
	MetersPerSecondSq, GForce,
	Rpm, Degree, Lambda, Volt,
	Millisecond, Second, Percent,
}

var unitRegexes map[Unit]*regexp.Regexp = map[Unit]*regexp.Regexp{}

func init() {
	for u, d := range UnitsMap {
		if d.Regex != "" {
			unitRegexes[u] = regexp.MustCompile(d.Regex)
		}
	}
}

func (u Unit) String() string { return UnitsMap[u].Long }
func (u Unit) Short() string  { return UnitsMap[u].Short }
func (u Unit) Kind() Kind {
	if d, ok := UnitsMap[u]; ok {
		return d.Kind
	}
	return KindUnknown
}

func (u Unit) Valid() bool {
	_, ok := UnitsMap[u]
	return ok && u != InvalidUnit
}

// NewUnit detects the unit from a raw header string like '°C', 'kPa'
// or 'km/h'. The empty string and anything unmatched map to None, which
// leaves the channel's kind unknown/dimensionless.
func NewUnit(unitStr string) Unit {
	if unitStr == "" {
		return None
	}
	for _, u := range unitDetectOrder {
		if unitRegexes[u].MatchString(unitStr) {
			return u
		}
	}
	return None
}

// NewUnitByName matches the configuration-file spelling of a unit
// (the Long form, e.g. 'celsius', 'l-per-100km').
func NewUnitByName(name string) Unit {
	for u, d := range UnitsMap {
		if d.Long == name {
			return u
		}
	}
	return InvalidUnit
}
