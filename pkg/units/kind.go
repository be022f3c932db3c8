// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package units

// Kind is the physical quantity a channel measures. It decides which
// units a value may be converted between.
type Kind int

const (
	KindUnknown Kind = iota
	Temperature
	Pressure
	Speed
	Distance
	FuelEconomy
	Volume
	FlowRate
	Acceleration
	Rotation
	Angle
	Ratio
	Voltage
	Duration
	Percentage
	Dimensionless
)

type KindData struct {
	Name string
	// Units selectable for this kind, first entry is the neutral unit
	// conversions are routed through.
	Units []Unit
}

var KindsMap map[Kind]KindData = map[Kind]KindData{
	Temperature:  {Name: "temperature", Units: []Unit{Kelvin, Celsius, Fahrenheit}},
	Pressure:     {Name: "pressure", Units: []Unit{Kilopascal, Psi, Bar}},
	Speed:        {Name: "speed", Units: []Unit{KilometersPerHour, MilesPerHour}},
	Distance:     {Name: "distance", Units: []Unit{Kilometers, Miles}},
	FuelEconomy:  {Name: "fuel-economy", Units: []Unit{LitersPer100Km, MilesPerGallon}},
	Volume:       {Name: "volume", Units: []Unit{Liters, Gallons}},
	FlowRate:     {Name: "flow-rate", Units: []Unit{LitersPerMinute, GallonsPerMinute}},
	Acceleration: {Name: "acceleration", Units: []Unit{MetersPerSecondSq, GForce}},
	Rotation:     {Name: "rpm", Units: []Unit{Rpm}},
	Angle:        {Name: "angle", Units: []Unit{Degree}},
	Ratio:        {Name: "ratio", Units: []Unit{Lambda}},
	Voltage:      {Name: "voltage", Units: []Unit{Volt}},
	Duration:     {Name: "duration", Units: []Unit{Second, Millisecond}},
	Percentage:   {Name: "percent", Units: []Unit{Percent}},

	Dimensionless: {Name: "dimensionless", Units: []Unit{None}},
	KindUnknown:   {Name: "unknown", Units: []Unit{None}},
}

func (k Kind) String() string {
	if d, ok := KindsMap[k]; ok {
		return d.Name
	}
	return "unknown"
}

// NewKind matches a kind name as spelled in KindsMap, like 'pressure'
// or 'fuel-economy'. The configuration file's units keys spell two
// kinds with underscores ('fuel_economy', 'flow_rate'); those do not
// match.
func NewKind(name string) Kind {
	for k, d := range KindsMap {
		if d.Name == name {
			return k
		}
	}
	return KindUnknown
}

// Convertible reports whether the user may choose among several display
// units for this kind.
func (k Kind) Convertible() bool {
	d, ok := KindsMap[k]
	return ok && len(d.Units) > 1
}
