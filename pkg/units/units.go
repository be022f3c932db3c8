// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Unit system for ECU log channels like temperatures, pressures and
// speeds. Conversion is display-time only: sample vectors keep the
// parser's source unit, callers convert on read.
package units

import (
	"fmt"
	"math"
	"strconv"
)

// °F = °C·9/5+32, routed through kelvin as the neutral unit.
const (
	zeroCelsiusK     = 273.15
	fahrenheitOffset = 459.67
)

// L/100km ↔ MPG are reciprocal: mpg = 235.214583/x and vice versa.
const fuelEconomyReciprocal = 235.214583

// Convert converts a value between two units of the same kind and is
// the identity when from == to. Converting across kinds, or from or to
// an invalid unit, is a programmer error and reported as one.
// A zero operand in the reciprocal fuel-economy conversion yields +Inf;
// NaN passes through untouched.
func Convert(value float64, from Unit, to Unit) (float64, error) {
	if !from.Valid() || !to.Valid() {
		return value, fmt.Errorf("UNITS/CONVERT > invalid unit in conversion %d -> %d", from, to)
	}
	if from.Kind() != to.Kind() {
		return value, fmt.Errorf("UNITS/CONVERT > cannot convert %s to %s", from, to)
	}
	if from == to || math.IsNaN(value) {
		return value, nil
	}

	switch from.Kind() {
	case Temperature:
		return fromKelvin(toKelvin(value, from), to), nil
	case FuelEconomy:
		// Same formula in both directions.
		if value == 0 {
			return math.Inf(1), nil
		}
		return fuelEconomyReciprocal / value, nil
	}

	return value * UnitsMap[from].Factor / UnitsMap[to].Factor, nil
}

func toKelvin(v float64, from Unit) float64 {
	switch from {
	case Celsius:
		return v + zeroCelsiusK
	case Fahrenheit:
		return (v + fahrenheitOffset) * 5.0 / 9.0
	}
	return v
}

func fromKelvin(v float64, to Unit) float64 {
	switch to {
	case Celsius:
		return v - zeroCelsiusK
	case Fahrenheit:
		return v*9.0/5.0 - fahrenheitOffset
	}
	return v
}

// ConvertSeries converts a sample slice in place. NaN gaps survive.
func ConvertSeries(s []float64, from Unit, to Unit) error {
	if from == to {
		return nil
	}
	for i := range s {
		v, err := Convert(s[i], from, to)
		if err != nil {
			return err
		}
		s[i] = v
	}
	return nil
}

// Format renders a value with its unit suffix for the legend.
// Non-finite values (NaN gaps, the +Inf of a reciprocal conversion of
// zero) render as an em dash.
func Format(value float64, u Unit, precision int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "—"
	}
	s := strconv.FormatFloat(value, 'f', precision, 64)
	if short := u.Short(); short != "" {
		return s + " " + short
	}
	return s
}
