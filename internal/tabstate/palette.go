// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package tabstate

// Process-wide read-only color palettes. Selections store a color
// index, not a color: switching palettes recolors without renumbering.
var StandardPalette = [10]string{
	"#00bfff", "#0000ff", "#ff00ff", "#ff0000", "#ff8000",
	"#ffff00", "#80ff00", "#00ff80", "#8000ff", "#804000",
}

// Okabe-Ito derived palette for colorblind users.
var ColorblindPalette = [10]string{
	"#e69f00", "#56b4e9", "#009e73", "#f0e442", "#0072b2",
	"#d55e00", "#cc79a7", "#999999", "#000000", "#e5c494",
}

// PaletteSize is also the selection bound: one distinct color per
// selectable channel.
const PaletteSize = 10

// ActivePalette resolves the palette the renderer interprets color
// indices against.
func ActivePalette(colorblind bool) [10]string {
	if colorblind {
		return ColorblindPalette
	}
	return StandardPalette
}
