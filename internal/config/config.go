// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/SomethingNew71/UltraLog/internal/downsample"
	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/SomethingNew71/UltraLog/pkg/schema"
)

var Keys schema.ProgramConfig = schema.ProgramConfig{
	CacheBudget:          downsample.DefaultBudget,
	DefaultBuckets:       downsample.DefaultBuckets,
	RetentionDays:        90,
	Colorblind:           false,
	CursorTracking:       true,
	NormalizationEnabled: true,
	Units: schema.UnitPreferences{
		Temperature:  "celsius",
		Pressure:     "kpa",
		Speed:        "kmh",
		Distance:     "km",
		FuelEconomy:  "l-per-100km",
		Volume:       "liters",
		FlowRate:     "l-per-min",
		Acceleration: "mps2",
	},
}

// Init loads and validates the configuration file. A missing file
// keeps the defaults.
func Init(flagConfigFile string) {
	raw, err := os.ReadFile(flagConfigFile)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Reading config file: %v", err)
		}
		return
	}

	if err := schema.Validate(schema.Config, bytes.NewReader(raw)); err != nil {
		log.Fatalf("Validate config: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		log.Fatalf("Decoding config file: %v", err)
	}
}
