// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"bytes"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	json := []byte(`{
	"cache-budget": 5000000,
	"default-buckets": 2000,
	"colorblind": false,
	"cursor_tracking": true,
	"normalization_enabled": true,
	"units": {
		"temperature": "celsius",
		"pressure": "kpa",
		"speed": "kmh",
		"distance": "km",
		"fuel_economy": "l-per-100km",
		"volume": "liters",
		"flow_rate": "l-per-min",
		"acceleration": "mps2"
	}
}`)

	if err := Validate(Config, bytes.NewReader(json)); err != nil {
		t.Errorf("Error is not nil! %v", err)
	}
}

func TestValidateConfigBadUnit(t *testing.T) {
	json := []byte(`{"units": {"temperature": "rankine"}}`)

	if err := Validate(Config, bytes.NewReader(json)); err == nil {
		t.Error("expected validation failure for unknown unit choice")
	}
}
