// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// ultralog-parse is the test-parser CLI: it runs the detector and the
// parsers over the given files and prints what the UI would get to
// see. Exit codes: 0 success, 1 unrecognized format, 2 truncated or
// invalid file, 3 I/O error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/SomethingNew71/UltraLog/internal/config"
	"github.com/SomethingNew71/UltraLog/internal/downsample"
	"github.com/SomethingNew71/UltraLog/internal/parser"
	"github.com/SomethingNew71/UltraLog/internal/repository"
	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/SomethingNew71/UltraLog/pkg/schema"
	"github.com/SomethingNew71/UltraLog/pkg/units"
	"github.com/google/gops/agent"
	"github.com/joho/godotenv"
)

const version = "1.2.0"

const (
	exitOK           = 0
	exitUnrecognized = 1
	exitInvalid      = 2
	exitIo           = 3
)

type channelSummary struct {
	Name string  `json:"name"`
	Raw  string  `json:"raw,omitempty"`
	Kind string  `json:"kind"`
	Unit string  `json:"unit,omitempty"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type fileSummary struct {
	Path     string           `json:"path"`
	Format   schema.Format    `json:"format"`
	Channels []channelSummary `json:"channels"`
	Rows     int              `json:"rows"`
	Duration float64          `json:"duration"`
	Preview  int              `json:"preview,omitempty"`
}

func main() {
	cliInit()

	if flagVersion {
		fmt.Printf("ultralog-parse version %s\n", version)
		os.Exit(exitOK)
	}

	// See https://github.com/motdotla/dotenv for the file format.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "parsing .env failed: %s\n", err.Error())
		os.Exit(exitIo)
	}

	log.Init(flagLogLevel, flagLogDateTime)
	config.Init(flagConfigFile)
	downsample.Init(config.Keys.CacheBudget)

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen() failed: %s", err.Error())
		}
	}

	if flagRecent {
		os.Exit(listRecent())
	}

	if len(flag.Args()) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ultralog-parse [flags] <logfile>...")
		os.Exit(exitIo)
	}

	code := exitOK
	for _, path := range flag.Args() {
		if c := parseOne(path); c > code {
			code = c
		}
	}
	os.Exit(code)
}

func parseOne(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, err.Error())
		return exitIo
	}

	l, err := parser.Parse(context.Background(), data, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, err.Error())
		return exitCode(err)
	}

	summary := summarize(path, l)
	if flagJson {
		out, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(out))
	} else {
		printSummary(summary)
	}

	if config.Keys.DB != "" {
		repository.Connect(config.Keys.DB)
		repository.GetSessionRepository().RecordOpen(path, l)
	}
	return exitOK
}

func exitCode(err error) int {
	if errors.Is(err, parser.ErrUnrecognizedFormat) {
		return exitUnrecognized
	}

	var truncated *parser.TruncatedFileError
	var row *parser.InconsistentRowError
	var ver *parser.UnsupportedVersionError
	var utf *parser.InvalidUtf8Error
	if errors.As(err, &truncated) || errors.As(err, &row) ||
		errors.As(err, &ver) || errors.As(err, &utf) {
		return exitInvalid
	}
	return exitIo
}

func summarize(path string, l *schema.Log) fileSummary {
	s := fileSummary{
		Path:     path,
		Format:   l.Format,
		Rows:     len(l.Time),
		Duration: l.Duration(),
	}

	for _, c := range l.Channels {
		min, max := c.Min, c.Max
		display := config.Keys.Units.DisplayUnit(c.Kind)
		if display.Valid() && c.SourceUnit.Valid() {
			if v, err := units.Convert(min, c.SourceUnit, display); err == nil {
				min = v
			}
			if v, err := units.Convert(max, c.SourceUnit, display); err == nil {
				max = v
			}
		}

		cs := channelSummary{
			Name: c.Name,
			Kind: c.Kind.String(),
			Min:  min,
			Max:  max,
		}
		if c.RawName != c.Name {
			cs.Raw = c.RawName
		}
		if u := displayOrSource(c, display); u != units.None && u != units.InvalidUnit {
			cs.Unit = u.String()
		}
		s.Channels = append(s.Channels, cs)
	}

	if flagBuckets > 0 && len(l.Time) > 0 {
		cache := downsample.GetCache()
		vp := downsample.Viewport{Min: l.Time[0], Max: l.Time[len(l.Time)-1]}
		if vp.Max <= vp.Min {
			vp.Max = vp.Min + 1
		}
		for _, c := range l.Channels {
			series, err := cache.Get(context.Background(), l, c.ID, vp, flagBuckets)
			if err != nil {
				log.Warnf("downsample preview for %s: %v", c.Name, err)
				continue
			}
			if len(series) > s.Preview {
				s.Preview = len(series)
			}
		}
	}
	return s
}

func displayOrSource(c *schema.Channel, display units.Unit) units.Unit {
	if display.Valid() && c.SourceUnit.Valid() && c.SourceUnit != units.None {
		return display
	}
	return c.SourceUnit
}

func printSummary(s fileSummary) {
	fmt.Printf("%s: %s, %d rows, %.1fs\n", s.Path, s.Format, s.Rows, s.Duration)
	for _, c := range s.Channels {
		name := c.Name
		if c.Raw != "" {
			name = fmt.Sprintf("%s (%s)", c.Name, c.Raw)
		}
		unit := c.Unit
		if unit == "" {
			unit = "-"
		}
		fmt.Printf("  %-28s %-14s %-12s min %.4g  max %.4g\n", name, c.Kind, unit, c.Min, c.Max)
	}
	if s.Preview > 0 {
		fmt.Printf("  downsample preview: <= %d points per channel\n", s.Preview)
	}
}

func listRecent() int {
	db := config.Keys.DB
	if db == "" {
		db = "./var/session.db"
	}
	repository.Connect(db)

	recent, err := repository.GetSessionRepository().Recent(20)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listing recent logs: %s\n", err.Error())
		return exitIo
	}
	for _, r := range recent {
		fmt.Printf("%s  %-10s %4d channels  %8d samples\n", r.Path, r.Format, r.Channels, r.Samples)
	}
	return exitOK
}
