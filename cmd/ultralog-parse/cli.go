// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of ultralog.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import "flag"

var (
	flagGops, flagVersion, flagLogDateTime, flagJson, flagRecent bool
	flagConfigFile, flagLogLevel                                 string
	flagBuckets                                                  int
)

func cliInit() {
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.BoolVar(&flagVersion, "version", false, "Show version information and exit")
	flag.BoolVar(&flagLogDateTime, "logdate", false, "Set this flag to add date and time to log messages")
	flag.BoolVar(&flagJson, "json", false, "Print the parse summary as JSON")
	flag.BoolVar(&flagRecent, "recent", false, "List recently opened logs from the session database and exit")
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Specify alternative path to `config.json`")
	flag.StringVar(&flagLogLevel, "loglevel", "warn", "Sets the logging level: `[debug, info, warn (default), err, crit]`")
	flag.IntVar(&flagBuckets, "buckets", 0, "Downsample each channel to `N` buckets and report the preview size")
	flag.Parse()
}
