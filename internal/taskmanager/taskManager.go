// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package taskmanager

import (
	"time"

	"github.com/SomethingNew71/UltraLog/internal/downsample"
	"github.com/SomethingNew71/UltraLog/internal/repository"
	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/go-co-op/gocron/v2"
)

var s gocron.Scheduler

// Start sets up the periodic background jobs: session retention and
// downsample cache statistics. Session may be nil when no database is
// configured.
func Start(session *repository.SessionRepository, cache *downsample.Cache, retentionDays int) {
	var err error
	s, err = gocron.NewScheduler()
	if err != nil {
		log.Abortf("Taskmanager Start: Could not create gocron scheduler.\nError: %s\n", err.Error())
	}

	if session != nil && retentionDays > 0 {
		RegisterSessionRetention(session, retentionDays)
	}
	if cache != nil {
		RegisterCacheStats(cache)
	}

	s.Start()
}

// Shutdown stops the scheduler; running jobs finish.
func Shutdown() {
	if s != nil {
		s.Shutdown()
	}
}

func RegisterSessionRetention(session *repository.SessionRepository, retentionDays int) {
	log.Infof("Register session retention service, %d day limit", retentionDays)

	s.NewJob(gocron.DurationJob(time.Hour),
		gocron.NewTask(
			func() {
				n, err := session.Prune(time.Duration(retentionDays) * 24 * time.Hour)
				if err != nil {
					log.Errorf("Session retention: %v", err)
					return
				}
				if n > 0 {
					log.Infof("Session retention: pruned %d recent entries", n)
				}
			}))
}

func RegisterCacheStats(cache *downsample.Cache) {
	s.NewJob(gocron.DurationJob(10*time.Minute),
		gocron.NewTask(
			func() {
				entries, used, budget := cache.Stats()
				log.Debugf("Downsample cache: %d entries, %d/%d samples", entries, used, budget)
			}))
}
