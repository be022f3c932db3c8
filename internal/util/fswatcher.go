// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package util

import (
	"sync"

	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/fsnotify/fsnotify"
)

// Listener is notified when a watched file changes. Used for the
// normalization rule file: the editor commits, the table reloads.
type Listener interface {
	EventCallback()
	EventMatch(event string) bool
}

var (
	initOnce  sync.Once
	w         *fsnotify.Watcher
	listeners []Listener
)

func AddListener(path string, l Listener) {
	var err error

	initOnce.Do(func() {
		var err error
		w, err = fsnotify.NewWatcher()
		if err != nil {
			log.Error("creating a new watcher: %w", err)
		}
		listeners = make([]Listener, 0)

		go watchLoop(w)
	})

	listeners = append(listeners, l)
	err = w.Add(path)
	if err != nil {
		log.Warnf("%s", err.Error())
	}
}

func FsWatcherShutdown() {
	if w != nil {
		w.Close()
	}
}

func watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		// Read from Errors.
		case err, ok := <-watcher.Errors:
			if !ok { // Channel was closed (i.e. Watcher.Close() was called).
				return
			}
			log.Errorf("watch event loop: %s", err.Error())
		// Read from Events.
		case e, ok := <-watcher.Events:
			if !ok { // Channel was closed (i.e. Watcher.Close() was called).
				return
			}

			if !e.Op.Has(fsnotify.Write) && !e.Op.Has(fsnotify.Create) {
				continue
			}

			for _, l := range listeners {
				if l.EventMatch(e.String()) {
					l.EventCallback()
				}
			}
		}
	}
}
