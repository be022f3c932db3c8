// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Asynchronous file ingest. The UI submits a path and polls a ticket;
// a bounded worker pool reads and parses off-thread. Errors stop at
// this boundary, cancellation is cooperative at chunk and phase
// boundaries.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/SomethingNew71/UltraLog/internal/parser"
	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/SomethingNew71/UltraLog/pkg/schema"
)

// TicketID is the handle the UI polls while a file loads.
type TicketID uint64

type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
	StatusCanceled
)

// How many bytes are read between two cancellation checks and
// progress updates.
const chunkSize = 256 * 1024

// ErrUnknownTicket is returned when polling a ticket that was never
// issued or already claimed.
var ErrUnknownTicket = errors.New("unknown ticket")

// DuplicatePathError reports a submit for a path that is already open
// in a tab. The UI focuses that tab instead of loading again.
type DuplicatePathError struct {
	TabID int
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("path already open in tab %d", e.TabID)
}

// OpenTabs is how the scheduler consults the tab manager for the
// duplicate check without depending on it.
type OpenTabs interface {
	TabByPath(canonicalPath string) (int, bool)
}

// PollResult is the snapshot of a ticket's state.
type PollResult struct {
	Status   Status
	Progress float64
	Log      *schema.Log
	Err      error
}

type ticket struct {
	id       TicketID
	path     string
	status   Status
	progress float64
	log      *schema.Log
	err      error
	ctx      context.Context
	cancel   context.CancelFunc
}

// Scheduler owns the worker pool and the ticket table.
type Scheduler struct {
	mutex   sync.Mutex
	tabs    OpenTabs
	tickets map[TicketID]*ticket
	byPath  map[string]TicketID
	queue   chan *ticket
	nextID  TicketID
	wg      sync.WaitGroup
}

// NewScheduler starts min(4, hardware concurrency) workers.
func NewScheduler(tabs OpenTabs) *Scheduler {
	s := &Scheduler{
		tabs:    tabs,
		tickets: map[TicketID]*ticket{},
		byPath:  map[string]TicketID{},
		queue:   make(chan *ticket, 64),
	}

	workers := runtime.NumCPU()
	if workers > 4 {
		workers = 4
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// Shutdown stops accepting work and waits for the workers. Pending
// tickets are canceled.
func (s *Scheduler) Shutdown() {
	s.mutex.Lock()
	for _, t := range s.tickets {
		if t.status == StatusLoading {
			t.cancel()
		}
	}
	close(s.queue)
	s.mutex.Unlock()
	s.wg.Wait()
}

// CanonicalPath resolves a path the way the duplicate check keys tabs
// and tickets.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	// Nonexistent files keep their cleaned absolute path; the worker
	// reports the I/O failure.
	return filepath.Clean(abs), nil
}

// Submit canonicalizes the path and enqueues a parse. A path already
// open in a tab returns DuplicatePathError; a path already in flight
// returns the existing ticket.
func (s *Scheduler) Submit(path string) (TicketID, error) {
	canonical, err := CanonicalPath(path)
	if err != nil {
		return 0, err
	}

	if s.tabs != nil {
		if tabID, ok := s.tabs.TabByPath(canonical); ok {
			return 0, &DuplicatePathError{TabID: tabID}
		}
	}

	s.mutex.Lock()
	if id, ok := s.byPath[canonical]; ok {
		s.mutex.Unlock()
		return id, nil
	}

	s.nextID++
	ctx, cancel := context.WithCancel(context.Background())
	t := &ticket{
		id:     s.nextID,
		path:   canonical,
		status: StatusLoading,
		ctx:    ctx,
		cancel: cancel,
	}
	s.tickets[t.id] = t
	s.byPath[canonical] = t.id
	s.mutex.Unlock()

	// Enqueue outside the lock: a full queue must not block pollers.
	s.queue <- t

	log.Debugf("INGEST > submitted %s as ticket %d", canonical, t.id)
	return t.id, nil
}

// Poll returns the current ticket state.
func (s *Scheduler) Poll(id TicketID) PollResult {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return PollResult{Status: StatusFailed, Err: ErrUnknownTicket}
	}
	return PollResult{Status: t.status, Progress: t.progress, Log: t.log, Err: t.err}
}

// Cancel is idempotent. A loading ticket transitions to Canceled and
// the worker stops at its next yield point; terminal tickets are left
// alone.
func (s *Scheduler) Cancel(id TicketID) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, ok := s.tickets[id]
	if !ok || t.status != StatusLoading {
		return
	}
	t.cancel()
	s.finishLocked(t, StatusCanceled, nil, nil)
}

// Claim hands out the Log of a Ready ticket and retires the ticket.
// The caller is expected to open a tab for it immediately, keeping the
// unique-path invariant gap-free on the UI thread.
func (s *Scheduler) Claim(id TicketID) (*schema.Log, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrUnknownTicket
	}
	if t.status != StatusReady {
		return nil, fmt.Errorf("ticket %d is not ready", id)
	}
	delete(s.tickets, id)
	delete(s.byPath, t.path)
	return t.log, nil
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for t := range s.queue {
		s.mutex.Lock()
		if t.status != StatusLoading {
			s.mutex.Unlock()
			continue
		}
		ctx := t.ctx
		s.mutex.Unlock()

		l, err := s.load(ctx, t)

		s.mutex.Lock()
		if t.status == StatusLoading {
			switch {
			case errors.Is(err, context.Canceled):
				s.finishLocked(t, StatusCanceled, nil, nil)
			case err != nil:
				log.Warnf("INGEST > ticket %d failed: %v", t.id, err)
				s.finishLocked(t, StatusFailed, nil, err)
			default:
				t.status = StatusReady
				t.log = l
				t.progress = 1.0
			}
		}
		s.mutex.Unlock()
		t.cancel()
	}
}

// load reads the file in chunks and parses it. Cancellation is
// honored between chunks and between parse phases.
func (s *Scheduler) load(ctx context.Context, t *ticket) (*schema.Log, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()

	data := make([]byte, 0, size)
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := f.Read(buf)
		data = append(data, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if size > 0 {
			s.setProgress(t, float64(len(data))/float64(size))
		}
	}

	return parser.Parse(ctx, data, func(fraction float64) {
		s.setProgress(t, fraction)
	})
}

func (s *Scheduler) setProgress(t *ticket, fraction float64) {
	s.mutex.Lock()
	if t.status == StatusLoading && fraction > t.progress {
		t.progress = fraction
	}
	s.mutex.Unlock()
}

// finishLocked releases the path reservation of a terminal ticket so
// the user can retry a failed or canceled load.
func (s *Scheduler) finishLocked(t *ticket, status Status, l *schema.Log, err error) {
	t.status = status
	t.log = l
	t.err = err
	delete(s.byPath, t.path)
}
