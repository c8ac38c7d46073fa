// Copyright 2022 Comcast Cable Communications Management, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS-IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package aggregator drives the Registry/Call Tree/Stats Node state machine
// from remote events, reconstructing the same trees an in-process client
// would build locally.
package aggregator

import (
	"sync"

	"github.com/google/uuid"
	"github.com/golang/sync/errgroup"

	"github.com/rdkcentral/gorkperf/mqueue"
	"github.com/rdkcentral/gorkperf/perflog"
	"github.com/rdkcentral/gorkperf/registry"
)

// maxConsecutiveTimeouts bounds how many NoMessage reads the run loop
// tolerates before self-terminating, matching the original's value of 6.
const maxConsecutiveTimeouts = 6

// Aggregator is the standalone consumer of the Event Queue. Registry and its
// Process/Tree/Node state are documented as caller-serialized (see the
// registry package); mu is that caller-side lock. It guards every path that
// reaches Registry, including the run loop's Handle calls and any
// out-of-band access such as an HTTP debug handler, so two goroutines can
// never read/write the same Process's Threads map concurrently.
type Aggregator struct {
	Registry *registry.Registry
	RunID    string

	mu       sync.Mutex
	timeouts int
}

// Lock acquires the Aggregator's process-wide lock and returns a function
// that releases it, for callers outside the run loop (an HTTP debug handler,
// for instance) that need to touch Registry/Process/Tree state directly.
func (a *Aggregator) Lock() func() {
	a.mu.Lock()
	return a.mu.Unlock
}

// New returns an Aggregator over reg, stamped with a fresh run id so
// operators can distinguish service restarts in aggregated logs.
func New(reg *registry.Registry) *Aggregator {
	return &Aggregator{Registry: reg, RunID: uuid.New().String()}
}

// Handle processes one event and reports whether the run loop should keep
// reading (false means ExitQueue or too many consecutive timeouts).
func (a *Aggregator) Handle(ev mqueue.Event) bool {
	unlock := a.Lock()
	defer unlock()

	switch ev.Type {
	case mqueue.Entry:
		a.timeouts = 0
		a.handleEntry(ev)
	case mqueue.Exit:
		a.timeouts = 0
		a.handleExit(ev)
	case mqueue.Threshold:
		a.timeouts = 0
		a.handleThreshold(ev)
	case mqueue.ReportThread:
		a.timeouts = 0
		a.handleReportThread(ev)
	case mqueue.ReportProcess:
		a.timeouts = 0
		a.handleReportProcess(ev)
	case mqueue.CloseThread:
		a.timeouts = 0
		a.handleCloseThread(ev)
	case mqueue.CloseProcess:
		a.timeouts = 0
		a.handleCloseProcess(ev)
	case mqueue.ExitQueue:
		perflog.Logf(perflog.Warning, "[%s] ExitQueue received, terminating run loop", a.RunID)
		return false
	case mqueue.NoMessage:
		a.timeouts++
		if a.timeouts > maxConsecutiveTimeouts {
			perflog.Logf(perflog.Warning, "[%s] %d consecutive timeouts, terminating run loop", a.RunID, a.timeouts)
			return false
		}
	default:
		perflog.Logf(perflog.Error, "[%s] unexpected message type %d", a.RunID, ev.Type)
	}
	return true
}

func (a *Aggregator) handleEntry(ev mqueue.Event) {
	p := a.Registry.GetOrNew(int(ev.PID))
	tr := p.GetOrNewTree(int(ev.TID), ev.ThreadNameString())
	n := tr.Add(ev.NameString())
	if ev.ThresholdUS > 0 {
		n.ThresholdUS = ev.ThresholdUS
	}
}

func (a *Aggregator) handleThreshold(ev mqueue.Event) {
	p, err := a.Registry.Find(int(ev.PID))
	if err != nil {
		perflog.Logf(perflog.Error, "[%s] Threshold for unknown process %d: %v", a.RunID, ev.PID, err)
		return
	}
	tr, err := p.Tree(int(ev.TID))
	if err != nil {
		perflog.Logf(perflog.Error, "[%s] Threshold for unknown thread %d: %v", a.RunID, ev.TID, err)
		return
	}
	top := tr.Top()
	if top.ElementName != ev.NameString() {
		perflog.Logf(perflog.Error, "[%s] Threshold name mismatch: stack top %q, event %q", a.RunID, top.ElementName, ev.NameString())
		return
	}
	top.ThresholdUS = ev.ThresholdUS
}

func (a *Aggregator) handleReportThread(ev mqueue.Event) {
	p, err := a.Registry.Find(int(ev.PID))
	if err != nil {
		perflog.Logf(perflog.Error, "[%s] ReportThread for unknown process %d: %v", a.RunID, ev.PID, err)
		return
	}
	tr, err := p.Tree(int(ev.TID))
	if err != nil {
		perflog.Logf(perflog.Error, "[%s] ReportThread for unknown thread %d: %v", a.RunID, ev.TID, err)
		return
	}
	tr.Report()
}

func (a *Aggregator) handleReportProcess(ev mqueue.Event) {
	p, err := a.Registry.Find(int(ev.PID))
	if err != nil {
		perflog.Logf(perflog.Error, "[%s] ReportProcess for unknown process %d: %v", a.RunID, ev.PID, err)
		return
	}
	p.ShowTrees()
	p.CloseInactiveThreads()
	p.Report()
}

func (a *Aggregator) handleCloseThread(ev mqueue.Event) {
	p, err := a.Registry.Find(int(ev.PID))
	if err != nil {
		perflog.Logf(perflog.Error, "[%s] CloseThread for unknown process %d: %v", a.RunID, ev.PID, err)
		return
	}
	p.RemoveTree(int(ev.TID))
}

func (a *Aggregator) handleCloseProcess(ev mqueue.Event) {
	a.Registry.Remove(int(ev.PID))
}

// SweepInactive closes inactive threads across every tracked process
// concurrently, a supplement to the per-ReportProcess reap used when the
// aggregator wants a full sweep without a matching ReportProcess event for
// every process (e.g. on a periodic administrative tick).
func (a *Aggregator) SweepInactive() {
	unlock := a.Lock()
	defer unlock()

	var g errgroup.Group
	for _, pid := range a.Registry.PIDs() {
		// Find runs here, not in the goroutine: in a bounded registry it
		// updates the shared LRU recency list.
		p, err := a.Registry.Find(pid)
		if err != nil {
			continue
		}
		g.Go(func() error {
			p.CloseInactiveThreads()
			return nil
		})
	}
	_ = g.Wait()
}
