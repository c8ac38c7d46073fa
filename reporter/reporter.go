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

// Package reporter drives periodic process reports with a geometrically
// growing back-off, and reaps inactive threads before each report.
package reporter

import (
	"sync"
	"time"

	"github.com/golang/sync/errgroup"

	"github.com/rdkcentral/gorkperf/perflog"
	"github.com/rdkcentral/gorkperf/registry"
)

// tickInterval is the condition variable's base wait: TIMER_INTERVAL_SECONDS
// in the original.
const tickInterval = 10 * time.Second

// maxDelayUnits is the back-off cap, in units of tickInterval.
const maxDelayUnits = 600

// signal mirrors the original's WAITING/TIMEOUT/EXIT state flag. Only EXIT
// is ever sent explicitly; TIMEOUT is implicit in a plain tick with no
// signal pending.
type signal int

const (
	waiting signal = iota
	exit
)

// Reporter is the background goroutine equivalent of the original's
// TimerCallback: it owns no lock of its own and instead calls into
// registry/calltree/node, which are expected to already be serialized by
// the caller's global lock (see the perf package).
type Reporter struct {
	reg *registry.Registry

	mu         sync.Mutex
	tickCount  uint32
	delayUnits uint32

	signal chan signal
	done   chan struct{}

	// Lock, when set, is acquired around every report and reap, matching
	// the requirement that scope entry/exit, report/close APIs, and the
	// reporter callback all take the same process-wide lock.
	Lock func() func()
}

// New returns a Reporter bound to reg. Lock may be left nil for tests that
// do not need the process-wide critical section.
func New(reg *registry.Registry) *Reporter {
	return &Reporter{
		reg:    reg,
		signal: make(chan signal, 1),
		done:   make(chan struct{}),
	}
}

// Start spawns the background loop.
func (r *Reporter) Start() {
	go r.loop()
}

// Stop signals EXIT and waits for the loop to terminate.
func (r *Reporter) Stop() {
	select {
	case r.signal <- exit:
	default:
	}
	<-r.done
}

func (r *Reporter) loop() {
	defer close(r.done)
	perflog.Logf(perflog.Warning, "reporter task started")
	for {
		select {
		case s := <-r.signal:
			if s == exit {
				perflog.Logf(perflog.Warning, "reporter task exiting")
				return
			}
		case <-time.After(tickInterval):
			r.tick()
		}
	}
}

// tick reproduces TimerCallback::Loop exactly: the pending count is
// compared against the delay threshold *before* being incremented, so a
// report fires the tick after the threshold is crossed, not the tick it is
// reached on.
func (r *Reporter) tick() {
	perflog.Logf(perflog.Trace, "timer callback: tickCount=%d delayUnits=%d", r.tickCount, r.delayUnits)

	if r.tickCount > r.delayUnits {
		r.reportAll()
		r.tickCount = 0
		r.delayUnits = minUint32(r.delayUnits+5, maxDelayUnits)
		perflog.Logf(perflog.Warning, "next performance log in %d seconds", r.delayUnits*uint32(tickInterval/time.Second))
	}
	r.tickCount++
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// reportAll reaps inactive threads and reports every tracked process,
// fanning the per-process work out across goroutines.
func (r *Reporter) reportAll() {
	unlock := r.lock()
	defer unlock()

	var g errgroup.Group
	pids := r.allPIDs()
	for _, pid := range pids {
		pid := pid
		g.Go(func() error {
			p, err := r.reg.Find(pid)
			if err != nil {
				return nil // process went away between listing and reporting
			}
			p.CloseInactiveThreads()
			p.Report()
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Reporter) allPIDs() []int {
	// reporter.Reporter is constructed with a handle to the same registry
	// the perf package tracks, and reports every pid that registry's
	// PIDs() returns (in-process, that is just the host process).
	return r.reg.PIDs()
}

func (r *Reporter) lock() func() {
	if r.Lock != nil {
		return r.Lock()
	}
	return func() {}
}
