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

// Package registry owns the process_id -> Process Entry mapping and each
// Process Entry's thread_id -> Call Tree mapping. All mutation here is
// expected to happen under the caller's single process-wide lock (see the
// perf package's global lock); Registry and Process do not lock themselves.
package registry

import (
	"fmt"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/simplelru"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rdkcentral/gorkperf/calltree"
	"github.com/rdkcentral/gorkperf/clock"
	"github.com/rdkcentral/gorkperf/perflog"
)

// Process is one Process Entry: a process id, its name (read once), the
// call trees for its threads, and the clock marker for the current
// reporting interval.
type Process struct {
	ProcessID   int
	ProcessName string
	Threads     map[int]*calltree.Tree

	interval clock.Sample
}

// GetOrNewTree returns the existing tree for tid, or creates one named
// threadName and resets the process's interval clock marker. threadName is
// only used on creation.
func (p *Process) GetOrNewTree(tid int, threadName string) *calltree.Tree {
	if t, ok := p.Threads[tid]; ok {
		return t
	}
	t := calltree.New(tid, threadName)
	p.Threads[tid] = t
	p.interval.Marker()
	return t
}

// Tree returns the existing tree for tid without creating one.
func (p *Process) Tree(tid int) (*calltree.Tree, error) {
	t, ok := p.Threads[tid]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "no call tree for thread %d in process %d", tid, p.ProcessID)
	}
	return t, nil
}

// ShowTrees logs a trace-level diagnostic line per tracked thread: its id,
// name, and current stack depth and top-of-stack element. The ReportProcess
// paths call it before reaping inactive threads, and Report calls it again
// before the per-tree reports.
func (p *Process) ShowTrees() {
	for tid, t := range p.Threads {
		perflog.Logf(perflog.Trace, "process %d thread %d (%s): depth=%d top=%s",
			p.ProcessID, tid, t.ThreadName, t.StackDepth(), t.Top().ElementName)
	}
}

// Report takes the elapsed time of the process's interval clock, logs
// aggregate user/system CPU percentage over that interval, then delegates
// to each tree's Report.
func (p *Process) Report() {
	elapsed := p.interval
	elapsed.Elapsed()
	p.interval.Marker()

	if elapsed.WallUS > 0 {
		userPct := 100 * float64(elapsed.UserUS) / float64(elapsed.WallUS)
		sysPct := 100 * float64(elapsed.SystemUS) / float64(elapsed.WallUS)
		perflog.Logf(perflog.Trace, "process %d (%s): user CPU %.2f%% system CPU %.2f%% over interval",
			p.ProcessID, p.ProcessName, userPct, sysPct)
	}

	p.ShowTrees()
	for _, t := range p.Threads {
		t.Report()
	}
}

// CloseInactiveThreads removes every tree for which IsInactive holds.
// Returns whether any removal occurred.
func (p *Process) CloseInactiveThreads() bool {
	removed := false
	for tid, t := range p.Threads {
		if t.IsInactive() {
			delete(p.Threads, tid)
			removed = true
		}
	}
	return removed
}

// RemoveTree destroys and removes a single tree, returning whether it
// existed.
func (p *Process) RemoveTree(tid int) bool {
	if _, ok := p.Threads[tid]; !ok {
		return false
	}
	delete(p.Threads, tid)
	return true
}

// Registry is the process-wide mapping process_id -> Process Entry. The
// in-process library keeps exactly one entry (the host process); the
// aggregator may hold many, optionally bounded by NewBounded.
type Registry struct {
	processes map[int]*Process
	bounded   *lru.LRU
}

// New returns an unbounded Registry.
func New() *Registry {
	return &Registry{processes: make(map[int]*Process)}
}

// NewBounded returns a Registry that evicts the least recently used process
// (recency is refreshed by Find, GetOrNew and Insert) once more than
// maxProcesses are tracked, the Resource-class
// mitigation an aggregator deployment needs to stay bounded in memory.
func NewBounded(maxProcesses int) (*Registry, error) {
	r := &Registry{processes: make(map[int]*Process)}
	evict := func(key interface{}, _ interface{}) {
		pid := key.(int)
		delete(r.processes, pid)
		perflog.Logf(perflog.Warning, "evicted process %d from bounded registry (capacity %d)", pid, maxProcesses)
	}
	l, err := lru.NewLRU(maxProcesses, evict)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to create bounded registry: %v", err)
	}
	r.bounded = l
	return r, nil
}

// Find returns the Process Entry for pid, or a NotFound error.
func (r *Registry) Find(pid int) (*Process, error) {
	p, ok := r.processes[pid]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "no process entry for pid %d", pid)
	}
	if r.bounded != nil {
		r.bounded.Get(pid) // refresh recency
	}
	return p, nil
}

// Insert adds entry under pid, replacing any existing entry.
func (r *Registry) Insert(pid int, entry *Process) {
	r.processes[pid] = entry
	if r.bounded != nil {
		r.bounded.Add(pid, struct{}{})
	}
}

// Remove deletes pid's entry, if any.
func (r *Registry) Remove(pid int) {
	delete(r.processes, pid)
	if r.bounded != nil {
		r.bounded.Remove(pid)
	}
}

// Size returns the number of tracked processes.
func (r *Registry) Size() int {
	return len(r.processes)
}

// PIDs returns the currently tracked process ids, in no particular order.
func (r *Registry) PIDs() []int {
	pids := make([]int, 0, len(r.processes))
	for pid := range r.processes {
		pids = append(pids, pid)
	}
	return pids
}

// GetOrNew returns the existing Process Entry for pid, or creates one,
// reading its process name from /proc/<pid>/cmdline.
func (r *Registry) GetOrNew(pid int) *Process {
	if p, ok := r.processes[pid]; ok {
		if r.bounded != nil {
			r.bounded.Get(pid)
		}
		return p
	}
	p := &Process{
		ProcessID:   pid,
		ProcessName: processName(pid),
		Threads:     make(map[int]*calltree.Tree),
	}
	p.interval.Marker()
	r.Insert(pid, p)
	return p
}

// processName reads /proc/<pid>/cmdline, falling back to a placeholder and
// logging a Resource-class error if it cannot be read — a core-tracing
// feature (the process name in reports) degrades without interrupting
// tracing itself.
func processName(pid int) string {
	raw, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil {
		perflog.Logf(perflog.Error, "failed to read process name for pid %d: %v", pid, err)
		return "<unknown>"
	}
	name := strings.ReplaceAll(strings.TrimRight(string(raw), "\x00"), "\x00", " ")
	if name == "" {
		return "<unknown>"
	}
	return name
}
