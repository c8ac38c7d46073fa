//go:build !noperf && !perfremote

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

package perf

import (
	"os"
	"sync"

	"github.com/rdkcentral/gorkperf/calltree"
	"github.com/rdkcentral/gorkperf/clock"
	"github.com/rdkcentral/gorkperf/node"
	"github.com/rdkcentral/gorkperf/perflog"
	"github.com/rdkcentral/gorkperf/reporter"
	"github.com/rdkcentral/gorkperf/registry"
)

var (
	// globalMu is the single process-wide lock (C9). It is not
	// reentrant — sync.Mutex never is — so reentrancy is achieved
	// structurally instead: every exported function here takes it
	// exactly once at the outermost call, and nothing it calls
	// (node/calltree/registry, or perflog) ever tries to take it again.
	globalMu sync.Mutex

	reg     = registry.New()
	selfPID = os.Getpid()
	rep     *reporter.Reporter
)

func init() {
	rep = reporter.New(reg)
	rep.Lock = lock
	reg.GetOrNew(selfPID)
	rep.Start()
	perflog.Logf(perflog.Warning, "gorkperf initialized for pid %d", selfPID)
}

func lock() func() {
	globalMu.Lock()
	return globalMu.Unlock
}

// Handle is the opaque scope handle for the in-process build.
type Handle struct {
	node  *node.Node
	tree  *calltree.Tree
	start clock.Sample
}

// Start constructs a scope record and pushes it onto the calling thread's
// call tree.
func Start(name string) *Handle {
	unlock := lock()
	defer unlock()

	p := reg.GetOrNew(selfPID)
	tid := clock.Tid()
	threadName, err := clock.ThreadName()
	if err != nil {
		perflog.Logf(perflog.Error, "failed to read thread name: %v", err)
	}
	tr := p.GetOrNewTree(tid, threadName)
	n := tr.Add(name)

	var start clock.Sample
	start.Marker()
	return &Handle{node: n, tree: tr, start: start}
}

// Stop destroys the scope record: pops it (if it is the stack top — see
// calltree.Close) and records its elapsed time. If a threshold was set and
// exceeded, it emits an immediate diagnostic report.
func Stop(h *Handle) {
	if h == nil {
		return
	}
	unlock := lock()
	defer unlock()

	elapsed := h.start
	elapsed.Elapsed()
	h.node.Increment(elapsed.WallUS, elapsed.UserUS, elapsed.SystemUS)
	h.tree.Close(h.node)

	if h.node.ThresholdUS > 0 && elapsed.WallUS > h.node.ThresholdUS {
		perflog.Logf(perflog.Warning, "%s Threshold %d exceeded, elapsed time %.3f ms",
			h.node.ElementName, h.node.ThresholdUS/1000, float64(elapsed.WallUS)/1000)
		h.node.Report(0, true)
	}
}

// SetThreshold attaches a microsecond threshold to the scope's node.
func SetThreshold(h *Handle, us int64) {
	if h == nil {
		return
	}
	unlock := lock()
	defer unlock()
	h.node.ThresholdUS = us
}

// ReportProcess triggers an immediate textual report for pid.
func ReportProcess(pid int) {
	unlock := lock()
	defer unlock()
	p, err := reg.Find(pid)
	if err != nil {
		perflog.Logf(perflog.Error, "report_process(%d): %v", pid, err)
		return
	}
	p.ShowTrees()
	p.CloseInactiveThreads()
	p.Report()
}

// ReportThread triggers a report for a single thread of the host process.
func ReportThread(tid int) {
	unlock := lock()
	defer unlock()
	p, err := reg.Find(selfPID)
	if err != nil {
		return
	}
	tr, err := p.Tree(tid)
	if err != nil {
		perflog.Logf(perflog.Error, "report_thread(%d): %v", tid, err)
		return
	}
	tr.Report()
}

// CloseThread removes a thread's tree from the host process entry.
func CloseThread(tid int) {
	unlock := lock()
	defer unlock()
	p, err := reg.Find(selfPID)
	if err != nil {
		return
	}
	p.RemoveTree(tid)
}

// CloseProcess removes a process entry from the registry.
func CloseProcess(pid int) {
	unlock := lock()
	defer unlock()
	reg.Remove(pid)
}

// Shutdown performs library-unload teardown: a final report for the host
// process, self-removal from the registry, and stopping the reporter.
func Shutdown() {
	ReportProcess(selfPID)

	unlock := lock()
	reg.Remove(selfPID)
	unlock()

	rep.Stop()
}
