//go:build perfremote

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

	"github.com/rdkcentral/gorkperf/clock"
	"github.com/rdkcentral/gorkperf/mqueue"
	"github.com/rdkcentral/gorkperf/perflog"
)

var (
	selfPID = int32(os.Getpid())
	q       *mqueue.Queue
)

func init() {
	var err error
	q, err = mqueue.GetQueue(mqueue.QueueName, false)
	if err != nil {
		perflog.Logf(perflog.Error, "remote mode: failed to open event queue: %v", err)
	}
}

// Handle is the opaque scope handle for the remote build: since there is
// no local tree to push onto, it only carries what Stop needs to build the
// matching Exit event.
type Handle struct {
	name  string
	tid   int32
	start clock.Sample
}

// Start emits an Entry event instead of updating a local tree.
func Start(name string) *Handle {
	tid := int32(clock.Tid())
	threadName, err := clock.ThreadName()
	if err != nil {
		perflog.Logf(perflog.Error, "failed to read thread name: %v", err)
	}

	var start clock.Sample
	start.Marker()

	if q != nil {
		if err := q.Send(mqueue.NewEntryEvent(selfPID, tid, name, threadName, start.WallUS, 0)); err != nil {
			perflog.Logf(perflog.Error, "failed to send Entry event: %v", err)
		}
	}
	return &Handle{name: name, tid: tid, start: start}
}

// Stop emits the matching Exit event.
func Stop(h *Handle) {
	if h == nil || q == nil {
		return
	}
	elapsed := h.start
	elapsed.Elapsed()
	if err := q.Send(buildExitEvent(selfPID, h.tid, h.name, elapsed)); err != nil {
		perflog.Logf(perflog.Error, "failed to send Exit event: %v", err)
	}
}

// SetThreshold emits a Threshold event for the active scope.
func SetThreshold(h *Handle, us int64) {
	if h == nil || q == nil {
		return
	}
	if err := q.Send(mqueue.NewThresholdEvent(selfPID, h.tid, h.name, us)); err != nil {
		perflog.Logf(perflog.Error, "failed to send Threshold event: %v", err)
	}
}

// ReportProcess asks the aggregator to report pid.
func ReportProcess(pid int) {
	if q == nil {
		return
	}
	if err := q.Send(mqueue.NewReportProcessEvent(int32(pid))); err != nil {
		perflog.Logf(perflog.Error, "failed to send ReportProcess event: %v", err)
	}
}

// ReportThread asks the aggregator to report one of the host process's
// threads.
func ReportThread(tid int) {
	if q == nil {
		return
	}
	if err := q.Send(mqueue.NewReportThreadEvent(selfPID, int32(tid))); err != nil {
		perflog.Logf(perflog.Error, "failed to send ReportThread event: %v", err)
	}
}

// CloseThread asks the aggregator to destroy a thread's tree.
func CloseThread(tid int) {
	if q == nil {
		return
	}
	if err := q.Send(mqueue.NewCloseThreadEvent(selfPID, int32(tid))); err != nil {
		perflog.Logf(perflog.Error, "failed to send CloseThread event: %v", err)
	}
}

// CloseProcess asks the aggregator to destroy a process entry.
func CloseProcess(pid int) {
	if q == nil {
		return
	}
	if err := q.Send(mqueue.NewCloseProcessEvent(int32(pid))); err != nil {
		perflog.Logf(perflog.Error, "failed to send CloseProcess event: %v", err)
	}
}

// Shutdown releases this client's queue handle. It sends no event to the
// aggregator.
func Shutdown() {
	if q != nil {
		q.Release()
	}
}
