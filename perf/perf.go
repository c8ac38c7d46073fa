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

// Package perf is gorkperf's public, C-ABI-shaped API: Start/Stop/
// SetThreshold/ReportProcess/ReportThread/CloseThread/CloseProcess, plus
// the Scope convenience wrapper. Exactly one of three build configurations
// is active at a time: the default in-process mode (inproc.go), the no-op
// build (noperf.go, tag noperf), and the remote-forwarding build
// (remote.go, tag perfremote) — the Go equivalent of the original's
// NO_PERF/PERF_REMOTE compile switches. None of these functions return an
// error: diagnostics flow through perflog only, never back to the caller.
package perf

import (
	"sync"
	"time"

	"github.com/rdkcentral/gorkperf/perflog"
)

// Scope is the scoped-acquisition convenience wrapper: construct it with
// NewScope (and optionally call SetThreshold) and defer Close, the Go idiom
// replacing the original's RAII constructor/destructor pair.
type Scope struct {
	h *Handle
}

// NewScope begins a named scope on the calling thread's active call tree,
// calling Start in its constructor exactly as the original's scoped object
// does.
func NewScope(name string) *Scope {
	return &Scope{h: Start(name)}
}

// Close ends the scope, calling Stop to record its elapsed time.
func (s *Scope) Close() {
	Stop(s.h)
}

// SetThreshold attaches a microsecond threshold to the active scope.
func (s *Scope) SetThreshold(us int64) {
	SetThreshold(s.h, us)
}

// Benchmark returns a stop function for the FUNC_METRICS_START/
// FUNC_METRICS_END micro-benchmark: a lightweight, call-tree-independent
// timer. Each call to the returned function measures the time since the
// previous call (or since Benchmark itself, for the first call) and, every
// n calls, logs the running average and resets it.
func Benchmark(n int) func() {
	var (
		mu    sync.Mutex
		sum   time.Duration
		count int
		last  = time.Now()
	)
	return func() {
		now := time.Now()
		mu.Lock()
		defer mu.Unlock()
		sum += now.Sub(last)
		last = now
		count++
		if count >= n {
			perflog.Logf(perflog.Trace, "benchmark: average over %d calls = %v", n, sum/time.Duration(count))
			sum = 0
			count = 0
		}
	}
}
