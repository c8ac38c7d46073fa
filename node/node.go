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

// Package node implements the Stats Node: aggregated per-(thread, call-path)
// timing counters and their update/reset rules.
package node

import (
	"fmt"
	"strings"

	"github.com/rdkcentral/gorkperf/perflog"
)

// SentinelMinUS is the initial value of every *_min_us field, overwritten by
// the first sample that reaches it.
const SentinelMinUS int64 = 1_000_000_000

// Node is one Stats Node: the aggregated counters for all visits to one
// call path, plus its children keyed by element name.
type Node struct {
	ElementName string

	TotalTimeUS, TotalCount, TotalMinUS, TotalMaxUS, TotalAvgUS int64
	IntervalTimeUS, IntervalCount, IntervalMinUS, IntervalMaxUS, IntervalAvgUS int64
	LastDeltaUS int64

	UserCPUUS, SystemCPUUS           int64
	TotalUserCPUUS, TotalSystemCPUUS int64

	// ThresholdUS is signed; negative disables the per-exit diagnostic.
	ThresholdUS int64

	Children map[string]*Node
}

// New returns a Stats Node for element, with min fields set to the sentinel
// and its threshold disabled.
func New(element string) *Node {
	return &Node{
		ElementName:   element,
		TotalMinUS:    SentinelMinUS,
		IntervalMinUS: SentinelMinUS,
		ThresholdUS:   -1,
		Children:      make(map[string]*Node),
	}
}

// ChildOrNew returns the existing child keyed by name, creating it if this
// is the first visit. A node is created exactly once per (parent, name).
func (n *Node) ChildOrNew(name string) *Node {
	if c, ok := n.Children[name]; ok {
		return c
	}
	c := New(name)
	n.Children[name] = c
	return c
}

// Increment updates both the total and interval counters identically: min
// and max are updated with a strict compare, avg is recomputed as
// time/count after count is bumped, and last_delta/user_cpu/system_cpu are
// overwritten while the CPU totals accumulate.
func (n *Node) Increment(deltaUS, userUS, systemUS int64) {
	n.TotalTimeUS += deltaUS
	n.TotalCount++
	if deltaUS < n.TotalMinUS {
		n.TotalMinUS = deltaUS
	}
	if deltaUS > n.TotalMaxUS {
		n.TotalMaxUS = deltaUS
	}
	n.TotalAvgUS = n.TotalTimeUS / n.TotalCount

	n.IntervalTimeUS += deltaUS
	n.IntervalCount++
	if deltaUS < n.IntervalMinUS {
		n.IntervalMinUS = deltaUS
	}
	if deltaUS > n.IntervalMaxUS {
		n.IntervalMaxUS = deltaUS
	}
	n.IntervalAvgUS = n.IntervalTimeUS / n.IntervalCount

	n.LastDeltaUS = deltaUS
	n.UserCPUUS = userUS
	n.SystemCPUUS = systemUS
	n.TotalUserCPUUS += userUS
	n.TotalSystemCPUUS += systemUS
}

// ResetInterval zeroes the interval time, avg, max and count, and sets the
// interval min back to the sentinel; totals are untouched.
func (n *Node) ResetInterval() {
	n.IntervalTimeUS = 0
	n.IntervalAvgUS = 0
	n.IntervalMaxUS = 0
	n.IntervalCount = 0
	n.IntervalMinUS = SentinelMinUS
}

// Stats is an immutable snapshot of a Node's counters, with the children
// map dropped, suited to test comparisons via cmp.Diff.
type Stats struct {
	ElementName                                                                string
	TotalTimeUS, TotalCount, TotalMinUS, TotalMaxUS, TotalAvgUS                int64
	IntervalTimeUS, IntervalCount, IntervalMinUS, IntervalMaxUS, IntervalAvgUS int64
	LastDeltaUS                                                                int64
	UserCPUUS, SystemCPUUS, TotalUserCPUUS, TotalSystemCPUUS                   int64
	ThresholdUS                                                                int64
}

// Snapshot returns the current counters as a Stats value.
func (n *Node) Snapshot() Stats {
	return Stats{
		ElementName:       n.ElementName,
		TotalTimeUS:       n.TotalTimeUS,
		TotalCount:        n.TotalCount,
		TotalMinUS:        n.TotalMinUS,
		TotalMaxUS:        n.TotalMaxUS,
		TotalAvgUS:        n.TotalAvgUS,
		IntervalTimeUS:    n.IntervalTimeUS,
		IntervalCount:     n.IntervalCount,
		IntervalMinUS:     n.IntervalMinUS,
		IntervalMaxUS:     n.IntervalMaxUS,
		IntervalAvgUS:     n.IntervalAvgUS,
		LastDeltaUS:       n.LastDeltaUS,
		UserCPUUS:         n.UserCPUUS,
		SystemCPUUS:       n.SystemCPUUS,
		TotalUserCPUUS:    n.TotalUserCPUUS,
		TotalSystemCPUUS:  n.TotalSystemCPUUS,
		ThresholdUS:       n.ThresholdUS,
	}
}

// Report emits one line for n prefixed by 2*level dashes, then recurses into
// children. When deltaOnly is false, ResetInterval runs on n after its
// children have been reported, matching the original post-order reset.
func (n *Node) Report(level int, deltaOnly bool) {
	perflog.Logf(perflog.Trace, "%s", n.reportLine(level, deltaOnly))
	for _, c := range n.Children {
		c.Report(level+1, deltaOnly)
	}
	if !deltaOnly {
		n.ResetInterval()
	}
}

func indent(level int) string {
	return strings.Repeat("--", level)
}

func msOf(us int64) float64 {
	return float64(us) / 1000.0
}

// formatMinMs renders a *_min_us field, substituting an em-dash when the
// backing count is zero rather than printing the raw sentinel.
func formatMinMs(count, minUS int64) string {
	if count == 0 {
		return "—"
	}
	return fmt.Sprintf("%.3f", msOf(minUS))
}
