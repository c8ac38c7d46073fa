//go:build perfshowcpu

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

package node

import "fmt"

// reportLine is the perfshowcpu build: every line is extended with the
// node's per-thread user/system CPU time, in milliseconds.
func (n *Node) reportLine(level int, deltaOnly bool) string {
	ind := indent(level)
	if deltaOnly {
		return fmt.Sprintf("%s%s elapsed time %.3f ms user %.3f ms system %.3f ms",
			ind, n.ElementName, msOf(n.LastDeltaUS), msOf(n.UserCPUUS), msOf(n.SystemCPUUS))
	}
	return fmt.Sprintf(
		"%s%s (Count, Max, Min, Avg) Total (%d, %.3f, %s, %.3f) Interval (%d, %.3f, %s, %.3f) CPU user %.3f ms system %.3f ms",
		ind, n.ElementName,
		n.TotalCount, msOf(n.TotalMaxUS), formatMinMs(n.TotalCount, n.TotalMinUS), msOf(n.TotalAvgUS),
		n.IntervalCount, msOf(n.IntervalMaxUS), formatMinMs(n.IntervalCount, n.IntervalMinUS), msOf(n.IntervalAvgUS),
		msOf(n.TotalUserCPUUS), msOf(n.TotalSystemCPUUS),
	)
}
