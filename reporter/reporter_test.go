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

package reporter

import (
	"testing"

	"github.com/rdkcentral/gorkperf/registry"
)

// TestBackoffSequence drives tick() directly (bypassing the 10s real-time
// wait) and checks the delayUnits growth rule: +5 per report, capped at 600.
func TestBackoffSequence(t *testing.T) {
	reg := registry.New()
	reg.GetOrNew(1)
	r := New(reg)

	var delaysAfterReport []uint32
	for tick := 0; len(delaysAfterReport) < 3 && tick < 100; tick++ {
		before := r.delayUnits
		r.tick()
		if r.delayUnits != before {
			delaysAfterReport = append(delaysAfterReport, r.delayUnits)
		}
	}

	want := []uint32{5, 10, 15}
	for i, w := range want {
		if i >= len(delaysAfterReport) {
			t.Fatalf("only %d reports observed, want at least %d", len(delaysAfterReport), len(want))
		}
		if delaysAfterReport[i] != w {
			t.Errorf("delayUnits after report %d = %d, want %d", i+1, delaysAfterReport[i], w)
		}
	}
}

func TestBackoffCapsAt600(t *testing.T) {
	reg := registry.New()
	r := New(reg)
	r.delayUnits = 598
	r.tickCount = 599 // > delayUnits, forces a report
	r.tick()
	if r.delayUnits != maxDelayUnits {
		t.Errorf("delayUnits = %d, want %d", r.delayUnits, maxDelayUnits)
	}
	r.tickCount = r.delayUnits + 1
	r.tick()
	if r.delayUnits != maxDelayUnits {
		t.Errorf("delayUnits exceeded cap: %d > %d", r.delayUnits, maxDelayUnits)
	}
}

func TestStartStop(t *testing.T) {
	reg := registry.New()
	r := New(reg)
	r.Start()
	r.Stop()
}
