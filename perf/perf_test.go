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
	"testing"
	"time"
)

func TestStartStopIncrementsCount(t *testing.T) {
	h := Start("TestScope")
	time.Sleep(1 * time.Millisecond)
	Stop(h)

	if h.node.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", h.node.TotalCount)
	}
	if h.node.LastDeltaUS <= 0 {
		t.Errorf("LastDeltaUS = %d, want > 0", h.node.LastDeltaUS)
	}
}

func TestNestedScopes(t *testing.T) {
	a := Start("Outer")
	b := Start("Inner")
	Stop(b)
	Stop(a)

	if _, ok := a.node.Children["Inner"]; !ok {
		t.Fatalf("Outer has no Inner child")
	}
	if a.tree.Top() != a.tree.Root {
		t.Errorf("tree not unwound to root after nested Stop calls")
	}
}

func TestScopeConvenienceWrapper(t *testing.T) {
	func() {
		s := NewScope("Wrapped")
		defer s.Close()
		s.SetThreshold(1)
	}()
}

func TestStopOnNilHandleIsNoop(t *testing.T) {
	Stop(nil)
	SetThreshold(nil, 5)
}
