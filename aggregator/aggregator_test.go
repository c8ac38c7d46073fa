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

package aggregator

import (
	"testing"

	"github.com/rdkcentral/gorkperf/mqueue"
	"github.com/rdkcentral/gorkperf/registry"
)

func TestEntryExitRoundTrip(t *testing.T) {
	reg := registry.New()
	a := New(reg)

	if !a.Handle(mqueue.NewEntryEvent(1, 10, "R", "worker", 1000, 0)) {
		t.Fatalf("Handle(Entry) signalled stop")
	}
	if !a.Handle(mqueue.NewExitEvent(1, 10, "R", 500)) {
		t.Fatalf("Handle(Exit) signalled stop")
	}

	p, err := reg.Find(1)
	if err != nil {
		t.Fatalf("Find(1) err = %v", err)
	}
	tr, err := p.Tree(10)
	if err != nil {
		t.Fatalf("Tree(10) err = %v", err)
	}
	r := tr.Root.Children["R"]
	if r == nil {
		t.Fatalf("no node for scope R")
	}
	if r.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", r.TotalCount)
	}
	if r.LastDeltaUS != 500 {
		t.Errorf("LastDeltaUS = %d, want 500", r.LastDeltaUS)
	}
	if tr.Top() != tr.Root {
		t.Errorf("stack not unwound after Exit")
	}
}

func TestExitNameMismatchDropsAndLogs(t *testing.T) {
	reg := registry.New()
	a := New(reg)

	a.Handle(mqueue.NewEntryEvent(1, 10, "A", "worker", 0, 0))
	a.Handle(mqueue.NewExitEvent(1, 10, "wrong-name", 500))

	p, _ := reg.Find(1)
	tr, _ := p.Tree(10)
	if tr.Top().ElementName != "A" {
		t.Fatalf("mismatched Exit mutated the stack: top = %q", tr.Top().ElementName)
	}
}

func TestExitQueueStopsLoop(t *testing.T) {
	a := New(registry.New())
	if a.Handle(mqueue.NewExitQueueEvent()) {
		t.Fatalf("Handle(ExitQueue) = true, want false")
	}
}

func TestNoMessageBoundedRetry(t *testing.T) {
	a := New(registry.New())
	for i := 0; i < maxConsecutiveTimeouts; i++ {
		if !a.Handle(mqueue.Event{Type: mqueue.NoMessage}) {
			t.Fatalf("Handle(NoMessage) stopped early at iteration %d", i)
		}
	}
	if a.Handle(mqueue.Event{Type: mqueue.NoMessage}) {
		t.Fatalf("Handle(NoMessage) did not stop after exceeding the retry budget")
	}
}

func TestCloseProcessRemovesEntry(t *testing.T) {
	reg := registry.New()
	a := New(reg)
	a.Handle(mqueue.NewEntryEvent(7, 1, "A", "t", 0, 0))
	a.Handle(mqueue.NewCloseProcessEvent(7))

	if _, err := reg.Find(7); err == nil {
		t.Fatalf("process 7 survived CloseProcess")
	}
}
