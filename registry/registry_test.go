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

package registry

import (
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFindMissingReturnsNotFound(t *testing.T) {
	r := New()
	_, err := r.Find(42)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("Find() err = %v, want codes.NotFound", err)
	}
}

func TestGetOrNewTreeIsStable(t *testing.T) {
	r := New()
	p := r.GetOrNew(1)
	tr1 := p.GetOrNewTree(10, "worker")
	tr2 := p.GetOrNewTree(10, "worker")
	if tr1 != tr2 {
		t.Fatalf("GetOrNewTree returned distinct trees for the same tid")
	}
}

func TestCloseInactiveThreads(t *testing.T) {
	r := New()
	p := r.GetOrNew(1)
	tr := p.GetOrNewTree(10, "worker")
	a := tr.Add("A")
	tr.Close(a)
	tr.Report() // now inactive

	if removed := p.CloseInactiveThreads(); !removed {
		t.Fatalf("CloseInactiveThreads() = false, want true")
	}
	if _, ok := p.Threads[10]; ok {
		t.Fatalf("thread 10 survived CloseInactiveThreads")
	}
}

func TestCloseInactiveThreadsLeavesActiveOnes(t *testing.T) {
	r := New()
	p := r.GetOrNew(1)
	active := p.GetOrNewTree(10, "active")
	active.Add("A") // never closed: still active

	idle := p.GetOrNewTree(11, "idle")
	b := idle.Add("B")
	idle.Close(b)
	idle.Report()

	p.CloseInactiveThreads()

	if _, ok := p.Threads[10]; !ok {
		t.Fatalf("active thread was reaped")
	}
	if _, ok := p.Threads[11]; ok {
		t.Fatalf("inactive thread was not reaped")
	}
}

func TestBoundedRegistryEvicts(t *testing.T) {
	r, err := NewBounded(2)
	if err != nil {
		t.Fatalf("NewBounded() err = %v", err)
	}
	r.GetOrNew(1)
	r.GetOrNew(2)
	r.GetOrNew(3) // evicts pid 1 (least recently touched)

	if r.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", r.Size())
	}
	if _, err := r.Find(1); status.Code(err) != codes.NotFound {
		t.Fatalf("expected pid 1 to be evicted, Find() err = %v", err)
	}
}

func TestRemoveTree(t *testing.T) {
	r := New()
	p := r.GetOrNew(1)
	p.GetOrNewTree(10, "worker")

	if !p.RemoveTree(10) {
		t.Fatalf("RemoveTree(10) = false, want true")
	}
	if p.RemoveTree(10) {
		t.Fatalf("RemoveTree(10) second call = true, want false")
	}
}
