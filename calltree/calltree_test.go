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

package calltree

import "testing"

func TestNewStartsAtRoot(t *testing.T) {
	tr := New(1, "worker")
	if tr.Top() != tr.Root {
		t.Fatalf("Top() != Root on a fresh tree")
	}
	if !tr.IsInactive() {
		t.Fatalf("fresh tree reports active")
	}
}

func TestThreadNameTruncated(t *testing.T) {
	tr := New(1, "a-name-well-over-fifteen-bytes")
	if len(tr.ThreadName) > 15 {
		t.Fatalf("ThreadName len = %d, want <= 15", len(tr.ThreadName))
	}
}

func TestEnterExitRoundTrip(t *testing.T) {
	tr := New(1, "t")
	a := tr.Add("A")
	if tr.Top() != a {
		t.Fatalf("Top() != A after Add")
	}
	if !tr.Close(a) {
		t.Fatalf("Close(A) reported failure")
	}
	if tr.Top() != tr.Root {
		t.Fatalf("Top() != Root after closing A")
	}
	if tr.ActivityCount != 1 {
		t.Errorf("ActivityCount = %d, want 1", tr.ActivityCount)
	}
}

func TestNestedScopes(t *testing.T) {
	tr := New(1, "t")
	a := tr.Add("A")
	b1 := tr.Add("B")
	tr.Close(b1)
	b2 := tr.Add("B")
	tr.Close(b2)
	tr.Close(a)

	if b1 != b2 {
		t.Fatalf("expected the same B node across both nested visits")
	}
	if got := a.Children["B"]; got != b1 {
		t.Fatalf("A's child map does not contain B")
	}
	if tr.Top() != tr.Root {
		t.Fatalf("stack not unwound to root")
	}
}

func TestCloseMismatchDoesNotPop(t *testing.T) {
	tr := New(1, "t")
	a := tr.Add("A")
	_ = tr.Add("B")

	ok := tr.Close(a) // stack top is B, not A
	if ok {
		t.Fatalf("Close(A) with B on top reported success")
	}
	if tr.Top().ElementName != "B" {
		t.Fatalf("stack was mutated by a mismatched Close: top = %q, want B", tr.Top().ElementName)
	}
}

func TestIsInactive(t *testing.T) {
	tr := New(1, "t")
	a := tr.Add("A")
	tr.Close(a)

	if tr.IsInactive() {
		t.Fatalf("tree reports inactive before its first Report()")
	}
	tr.Report()
	if !tr.IsInactive() {
		t.Fatalf("tree reports active immediately after Report() with no further activity")
	}

	b := tr.Add("B")
	if tr.IsInactive() {
		t.Fatalf("tree with an open scope reports inactive")
	}
	tr.Close(b)
}
