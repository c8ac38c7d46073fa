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

package mqueue

import "testing"

func TestNameRoundTrip(t *testing.T) {
	ev := NewEntryEvent(100, 200, "myScope", "worker", 12345, 1000)
	if got := ev.NameString(); got != "myScope" {
		t.Errorf("NameString() = %q, want %q", got, "myScope")
	}
	if got := ev.ThreadNameString(); got != "worker" {
		t.Errorf("ThreadNameString() = %q, want %q", got, "worker")
	}
	if ev.Type != Entry {
		t.Errorf("Type = %v, want Entry", ev.Type)
	}
}

func TestNameTruncationNeverOverflowsBuffer(t *testing.T) {
	long := make([]byte, MaxNameLen*2)
	for i := range long {
		long[i] = 'x'
	}
	ev := NewEntryEvent(1, 2, string(long), "t", 0, 0)
	if len(ev.Name) != MaxNameLen {
		t.Fatalf("Name field length = %d, want %d", len(ev.Name), MaxNameLen)
	}
}

func TestMessageTypeConstants(t *testing.T) {
	cases := map[MessageType]int32{
		NoMessage:     -1,
		Entry:         1,
		Exit:          2,
		Threshold:     3,
		ReportThread:  4,
		ReportProcess: 5,
		CloseThread:   6,
		CloseProcess:  7,
		ExitQueue:     9998,
		MaxType:       9999,
	}
	for mt, want := range cases {
		if int32(mt) != want {
			t.Errorf("%v = %d, want %d", mt, int32(mt), want)
		}
	}
}
