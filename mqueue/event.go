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

// Package mqueue is the Event Queue: a bounded, named, host-local POSIX
// message queue carrying fixed-size event records between clients and the
// aggregator.
package mqueue

import "bytes"

// MaxNameLen is the fixed width of every name field in an Event, matching
// the original's MAX_NAME_LEN.
const MaxNameLen = 128

// QueueName is the stable name both sides open.
const QueueName = "/RDKPerfServerQueue"

// Priority is used for every send; the queue carries a single priority
// class, so FIFO order within it is the only cross-client guarantee.
const Priority = 5

// MessageType tags an Event's payload. Values are bit-exact with the
// original wire format.
type MessageType int32

const (
	NoMessage     MessageType = -1
	Entry         MessageType = 1
	Exit          MessageType = 2
	Threshold     MessageType = 3
	ReportThread  MessageType = 4
	ReportProcess MessageType = 5
	CloseThread   MessageType = 6
	CloseProcess  MessageType = 7
	ExitQueue     MessageType = 9998
	MaxType       MessageType = 9999
)

func nameBytes(s string) [MaxNameLen]byte {
	var b [MaxNameLen]byte
	n := copy(b[:], s)
	if n < MaxNameLen {
		b[n] = 0
	}
	return b
}

func nameString(b [MaxNameLen]byte) string {
	if i := bytes.IndexByte(b[:], 0); i >= 0 {
		return string(b[:i])
	}
	return string(b[:])
}

// NewReportThreadEvent builds a ReportThread event.
func NewReportThreadEvent(pid, tid int32) Event {
	return Event{Type: ReportThread, PID: pid, TID: tid}
}

// NewReportProcessEvent builds a ReportProcess event.
func NewReportProcessEvent(pid int32) Event {
	return Event{Type: ReportProcess, PID: pid}
}

// NewCloseThreadEvent builds a CloseThread event.
func NewCloseThreadEvent(pid, tid int32) Event {
	return Event{Type: CloseThread, PID: pid, TID: tid}
}

// NewCloseProcessEvent builds a CloseProcess event.
func NewCloseProcessEvent(pid int32) Event {
	return Event{Type: CloseProcess, PID: pid}
}

// NewExitQueueEvent builds the sentinel event a SIGINT handler sends to its
// own queue to unblock a pending receive.
func NewExitQueueEvent() Event {
	return Event{Type: ExitQueue}
}

// NewThresholdEvent builds a Threshold event.
func NewThresholdEvent(pid, tid int32, name string, thresholdUS int64) Event {
	return Event{Type: Threshold, PID: pid, TID: tid, Name: nameBytes(name), ThresholdUS: thresholdUS}
}

// NameString returns the Name field as a Go string.
func (e Event) NameString() string {
	return nameString(e.Name)
}

// ThreadNameString returns the ThreadName field as a Go string.
func (e Event) ThreadNameString() string {
	return nameString(e.ThreadName)
}
