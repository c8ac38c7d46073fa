//go:build !perfshowcpu

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

// Event is the fixed-size wire record for this build: the Exit variant
// carries a scalar elapsed time. Go has no C union, so every field that any
// variant might use is present in the struct; only the fields relevant to
// Type are meaningful for a given event.
type Event struct {
	Type MessageType
	PID  int32
	TID  int32

	Name       [MaxNameLen]byte
	ThreadName [MaxNameLen]byte

	TimestampUS int64 // Entry: start timestamp
	ElapsedUS   int64 // Exit: elapsed time
	ThresholdUS int64 // Entry/Threshold: threshold
}

// NewEntryEvent builds an Entry event.
func NewEntryEvent(pid, tid int32, name, threadName string, tsUS, thresholdUS int64) Event {
	return Event{
		Type:        Entry,
		PID:         pid,
		TID:         tid,
		Name:        nameBytes(name),
		ThreadName:  nameBytes(threadName),
		TimestampUS: tsUS,
		ThresholdUS: thresholdUS,
	}
}

// NewExitEvent builds an Exit event carrying a scalar elapsed time.
func NewExitEvent(pid, tid int32, name string, elapsedUS int64) Event {
	return Event{
		Type:      Exit,
		PID:       pid,
		TID:       tid,
		Name:      nameBytes(name),
		ElapsedUS: elapsedUS,
	}
}
