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

// Package clock samples wall-clock time and per-OS-thread CPU consumption in
// microseconds, and computes elapsed intervals between two samples.
package clock

import (
	"bytes"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/rdkcentral/gorkperf/perflog"
)

// Unit selects the divisor applied by Sample.Get.
type Unit int

// Field selects which component of a Sample to read with Get.
type Field int

const (
	Microseconds Unit = iota
	Milliseconds

	Wall Field = iota
	User
	System
)

// Sample holds a wall-clock timestamp and per-thread CPU time, all in
// microseconds. After Elapsed, the three fields hold a duration rather than
// an absolute timestamp; the zero value is a valid starting point for either.
type Sample struct {
	WallUS   int64
	UserUS   int64
	SystemUS int64
}

// Marker fills s with the current wall-clock time and the calling OS
// thread's accumulated user and system CPU time, all in microseconds. If the
// OS refuses to report per-thread CPU usage, the CPU fields are set to 0 and
// an error is logged; wall-clock is always best-effort.
func (s *Sample) Marker() {
	s.WallUS = time.Now().UnixMicro()

	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		perflog.Logf(perflog.Error, "failed to read per-thread CPU usage: %v", err)
		s.UserUS = 0
		s.SystemUS = 0
		return
	}
	s.UserUS = timevalToUS(ru.Utime)
	s.SystemUS = timevalToUS(ru.Stime)
}

// Elapsed takes a fresh Marker sample and overwrites s with (new − old)
// componentwise, so that s then represents a non-negative elapsed duration
// since the preceding Marker call on the same instance.
func (s *Sample) Elapsed() {
	var fresh Sample
	fresh.Marker()
	s.WallUS = fresh.WallUS - s.WallUS
	s.UserUS = fresh.UserUS - s.UserUS
	s.SystemUS = fresh.SystemUS - s.SystemUS
}

// Get returns the requested field, divided down to the requested unit.
func (s Sample) Get(f Field, u Unit) int64 {
	var v int64
	switch f {
	case User:
		v = s.UserUS
	case System:
		v = s.SystemUS
	default:
		v = s.WallUS
	}
	if u == Milliseconds {
		return v / 1000
	}
	return v
}

func timevalToUS(tv unix.Timeval) int64 {
	return tv.Sec*1_000_000 + int64(tv.Usec)
}

// ThreadName reads the calling OS thread's comm name, matching
// pthread_getname_np's 16-byte (including NUL) limit on Linux.
func ThreadName() (string, error) {
	var buf [16]byte
	if err := unix.Prctl(unix.PR_GET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0); err != nil {
		return "", err
	}
	n := bytes.IndexByte(buf[:], 0)
	if n < 0 {
		n = len(buf)
	}
	return string(buf[:n]), nil
}

// Tid returns the calling OS thread's id, sampled fresh on every call since
// a goroutine is not pinned to a single OS thread between calls.
func Tid() int {
	return unix.Gettid()
}
