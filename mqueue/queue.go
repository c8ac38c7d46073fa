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

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rdkcentral/gorkperf/perflog"
)

// Go's standard library and golang.org/x/sys/unix expose no high-level
// mq_open/mq_timedsend/mq_timedreceive bindings on Linux; Queue calls the
// raw syscalls by number (unix.SYS_MQ_*), the same ABI glibc's mq_* wrappers
// use, via unix.Syscall/Syscall6.

var (
	singletonMu sync.Mutex
	singleton   *Queue
)

// Queue is a refcounted, per-process singleton handle to the named message
// queue, mirroring the original's shared_ptr<PerfMsgQueue>.
type Queue struct {
	fd        int
	name      string
	isService bool

	mu   sync.Mutex
	refs int

	sent, received, entryCount, exitCount uint64
}

// GetQueue returns the process singleton handle, opening the queue on the
// first call and bumping the refcount on every subsequent call. isService
// requests read-only+create+unlink-first open (the aggregator's mode);
// clients open write-only.
func GetQueue(name string, isService bool) (*Queue, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	if singleton != nil {
		singleton.refs++
		return singleton, nil
	}

	fd, err := openQueue(name, isService)
	if err != nil {
		return nil, err
	}
	singleton = &Queue{fd: fd, name: name, isService: isService, refs: 1}
	return singleton, nil
}

// IsQueueCreated probes whether a queue of this name already exists,
// without taking ownership of it.
func IsQueueCreated(name string) bool {
	namePtr, err := unix.BytePtrFromString(name)
	if err != nil {
		return false
	}
	fd, _, errno := unix.Syscall6(unix.SYS_MQ_OPEN,
		uintptr(unsafe.Pointer(namePtr)), uintptr(unix.O_RDONLY), 0, 0, 0, 0)
	if errno != 0 {
		return false
	}
	unix.Close(int(fd))
	return true
}

func openQueue(name string, isService bool) (int, error) {
	namePtr, err := unix.BytePtrFromString(name)
	if err != nil {
		return -1, status.Errorf(codes.Internal, "invalid queue name %q: %v", name, err)
	}

	if isService {
		unix.Syscall(unix.SYS_MQ_UNLINK, uintptr(unsafe.Pointer(namePtr)), 0, 0)

		attr := mqAttr{MaxMsg: int64(systemMaxMsg()), MsgSize: int64(unsafe.Sizeof(Event{}))}
		fd, _, errno := unix.Syscall6(unix.SYS_MQ_OPEN,
			uintptr(unsafe.Pointer(namePtr)),
			uintptr(unix.O_RDONLY|unix.O_CREAT),
			uintptr(0600),
			uintptr(unsafe.Pointer(&attr)), 0, 0)
		if errno != 0 {
			return -1, status.Errorf(codes.Unavailable, "mq_open(%q, service) failed: %v", name, errno)
		}
		return int(fd), nil
	}

	fd, _, errno := unix.Syscall6(unix.SYS_MQ_OPEN,
		uintptr(unsafe.Pointer(namePtr)), uintptr(unix.O_WRONLY), 0, 0, 0, 0)
	if errno != 0 {
		return -1, status.Errorf(codes.Unavailable, "mq_open(%q, client) failed: %v", name, errno)
	}
	return int(fd), nil
}

// mqAttr mirrors struct mq_attr on Linux/amd64: four longs plus four
// reserved longs, 64 bytes total.
type mqAttr struct {
	Flags    int64
	MaxMsg   int64
	MsgSize  int64
	CurMsgs  int64
	reserved [4]int64
}

// systemMaxMsg reads /proc/sys/fs/mqueue/msg_max, falling back to a
// conservative default of 10 when it cannot be read.
func systemMaxMsg() int {
	raw, err := os.ReadFile("/proc/sys/fs/mqueue/msg_max")
	if err != nil {
		perflog.Logf(perflog.Error, "failed to read /proc/sys/fs/mqueue/msg_max: %v", err)
		return 10
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || n <= 0 {
		return 10
	}
	return n
}

// AddRef bumps the refcount of an already-open handle.
func (q *Queue) AddRef() {
	singletonMu.Lock()
	q.refs++
	singletonMu.Unlock()
}

// Release decrements the refcount; the last release closes the descriptor
// and, for a service handle, unlinks the queue. It logs the four running
// counters before closing, matching the original destructor.
func (q *Queue) Release() error {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	q.refs--
	if q.refs > 0 {
		return nil
	}

	perflog.Logf(perflog.Warning, "mqueue %s closing: sent=%d received=%d entry=%d exit=%d",
		q.name, q.sent, q.received, q.entryCount, q.exitCount)

	err := unix.Close(q.fd)
	if q.isService {
		namePtr, nerr := unix.BytePtrFromString(q.name)
		if nerr == nil {
			unix.Syscall(unix.SYS_MQ_UNLINK, uintptr(unsafe.Pointer(namePtr)), 0, 0)
		}
	}
	singleton = nil
	return err
}

// Send enqueues ev at Priority, blocking while the queue is full.
func (q *Queue) Send(ev Event) error {
	_, _, errno := unix.Syscall6(unix.SYS_MQ_TIMEDSEND,
		uintptr(q.fd),
		uintptr(unsafe.Pointer(&ev)),
		unsafe.Sizeof(ev),
		uintptr(Priority),
		0, 0)
	if errno != 0 {
		return status.Errorf(codes.Unavailable, "mq_send failed: %v", errno)
	}

	q.mu.Lock()
	q.sent++
	switch ev.Type {
	case Entry:
		q.entryCount++
	case Exit:
		q.exitCount++
	}
	q.mu.Unlock()
	return nil
}

// Receive blocks for up to timeout (0 meaning forever) and returns the next
// event. A timeout yields an Event tagged NoMessage and a nil error;
// non-fatal read errors yield an Event tagged MaxType.
func (q *Queue) Receive(timeout time.Duration) (Event, error) {
	var ev Event
	var tsPtr unsafe.Pointer
	var ts unix.Timespec

	if timeout > 0 {
		deadline := time.Now().Add(timeout)
		ts.Sec = int64(deadline.Unix())
		ts.Nsec = int64(deadline.Nanosecond())
		tsPtr = unsafe.Pointer(&ts)
	}

	_, _, errno := unix.Syscall6(unix.SYS_MQ_TIMEDRECEIVE,
		uintptr(q.fd),
		uintptr(unsafe.Pointer(&ev)),
		unsafe.Sizeof(ev),
		0,
		uintptr(tsPtr), 0)

	if errno != 0 {
		if errno == unix.ETIMEDOUT {
			return Event{Type: NoMessage}, nil
		}
		perflog.Logf(perflog.Error, "mq_receive failed: %v", errno)
		return Event{Type: MaxType}, status.Errorf(codes.Unavailable, "mq_receive failed: %v", errno)
	}

	q.mu.Lock()
	q.received++
	switch ev.Type {
	case Entry:
		q.entryCount++
	case Exit:
		q.exitCount++
	}
	q.mu.Unlock()
	return ev, nil
}
