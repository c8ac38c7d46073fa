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

// Package perflog is the single logging sink every gorkperf component writes
// through. It reproduces the fixed line shape the tracing library has always
// used, and layers it on top of glog rather than the standard library logger.
package perflog

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	log "github.com/golang/glog"
	"golang.org/x/sys/unix"
)

// Level is the logging sink's three-level taxonomy. It intentionally does
// not grow a fourth level: Fatal never crosses the public API (see the perf
// package), so nothing here needs to own process termination.
type Level int

const (
	// Trace is gated behind RDKPER_EXTENDED_LOGGING.
	Trace Level = iota
	Warning
	Error
)

var verbose bool

func init() {
	v := strings.ToLower(os.Getenv("RDKPER_EXTENDED_LOGGING"))
	verbose = strings.HasPrefix(v, "true")
}

// Verbose reports whether RDKPER_EXTENDED_LOGGING enabled trace-level output.
func Verbose() bool {
	return verbose
}

// Logf writes one line of the form:
//
//	Process ID <pid> : Thread ID <tid> : <function>(<line>) : <message>
//
// and hands it to glog at the matching severity (ErrorDepth, WarningDepth,
// or InfoDepth for Trace). Where the line ends up follows glog's own flags:
// by default glog's log files, with Error lines also copied to stderr;
// nothing is written to stdout directly. Trace lines are dropped unless
// RDKPER_EXTENDED_LOGGING starts with "true" (case-insensitive). Exactly
// one call produces exactly one message; callers are responsible for the
// content, not the framing.
func Logf(level Level, format string, args ...interface{}) {
	if level == Trace && !verbose {
		return
	}
	function, line := caller(2)
	msg := fmt.Sprintf(format, args...)
	line2 := fmt.Sprintf("Process ID %X : Thread ID %X : %s(%d) : %s",
		os.Getpid(), unix.Gettid(), function, line, msg)
	switch level {
	case Error:
		log.ErrorDepth(1, line2)
	case Warning:
		log.WarningDepth(1, line2)
	default:
		log.InfoDepth(1, line2)
	}
}

func caller(skip int) (function string, line int) {
	pc, _, ln, ok := runtime.Caller(skip)
	if !ok {
		return "?", 0
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "?", ln
	}
	name := fn.Name()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name, ln
}
