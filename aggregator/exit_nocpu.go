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

package aggregator

import (
	"github.com/rdkcentral/gorkperf/mqueue"
	"github.com/rdkcentral/gorkperf/perflog"
)

func (a *Aggregator) handleExit(ev mqueue.Event) {
	p, err := a.Registry.Find(int(ev.PID))
	if err != nil {
		perflog.Logf(perflog.Error, "[%s] Exit for unknown process %d: %v", a.RunID, ev.PID, err)
		return
	}
	tr, err := p.Tree(int(ev.TID))
	if err != nil {
		perflog.Logf(perflog.Error, "[%s] Exit for unknown thread %d: %v", a.RunID, ev.TID, err)
		return
	}
	top := tr.Top()
	if top.ElementName != ev.NameString() {
		perflog.Logf(perflog.Error, "[%s] Exit name mismatch on thread %d: stack top %q, event %q",
			a.RunID, ev.TID, top.ElementName, ev.NameString())
		return
	}
	top.Increment(ev.ElapsedUS, 0, 0)
	tr.Close(top)
}
