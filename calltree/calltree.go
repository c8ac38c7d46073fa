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

// Package calltree implements the per-thread Call Tree: a root Stats Node,
// its descendants, and the LIFO stack of currently open nodes.
package calltree

import (
	"github.com/rdkcentral/gorkperf/node"
	"github.com/rdkcentral/gorkperf/perflog"
)

const rootName = "root"

// Tree is one thread's call tree. Unlike the arena-of-indices the original
// uses to avoid a node/tree reference cycle, Go's garbage collector makes a
// plain pointer tree with no parent back-references safe here: Close
// resolves against the stack top, never by walking up from a node.
type Tree struct {
	ThreadID   int
	ThreadName string // truncated to 15 bytes

	Root *node.Node

	activeStack       []*node.Node
	ActivityCount     int64
	CountAtLastReport int64
}

// New creates a Call Tree for threadID, truncating threadName to 15 bytes,
// and pushes the synthetic root onto the active stack.
func New(threadID int, threadName string) *Tree {
	if len(threadName) > 15 {
		threadName = threadName[:15]
	}
	root := node.New(rootName)
	return &Tree{
		ThreadID:    threadID,
		ThreadName:  threadName,
		Root:        root,
		activeStack: []*node.Node{root},
	}
}

// Top returns the current top of the active stack.
func (t *Tree) Top() *node.Node {
	return t.activeStack[len(t.activeStack)-1]
}

// Add locates or creates a child of the current stack top keyed by name,
// pushes it, and bumps the activity counter.
func (t *Tree) Add(name string) *node.Node {
	child := t.Top().ChildOrNew(name)
	t.activeStack = append(t.activeStack, child)
	t.ActivityCount++
	return child
}

// Close pops n from the active stack if it is the current top. If it is
// not, this logs an error and leaves the stack untouched — the stack can
// therefore become permanently unbalanced for this thread; this is a
// documented reference behaviour, not a bug to fix.
func (t *Tree) Close(n *node.Node) bool {
	top := t.Top()
	if top != n {
		perflog.Logf(perflog.Error, "scope exit mismatch on thread %d: closing %q but stack top is %q",
			t.ThreadID, n.ElementName, top.ElementName)
		return false
	}
	t.activeStack = t.activeStack[:len(t.activeStack)-1]
	return true
}

// Report walks the tree from root with deltaOnly=false and advances
// CountAtLastReport to the current activity count.
func (t *Tree) Report() {
	t.Root.Report(0, false)
	t.CountAtLastReport = t.ActivityCount
}

// IsInactive reports whether this tree has seen no push since its last
// report and currently has nothing open but the synthetic root.
func (t *Tree) IsInactive() bool {
	return t.ActivityCount == t.CountAtLastReport && len(t.activeStack) == 1 && t.activeStack[0] == t.Root
}

// StackDepth is a diagnostic accessor used by the pre-report ShowTrees dump.
func (t *Tree) StackDepth() int {
	return len(t.activeStack)
}
