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

// Command perfservice is the standalone Aggregator (C8): it owns the named
// Event Queue, reconstructs Call Trees from the events its clients send,
// and serves a small HTTP debug surface alongside the message-queue
// control plane.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/rdkcentral/gorkperf/aggregator"
	"github.com/rdkcentral/gorkperf/mqueue"
	"github.com/rdkcentral/gorkperf/perflog"
	"github.com/rdkcentral/gorkperf/registry"
)

var (
	httpAddr     = flag.String("http_addr", "", "address to serve debug endpoints on (empty disables the HTTP surface)")
	maxProcesses = flag.Int("max_processes", 0, "cap on tracked processes (0 means unbounded)")
	// messageTimeout mirrors the original's MESSAGE_TIMEOUT.
	messageTimeout = 10 * time.Second
)

func main() {
	flag.Parse()

	if mqueue.IsQueueCreated(mqueue.QueueName) {
		perflog.Logf(perflog.Error, "queue %s already exists; refusing to start a second aggregator instance", mqueue.QueueName)
		os.Exit(1)
	}

	q, err := mqueue.GetQueue(mqueue.QueueName, true)
	if err != nil {
		perflog.Logf(perflog.Error, "failed to create queue: %v", err)
		os.Exit(1)
	}
	defer q.Release()

	reg, err := newRegistry(*maxProcesses)
	if err != nil {
		perflog.Logf(perflog.Error, "failed to create registry: %v", err)
		os.Exit(1)
	}
	agg := aggregator.New(reg)
	perflog.Logf(perflog.Warning, "aggregator run %s listening on %s", agg.RunID, mqueue.QueueName)

	installSIGINTHandler(q)

	if *httpAddr != "" {
		go serveDebugHTTP(*httpAddr, agg)
	}

	runLoop(q, agg)
}

func newRegistry(max int) (*registry.Registry, error) {
	if max <= 0 {
		return registry.New(), nil
	}
	return registry.NewBounded(max)
}

// installSIGINTHandler sends ExitQueue to the aggregator's own queue on
// SIGINT, unblocking a pending receive so the run loop exits cleanly.
func installSIGINTHandler(q *mqueue.Queue) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		perflog.Logf(perflog.Warning, "SIGINT received, signalling ExitQueue")
		if err := q.Send(mqueue.NewExitQueueEvent()); err != nil {
			perflog.Logf(perflog.Error, "failed to send ExitQueue: %v", err)
		}
	}()
}

// maxTimeoutLogEvery sets how often, counted in consecutive receive
// timeouts, the run loop logs that the service is still idle. It does not
// stop the loop: the aggregator self-terminates via aggregator.Aggregator's
// own timeout bound.
const maxTimeoutLogEvery = 6

func runLoop(q *mqueue.Queue, agg *aggregator.Aggregator) {
	timeouts := 0
	for {
		ev, err := q.Receive(messageTimeout)
		if err != nil {
			perflog.Logf(perflog.Error, "receive error: %v", err)
			continue
		}
		if ev.Type == mqueue.NoMessage {
			timeouts++
			if timeouts%maxTimeoutLogEvery == 0 {
				perflog.Logf(perflog.Trace, "idle: %d consecutive timeouts", timeouts)
			}
		} else {
			timeouts = 0
		}
		if !agg.Handle(ev) {
			return
		}
	}
}

func serveDebugHTTP(addr string, agg *aggregator.Aggregator) {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		unlock := agg.Lock()
		defer unlock()
		fmt.Fprintf(w, "ok run=%s tracked=%d\n", agg.RunID, agg.Registry.Size())
	})
	r.HandleFunc("/report/{pid}", func(w http.ResponseWriter, req *http.Request) {
		pidStr := mux.Vars(req)["pid"]
		pid, err := strconv.Atoi(pidStr)
		if err != nil {
			http.Error(w, "invalid pid", http.StatusBadRequest)
			return
		}

		unlock := agg.Lock()
		defer unlock()

		p, err := agg.Registry.Find(pid)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		p.Report()
		fmt.Fprintf(w, "reported pid %d\n", pid)
	})
	perflog.Logf(perflog.Warning, "debug HTTP surface listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		perflog.Logf(perflog.Error, "debug HTTP server stopped: %v", err)
	}
}
