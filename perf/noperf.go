//go:build noperf

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

package perf

// Handle is unused in the no-op build; every operation collapses to
// nothing, matching the original's RDKPerfEmpty.
type Handle struct{}

func Start(name string) *Handle         { return nil }
func Stop(h *Handle)                    {}
func SetThreshold(h *Handle, us int64)  {}
func ReportProcess(pid int)             {}
func ReportThread(tid int)              {}
func CloseThread(tid int)               {}
func CloseProcess(pid int)              {}
func Shutdown()                         {}
