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

package clock

import (
	"testing"
	"time"
)

func TestElapsedIsNonNegative(t *testing.T) {
	var s Sample
	s.Marker()
	time.Sleep(2 * time.Millisecond)
	s.Elapsed()

	if s.WallUS <= 0 {
		t.Errorf("WallUS = %d, want > 0", s.WallUS)
	}
	if s.UserUS < 0 || s.SystemUS < 0 {
		t.Errorf("UserUS = %d, SystemUS = %d, want >= 0", s.UserUS, s.SystemUS)
	}
}

func TestGetAppliesUnit(t *testing.T) {
	s := Sample{WallUS: 5000, UserUS: 2000, SystemUS: 1000}

	if got := s.Get(Wall, Microseconds); got != 5000 {
		t.Errorf("Get(Wall, Microseconds) = %d, want 5000", got)
	}
	if got := s.Get(Wall, Milliseconds); got != 5 {
		t.Errorf("Get(Wall, Milliseconds) = %d, want 5", got)
	}
	if got := s.Get(User, Microseconds); got != 2000 {
		t.Errorf("Get(User, Microseconds) = %d, want 2000", got)
	}
	if got := s.Get(System, Microseconds); got != 1000 {
		t.Errorf("Get(System, Microseconds) = %d, want 1000", got)
	}
}

func TestThreadNameAndTid(t *testing.T) {
	if _, err := ThreadName(); err != nil {
		t.Errorf("ThreadName() error = %v, want nil", err)
	}
	if Tid() <= 0 {
		t.Errorf("Tid() = %d, want > 0", Tid())
	}
}
