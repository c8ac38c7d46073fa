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

package registry

import (
	"testing"

	"github.com/golang/groupcache/lru"
)

// TestMockCacheEvictionOrder exercises groupcache/lru as a minimal
// reference implementation of "evict the least-recently-touched key",
// the same property NewBounded relies on simplelru.LRU for. It is a
// lightweight mock standing in for the production cache in an
// eviction-order unit test, not a dependency of NewBounded itself.
func TestMockCacheEvictionOrder(t *testing.T) {
	var evicted []lru.Key
	c := lru.New(2)
	c.OnEvicted = func(key lru.Key, _ interface{}) {
		evicted = append(evicted, key)
	}

	c.Add(1, struct{}{})
	c.Add(2, struct{}{})
	c.Add(3, struct{}{}) // evicts 1

	if len(evicted) != 1 || evicted[0] != 1 {
		t.Fatalf("evicted = %v, want [1]", evicted)
	}
	if _, ok := c.Get(1); ok {
		t.Errorf("key 1 still present after eviction")
	}
	if _, ok := c.Get(2); !ok {
		t.Errorf("key 2 missing, want present")
	}
}
