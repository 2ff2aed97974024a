/*
Copyright 2024 The Flowtable Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package inmem implements the physical store as a concurrent in-memory map.
package inmem

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/flowtable/flowtable/pkg/store"
)

// memStore implements store.Storer backed by an xsync map, which allows
// concurrent partition tasks to read and write disjoint keys without a
// global lock.
type memStore struct {
	name string
	kv   *xsync.MapOf[string, []byte]
}

var _ store.Storer = (*memStore)(nil)

// NewStore returns a new in-memory store.
func NewStore(name string) store.Storer {
	return &memStore{
		name: name,
		kv:   xsync.NewMapOf[string, []byte](),
	}
}

func (m *memStore) Get(key string) ([]byte, bool) {
	return m.kv.Load(key)
}

func (m *memStore) Set(key string, value []byte) {
	m.kv.Store(key, value)
}

func (m *memStore) Delete(key string) {
	m.kv.Delete(key)
}

func (m *memStore) Keys() []string {
	keys := make([]string, 0, m.kv.Size())
	m.kv.Range(func(key string, _ []byte) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (m *memStore) Len() int {
	return m.kv.Size()
}

// Close drops the backing map so it is ready for GC.
func (m *memStore) Close() error {
	m.kv.Clear()
	return nil
}
