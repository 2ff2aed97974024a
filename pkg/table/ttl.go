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

package table

import (
	"container/heap"
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/flowtable/flowtable/pkg/stream"
	"github.com/flowtable/flowtable/pkg/window"
)

// expiryEntry tracks one windowed physical key and the instant after which it
// may be purged.
type expiryEntry struct {
	key      string
	deadline time.Time
	index    int
}

// expiryHeap is a min-heap of expiry entries ordered by deadline.
type expiryHeap []*expiryEntry

func (h expiryHeap) Len() int { return len(h) }

func (h expiryHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }

func (h expiryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expiryHeap) Push(x any) {
	e := x.(*expiryEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// partitionTTL is the expiry state of one partition: the maximum event time
// observed so far and the pending expiry entries. It is touched only by that
// partition's processing task, so it needs no lock of its own.
type partitionTTL struct {
	clock   time.Time
	heap    expiryHeap
	entries map[string]*expiryEntry
}

// ttlManager purges windowed state whose retention deadline has passed.
// Expiry is strictly partition-local: each partition has its own clock,
// advanced only by that partition's events, and the clock never regresses.
type ttlManager struct {
	windower window.Windower
	// expire issues the tombstone-producing delete for an expired key.
	expire     func(ctx context.Context, partition int32, key string)
	partitions *xsync.MapOf[int32, *partitionTTL]
	log        *zap.SugaredLogger
}

func newTTLManager(w window.Windower, expire func(ctx context.Context, partition int32, key string), log *zap.SugaredLogger) *ttlManager {
	return &ttlManager{
		windower:   w,
		expire:     expire,
		partitions: xsync.NewMapOf[int32, *partitionTTL](),
		log:        log,
	}
}

func (m *ttlManager) partition(p int32) *partitionTTL {
	s, _ := m.partitions.LoadOrCompute(p, func() *partitionTTL {
		return &partitionTTL{entries: make(map[string]*expiryEntry)}
	})
	return s
}

// touch inserts or refreshes the expiry entry for a windowed physical key.
// Writing to a window whose tombstone was already emitted logically reopens
// it with a fresh entry. No-op for keys without a window tag or when the
// windower has no expiry configured.
func (m *ttlManager) touch(ev stream.Event, key string) {
	_, id, ok := splitPhysicalKey(key)
	if !ok {
		return
	}
	deadline, ok := m.windower.Deadline(id)
	if !ok {
		return
	}
	s := m.partition(ev.Partition)
	if e, ok := s.entries[key]; ok {
		e.deadline = deadline
		heap.Fix(&s.heap, e.index)
		return
	}
	e := &expiryEntry{key: key, deadline: deadline}
	s.entries[key] = e
	heap.Push(&s.heap, e)
}

// forget drops the expiry entry for a key that was explicitly deleted.
func (m *ttlManager) forget(partition int32, key string) {
	s := m.partition(partition)
	if e, ok := s.entries[key]; ok {
		heap.Remove(&s.heap, e.index)
		delete(s.entries, key)
	}
}

// observe advances the partition's clock to the event's timestamp and purges
// every entry whose deadline has passed. Entries are removed before the
// tombstone is issued, so re-writing the window during expiry recreates a
// fresh entry.
func (m *ttlManager) observe(ctx context.Context, ev stream.Event) {
	s := m.partition(ev.Partition)
	if ev.Timestamp.After(s.clock) {
		s.clock = ev.Timestamp
	}
	for s.heap.Len() > 0 && !s.heap[0].deadline.After(s.clock) {
		e := heap.Pop(&s.heap).(*expiryEntry)
		delete(s.entries, e.key)
		m.log.Debugw("Expiring window", zap.String("key", e.key), zap.Int32("partition", ev.Partition))
		m.expire(ctx, ev.Partition, e.key)
	}
}
