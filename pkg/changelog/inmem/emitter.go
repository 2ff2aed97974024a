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

// Package inmem implements a changelog emitter that appends to in-memory,
// per-partition logs. Appends are asynchronous behind a buffered send queue
// per partition, so a single partition's records stay in mutation order while
// distinct partitions drain independently. Used for tests and for tables that
// only need recoverability within the process lifetime.
package inmem

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/flowtable/flowtable/pkg/changelog"
	"github.com/flowtable/flowtable/pkg/shared/logging"
)

// ErrEmitterClosed is returned by Append after Close.
var ErrEmitterClosed = errors.New("inmem: emitter is closed")

const defaultQueueSize = 1024

// Emitter is an in-memory changelog.Emitter.
type Emitter struct {
	mu        sync.Mutex
	queues    map[int32]chan changelog.Record
	logs      map[int32][]changelog.Record
	pending   sync.WaitGroup
	closed    bool
	queueSize int
	log       *zap.SugaredLogger
}

var _ changelog.Emitter = (*Emitter)(nil)

// Option customizes an Emitter.
type Option func(*Emitter)

// WithQueueSize sets the per-partition send queue capacity.
func WithQueueSize(n int) Option {
	return func(e *Emitter) {
		e.queueSize = n
	}
}

// NewEmitter returns a new in-memory emitter.
func NewEmitter(ctx context.Context, opts ...Option) *Emitter {
	e := &Emitter{
		queues:    make(map[int32]chan changelog.Record),
		logs:      make(map[int32][]changelog.Record),
		queueSize: defaultQueueSize,
		log:       logging.FromContext(ctx).With("emitter", "inmem"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Append schedules the record on its partition's queue. Records for one
// partition land in the log in Append order.
func (e *Emitter) Append(ctx context.Context, r changelog.Record) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEmitterClosed
	}
	q, ok := e.queues[r.Partition]
	if !ok {
		q = make(chan changelog.Record, e.queueSize)
		e.queues[r.Partition] = q
		go e.drain(r.Partition, q)
	}
	e.pending.Add(1)
	e.mu.Unlock()

	select {
	case q <- r:
		return nil
	case <-ctx.Done():
		e.pending.Done()
		return ctx.Err()
	}
}

// drain moves records from one partition's queue into its log.
func (e *Emitter) drain(partition int32, q <-chan changelog.Record) {
	for r := range q {
		e.mu.Lock()
		e.logs[partition] = append(e.logs[partition], r)
		e.mu.Unlock()
		e.pending.Done()
	}
	e.log.Debugw("Partition queue drained", zap.Int32("partition", partition))
}

// Flush blocks until every accepted record has reached its log.
func (e *Emitter) Flush() {
	e.pending.Wait()
}

// Records returns a copy of the log for the given partition, in append order.
func (e *Emitter) Records(partition int32) []changelog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]changelog.Record, len(e.logs[partition]))
	copy(out, e.logs[partition])
	return out
}

// Partitions returns the partitions that have received at least one record.
func (e *Emitter) Partitions() []int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	parts := make([]int32, 0, len(e.logs))
	for p := range e.logs {
		parts = append(parts, p)
	}
	return parts
}

// Close stops accepting records and waits for the queues to drain. In-flight
// appends are drained before the queues are closed so no sender is left
// holding a closed channel.
func (e *Emitter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()
	e.pending.Wait()
	e.mu.Lock()
	for _, q := range e.queues {
		close(q)
	}
	e.mu.Unlock()
	return nil
}
