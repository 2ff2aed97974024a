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

package jetstream

import (
	"time"

	"github.com/nats-io/nats.go"
)

type options struct {
	// maxPending is the maximum number of outstanding async publishes.
	maxPending int
	// storage is the stream storage backend.
	storage nats.StorageType
	// replicas is the number of stream replicas.
	replicas int
	// closeTimeout bounds how long Close waits for outstanding publishes.
	closeTimeout time.Duration
}

func defaultOptions() *options {
	return &options{
		maxPending:   1024,
		storage:      nats.FileStorage,
		replicas:     1,
		closeTimeout: 30 * time.Second,
	}
}

// Option customizes an Emitter.
type Option func(*options)

// WithMaxPending sets the maximum number of outstanding async publishes.
func WithMaxPending(n int) Option {
	return func(o *options) {
		o.maxPending = n
	}
}

// WithMemoryStorage keeps the changelog stream in memory.
func WithMemoryStorage() Option {
	return func(o *options) {
		o.storage = nats.MemoryStorage
	}
}

// WithReplicas sets the number of stream replicas.
func WithReplicas(n int) Option {
	return func(o *options) {
		o.replicas = n
	}
}

// WithCloseTimeout bounds how long Close waits for outstanding publishes.
func WithCloseTimeout(d time.Duration) Option {
	return func(o *options) {
		o.closeTimeout = d
	}
}
