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

// Package jetstream implements the changelog emitter on top of NATS JetStream.
// Each table partition maps to its own subject of one stream, so the broker's
// per-subject append order matches the per-partition mutation order. Publishes
// are asynchronous; ordering still holds because async publishes on a single
// connection are sent in call order.
package jetstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/flowtable/flowtable/pkg/changelog"
	jsclient "github.com/flowtable/flowtable/pkg/shared/clients/nats"
	"github.com/flowtable/flowtable/pkg/shared/logging"
)

// Emitter is a changelog.Emitter backed by a JetStream stream named after the
// table, with one subject per partition.
type Emitter struct {
	name string
	js   nats.JetStreamContext
	opts *options
	log  *zap.SugaredLogger
}

var _ changelog.Emitter = (*Emitter)(nil)

// NewEmitter returns an Emitter for the given stream name, creating the
// stream if it does not exist.
func NewEmitter(ctx context.Context, client *jsclient.Client, streamName string, opts ...Option) (*Emitter, error) {
	emitterOpts := defaultOptions()
	for _, o := range opts {
		o(emitterOpts)
	}

	js, err := client.JetStreamContext(nats.PublishAsyncMaxPending(emitterOpts.maxPending))
	if err != nil {
		return nil, err
	}

	if _, err := js.StreamInfo(streamName); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			return nil, fmt.Errorf("failed to query stream %q: %w", streamName, err)
		}
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{streamName + ".*"},
			Storage:  emitterOpts.storage,
			Replicas: emitterOpts.replicas,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream %q: %w", streamName, err)
		}
	}

	return &Emitter{
		name: streamName,
		js:   js,
		opts: emitterOpts,
		log:  logging.FromContext(ctx).With("emitter", "jetstream").With("stream", streamName),
	}, nil
}

// Append publishes the record to its partition's subject. The publish is
// asynchronous; a nil error means the record was handed to the connection,
// in order, not that the broker has acknowledged it.
func (e *Emitter) Append(_ context.Context, r changelog.Record) error {
	payload, err := r.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode changelog record: %w", err)
	}
	m := &nats.Msg{
		Subject: e.subject(r.Partition),
		Data:    payload,
	}
	if _, err := e.js.PublishMsgAsync(m); err != nil {
		e.log.Errorw("Failed to publish changelog record", zap.String("key", r.Key), zap.Error(err))
		return err
	}
	return nil
}

// Close waits for outstanding publishes to be acknowledged.
func (e *Emitter) Close() error {
	select {
	case <-e.js.PublishAsyncComplete():
		return nil
	case <-time.After(e.opts.closeTimeout):
		return fmt.Errorf("timed out waiting for pending changelog publishes on stream %q", e.name)
	}
}

func (e *Emitter) subject(partition int32) string {
	return fmt.Sprintf("%s.%d", e.name, partition)
}
