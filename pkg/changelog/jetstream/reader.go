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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/flowtable/flowtable/pkg/changelog"
	jsclient "github.com/flowtable/flowtable/pkg/shared/clients/nats"
)

const readBatchSize = 256

// ReadPartition reads back every changelog record appended to the given
// partition of the stream, in append order. Used to rebuild table state on
// restart. Only records already acknowledged by the broker are visible, so
// call it after the writing emitter has been closed.
func ReadPartition(ctx context.Context, client *jsclient.Client, streamName string, partition int32) ([]changelog.Record, error) {
	js, err := client.JetStreamContext()
	if err != nil {
		return nil, err
	}
	if _, err := js.StreamInfo(streamName); err != nil {
		if errors.Is(err, nats.ErrStreamNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query stream %q: %w", streamName, err)
	}

	subject := fmt.Sprintf("%s.%d", streamName, partition)
	// an ephemeral pull consumer over just this partition's subject
	sub, err := js.PullSubscribe(subject, "", nats.DeliverAll(), nats.BindStream(streamName))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %q: %w", subject, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	var records []changelog.Record
	for {
		msgs, err := sub.Fetch(readBatchSize, nats.MaxWait(time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				// the log has been fully consumed
				return records, nil
			}
			return nil, err
		}
		for _, m := range msgs {
			var r changelog.Record
			if err := r.UnmarshalBinary(m.Data); err != nil {
				return nil, err
			}
			records = append(records, r)
			if err := m.Ack(); err != nil {
				return nil, err
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}
}
