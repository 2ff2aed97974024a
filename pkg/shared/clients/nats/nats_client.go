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

package nats

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/flowtable/flowtable/pkg/shared/logging"
)

// Client is a client for a NATS server shared by multiple connections
// (changelog writers, replayers, stream management, etc.)
type Client struct {
	sync.Mutex
	nc    *nats.Conn
	jsCtx nats.JetStreamContext
	log   *zap.SugaredLogger
}

// NewClient connects to the NATS server at the given url.
func NewClient(ctx context.Context, url string, natsOptions ...nats.Option) (*Client, error) {
	log := logging.FromContext(ctx)
	opts := []nats.Option{
		// if max reconnects is set to -1, it will try to reconnect forever
		nats.MaxReconnects(-1),
		// retry on failed connect should be true, else it wont try to reconnect during initial connect
		nats.RetryOnFailedConnect(true),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Errorw("Nats default: error occurred for subscription", zap.Error(err))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Errorw("Nats default: disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("Nats default: reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("Nats default: connection closed")
		}),
	}
	opts = append(opts, natsOptions...)

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats url=%s: %w", url, err)
	}
	return &Client{nc: nc, log: log}, nil
}

// JetStreamContext returns a new JetStreamContext, lazily created on the
// shared connection.
func (c *Client) JetStreamContext(opts ...nats.JSOpt) (nats.JetStreamContext, error) {
	c.Lock()
	defer c.Unlock()
	if c.jsCtx == nil {
		jsCtx, err := c.nc.JetStream(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create a nats jetstream context: %w", err)
		}
		c.jsCtx = jsCtx
	}
	return c.jsCtx, nil
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.Lock()
	defer c.Unlock()
	if c.nc != nil && !c.nc.IsClosed() {
		c.nc.Close()
	}
}
