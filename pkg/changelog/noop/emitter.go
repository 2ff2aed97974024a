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

// Package noop implements a changelog emitter that drops every record, for
// tables that opt out of durability.
package noop

import (
	"context"

	"github.com/flowtable/flowtable/pkg/changelog"
)

type noopEmitter struct{}

var _ changelog.Emitter = (*noopEmitter)(nil)

// NewEmitter returns an emitter that discards all records.
func NewEmitter() changelog.Emitter {
	return &noopEmitter{}
}

func (n *noopEmitter) Append(_ context.Context, _ changelog.Record) error {
	return nil
}

func (n *noopEmitter) Close() error {
	return nil
}
