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

package sensors

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const labelTable = "table"

// tableGetTotal is the total number of key reads, hit or miss.
var tableGetTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "table",
	Name:      "get_total",
	Help:      "Total number of table reads",
}, []string{labelTable})

// tableSetTotal is the total number of key writes.
var tableSetTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "table",
	Name:      "set_total",
	Help:      "Total number of table writes",
}, []string{labelTable})

// tableDeleteTotal is the total number of key deletions.
var tableDeleteTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "table",
	Name:      "delete_total",
	Help:      "Total number of table deletions",
}, []string{labelTable})

type promSensor struct{}

var _ Sensor = (*promSensor)(nil)

// NewPrometheus returns a sensor that counts table operations in Prometheus
// counters labeled by table name.
func NewPrometheus() Sensor {
	return &promSensor{}
}

func (p *promSensor) OnGet(table, _ string) {
	tableGetTotal.With(map[string]string{labelTable: table}).Inc()
}

func (p *promSensor) OnSet(table, _ string, _ []byte) {
	tableSetTotal.With(map[string]string{labelTable: table}).Inc()
}

func (p *promSensor) OnDelete(table, _ string) {
	tableDeleteTotal.With(map[string]string{labelTable: table}).Inc()
}
