/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package metrics exposes the process's Prometheus collectors. All
// variables are safe to use whether or not metrics collection is
// enabled: when disabled, Init installs noop implementations so call
// sites never branch on Enabled themselves.
package metrics

import (
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "apim_sync"

var (
	once     sync.Once
	registry *prometheus.Registry

	APIRequestsTotal          CounterVec
	APIRequestDurationSeconds HistogramVec
	APIRequestErrorsTotal     CounterVec

	ExtractorResourcesWrittenTotal   CounterVec
	ExtractorSkippedUnsupportedTotal CounterVec
	ExtractorExcludedByConfigTotal   CounterVec

	PublisherPutTotal         CounterVec
	PublisherDeleteTotal      CounterVec
	PublisherOverridesApplied CounterVec

	RelationshipValidationErrorsTotal Counter
	RunDurationSeconds                HistogramVec

	Up          Gauge
	Info        GaugeVec
	Goroutines  GaugeFunc
	MemoryBytes GaugeVec
)

// initMetrics initializes all metric variables. Must run after
// SetEnabled() so the noop/real branch in each newX call is correct.
func initMetrics() {
	APIRequestsTotal = newCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of requests issued to the API Management Service",
		},
		[]string{"method", "classification"},
	)

	APIRequestDurationSeconds = newHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of requests issued to the API Management Service",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
		[]string{"method"},
	)

	APIRequestErrorsTotal = newCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_request_errors_total",
			Help:      "Total number of failed requests to the API Management Service by classification",
		},
		[]string{"classification"},
	)

	ExtractorResourcesWrittenTotal = newCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractor_resources_written_total",
			Help:      "Total number of resources written to disk by the extractor",
		},
		[]string{"kind"},
	)

	ExtractorSkippedUnsupportedTotal = newCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractor_skipped_unsupported_total",
			Help:      "Total number of kinds skipped because the service SKU does not support them",
		},
		[]string{"kind"},
	)

	ExtractorExcludedByConfigTotal = newCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractor_excluded_by_config_total",
			Help:      "Total number of resources excluded from extraction by the configuration matcher",
		},
		[]string{"kind"},
	)

	PublisherPutTotal = newCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publisher_put_total",
			Help:      "Total number of resource put operations issued by the publisher",
		},
		[]string{"kind", "status"},
	)

	PublisherDeleteTotal = newCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publisher_delete_total",
			Help:      "Total number of resource delete operations issued by the publisher",
		},
		[]string{"kind", "status"},
	)

	PublisherOverridesApplied = newCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publisher_overrides_applied_total",
			Help:      "Total number of resources published with a configuration override merged in",
		},
		[]string{"kind"},
	)

	RelationshipValidationErrorsTotal = newCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationship_validation_errors_total",
			Help:      "Total number of times the dependency graph failed validation before a publish",
		},
	)

	RunDurationSeconds = newHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "End-to-end duration of an extract or publish run",
			Buckets:   []float64{1, 5, 15, 30, 60, 180, 600, 1800},
		},
		[]string{"operation"},
	)

	Up = newGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "up",
			Help:      "Liveness indicator for the running process (1=up)",
		},
	)

	Info = newGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "info",
			Help:      "Build information",
		},
		[]string{"version"},
	)

	Goroutines = newGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
		func() float64 { return float64(runtime.NumGoroutine()) },
	)

	MemoryBytes = newGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_bytes",
			Help:      "Memory usage in bytes",
		},
		[]string{"type"},
	)
}

func register(v interface{}) {
	if !Enabled {
		return
	}
	if r, ok := v.(registerable); ok {
		_ = registry.Register(r.collector())
		return
	}
	if c, ok := v.(prometheus.Collector); ok {
		_ = registry.Register(c)
	}
}

func initRegistry() {
	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	register(APIRequestsTotal)
	register(APIRequestDurationSeconds)
	register(APIRequestErrorsTotal)
	register(ExtractorResourcesWrittenTotal)
	register(ExtractorSkippedUnsupportedTotal)
	register(ExtractorExcludedByConfigTotal)
	register(PublisherPutTotal)
	register(PublisherDeleteTotal)
	register(PublisherOverridesApplied)
	register(RelationshipValidationErrorsTotal)
	register(RunDurationSeconds)
	register(Up)
	register(Info)
	if Goroutines != nil {
		_ = registry.Register(Goroutines)
	}
	register(MemoryBytes)

	Up.Set(1)
}

// Init initializes the metrics registry with all collectors. Safe to
// call whether or not metrics are enabled; it is idempotent.
func Init() *prometheus.Registry {
	once.Do(func() {
		initMetrics()
		if !Enabled {
			registry = prometheus.NewRegistry()
			return
		}
		initRegistry()
	})
	return registry
}

// GetRegistry returns the process's Prometheus registry, initializing it
// on first use.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return Init()
	}
	return registry
}

// UpdateMemoryMetrics refreshes the memory_bytes gauge from the current
// runtime.MemStats snapshot.
func UpdateMemoryMetrics() {
	if !Enabled {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryBytes.WithLabelValues("heap_alloc").Set(float64(m.HeapAlloc))
	MemoryBytes.WithLabelValues("heap_sys").Set(float64(m.HeapSys))
	MemoryBytes.WithLabelValues("stack_inuse").Set(float64(m.StackInuse))
}
