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

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Enabled indicates whether metrics collection is enabled. Set once at
// startup via SetEnabled and never modified after.
var Enabled bool

// IsEnabled returns whether metrics collection is enabled.
func IsEnabled() bool { return Enabled }

// SetEnabled sets whether metrics collection is enabled. Must be called
// before Init for proper effect.
func SetEnabled(e bool) { Enabled = e }

// Counter is the scalar counter surface this package exposes.
type Counter interface {
	Inc()
	Add(float64)
}

// CounterVec is a labeled family of Counters.
type CounterVec interface {
	WithLabelValues(labels ...string) Counter
	With(prometheus.Labels) Counter
}

// Histogram is the scalar histogram surface this package exposes.
type Histogram interface {
	Observe(float64)
}

// HistogramVec is a labeled family of Histograms.
type HistogramVec interface {
	WithLabelValues(labels ...string) Histogram
	With(prometheus.Labels) Histogram
}

// Gauge is the scalar gauge surface this package exposes.
type Gauge interface {
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
}

// GaugeVec is a labeled family of Gauges.
type GaugeVec interface {
	WithLabelValues(labels ...string) Gauge
	With(prometheus.Labels) Gauge
}

// GaugeFunc is a callback-computed gauge (goroutine counts, build info).
type GaugeFunc interface {
	prometheus.Metric
	prometheus.Collector
}

// noopMetric answers every Counter, Gauge, and Histogram method with
// nothing: those three interfaces are each a strict subset of its method
// set, so one silent type serves all of them instead of one per kind.
type noopMetric struct{}

func (noopMetric) Inc()            {}
func (noopMetric) Dec()            {}
func (noopMetric) Add(float64)     {}
func (noopMetric) Sub(float64)     {}
func (noopMetric) Set(float64)     {}
func (noopMetric) Observe(float64) {}

var (
	noopCounterValue   Counter   = noopMetric{}
	noopHistogramValue Histogram = noopMetric{}
	noopGaugeValue     Gauge     = noopMetric{}
)

// registerable is implemented by any wrapper in this file whose scalar
// values are backed by a real prometheus.Collector, so register() in
// metrics.go can pull the collector out without a type switch per vec kind.
type registerable interface {
	collector() prometheus.Collector
}

// vecAdapter turns a concrete *prometheus.CounterVec/HistogramVec/GaugeVec's
// WithLabelValues/With pair into this package's scalar interface S. The
// three vec kinds differ only in which scalar type their lookups return, so
// one generic adapter replaces what would otherwise be three copies of the
// same four lines.
type vecAdapter[S any] struct {
	withLabelValues func(...string) S
	with            func(prometheus.Labels) S
	coll            prometheus.Collector
}

func (v vecAdapter[S]) WithLabelValues(labels ...string) S { return v.withLabelValues(labels...) }
func (v vecAdapter[S]) With(labels prometheus.Labels) S    { return v.with(labels) }
func (v vecAdapter[S]) collector() prometheus.Collector    { return v.coll }

// noopVec answers every lookup on a disabled vec with the same noop scalar,
// regardless of the labels given.
type noopVec[S any] struct{ zero S }

func (v noopVec[S]) WithLabelValues(...string) S { return v.zero }
func (v noopVec[S]) With(prometheus.Labels) S    { return v.zero }

func newCounterVec(opts prometheus.CounterOpts, labelNames []string) CounterVec {
	if !Enabled {
		return noopVec[Counter]{zero: noopCounterValue}
	}
	cv := prometheus.NewCounterVec(opts, labelNames)
	return vecAdapter[Counter]{
		withLabelValues: func(labels ...string) Counter { return cv.WithLabelValues(labels...) },
		with:            func(l prometheus.Labels) Counter { return cv.With(l) },
		coll:            cv,
	}
}

func newCounter(opts prometheus.CounterOpts) Counter {
	if !Enabled {
		return noopCounterValue
	}
	return prometheus.NewCounter(opts)
}

func newHistogramVec(opts prometheus.HistogramOpts, labelNames []string) HistogramVec {
	if !Enabled {
		return noopVec[Histogram]{zero: noopHistogramValue}
	}
	hv := prometheus.NewHistogramVec(opts, labelNames)
	return vecAdapter[Histogram]{
		withLabelValues: func(labels ...string) Histogram { return hv.WithLabelValues(labels...) },
		with:            func(l prometheus.Labels) Histogram { return hv.With(l) },
		coll:            hv,
	}
}

func newHistogram(opts prometheus.HistogramOpts) Histogram {
	if !Enabled {
		return noopHistogramValue
	}
	return prometheus.NewHistogram(opts)
}

func newGaugeVec(opts prometheus.GaugeOpts, labelNames []string) GaugeVec {
	if !Enabled {
		return noopVec[Gauge]{zero: noopGaugeValue}
	}
	gv := prometheus.NewGaugeVec(opts, labelNames)
	return vecAdapter[Gauge]{
		withLabelValues: func(labels ...string) Gauge { return gv.WithLabelValues(labels...) },
		with:            func(l prometheus.Labels) Gauge { return gv.With(l) },
		coll:            gv,
	}
}

func newGauge(opts prometheus.GaugeOpts) Gauge {
	if !Enabled {
		return noopGaugeValue
	}
	return prometheus.NewGauge(opts)
}

func newGaugeFunc(opts prometheus.GaugeOpts, f func() float64) GaugeFunc {
	if !Enabled {
		return nil // registration skips a nil GaugeFunc
	}
	return prometheus.NewGaugeFunc(opts, f)
}
