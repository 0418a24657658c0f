// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/frostbyte73/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/showvolume/pkg/config"
	"github.com/livekit/showvolume/pkg/media"
)

var (
	channelBuckets = []float64{1, 2, 3, 4, 6, 8, 16}
	// frameSizeBuckets lists histogram buckets for samples per channel in a frame.
	frameSizeBuckets = []float64{80, 160, 320, 480, 960, 1920, 4096}
)

type Monitor struct {
	runID string

	framesTotal  *prometheus.CounterVec
	samplesTotal *prometheus.CounterVec
	channels     prometheus.Histogram
	frameSize    prometheus.Histogram
	errorsTotal  prometheus.Counter

	metrics []prometheus.Collector
	started core.Fuse
}

func NewMonitor(conf *config.Config) *Monitor {
	return &Monitor{runID: conf.RunID}
}

func mustRegister[T prometheus.Collector](m *Monitor, c T) T {
	err := prometheus.Register(c)
	if err != nil {
		var e prometheus.AlreadyRegisteredError
		if errors.As(err, &e) {
			return e.ExistingCollector.(T)
		} else {
			panic(err)
		}
	}
	m.metrics = append(m.metrics, c)
	return c
}

func (m *Monitor) Start() error {
	prometheus.Unregister(collectors.NewGoCollector())
	mustRegister(m, collectors.NewGoCollector(collectors.WithGoCollectorRuntimeMetrics(collectors.MetricsAll)))

	m.framesTotal = mustRegister(m, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "livekit",
		Subsystem:   "showvolume",
		Name:        "frames_total",
		Help:        "Number of audio frames passed through the graph",
		ConstLabels: prometheus.Labels{"run_id": m.runID},
	}, []string{"format"}))

	m.samplesTotal = mustRegister(m, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "livekit",
		Subsystem:   "showvolume",
		Name:        "samples_total",
		Help:        "Number of individual samples passed through the graph, over all channels",
		ConstLabels: prometheus.Labels{"run_id": m.runID},
	}, []string{"format"}))

	m.channels = mustRegister(m, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   "livekit",
		Subsystem:   "showvolume",
		Name:        "frame_channels",
		Help:        "Channel count of audio frames",
		ConstLabels: prometheus.Labels{"run_id": m.runID},
		Buckets:     channelBuckets,
	}))

	m.frameSize = mustRegister(m, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   "livekit",
		Subsystem:   "showvolume",
		Name:        "frame_samples",
		Help:        "Samples per channel in audio frames",
		ConstLabels: prometheus.Labels{"run_id": m.runID},
		Buckets:     frameSizeBuckets,
	}))

	m.errorsTotal = mustRegister(m, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "livekit",
		Subsystem:   "showvolume",
		Name:        "errors_total",
		Help:        "Number of frames rejected by the graph",
		ConstLabels: prometheus.Labels{"run_id": m.runID},
	}))

	m.started.Break()
	return nil
}

func (m *Monitor) Stop() {
	for _, c := range m.metrics {
		prometheus.Unregister(c)
	}
	m.metrics = nil
}

// FrameProcessed records a frame that went through the graph. Safe to call on a nil Monitor.
func (m *Monitor) FrameProcessed(f *media.AudioFrame) {
	if m == nil || !m.started.IsBroken() {
		return
	}
	format := f.Format.String()
	channels := f.Channels()
	m.framesTotal.WithLabelValues(format).Inc()
	m.samplesTotal.WithLabelValues(format).Add(float64(f.NbSamples * channels))
	m.channels.Observe(float64(channels))
	m.frameSize.Observe(float64(f.NbSamples))
}

// FrameError records a frame rejected by the graph. Safe to call on a nil Monitor.
func (m *Monitor) FrameError() {
	if m == nil || !m.started.IsBroken() {
		return
	}
	m.errorsTotal.Inc()
}

// Serve exposes metrics on the given port until ctx is done.
func (m *Monitor) Serve(ctx context.Context, port int, log logger.Logger) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		log.Infow("serving metrics", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server failed", err)
		}
	}()
	return nil
}
