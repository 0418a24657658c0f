// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graph drives a linear chain of filters between a source and a sink.
package graph

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/frostbyte73/core"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/showvolume/pkg/errors"
	"github.com/livekit/showvolume/pkg/filter"
	"github.com/livekit/showvolume/pkg/media"
	"github.com/livekit/showvolume/pkg/stats"
)

// FrameReader is the upstream end of a graph.
type FrameReader interface {
	ReadFrame() (*media.AudioFrame, error)
}

type Graph struct {
	log   logger.Logger
	opts  filter.Options
	mon   *stats.Monitor
	nodes []*filter.Instance
	sink  media.FrameWriter

	format     media.SampleFormat
	configured bool
	closed     core.Fuse
}

// New creates an empty graph. The monitor may be nil.
func New(opts filter.Options, mon *stats.Monitor) *Graph {
	if opts.Log == nil {
		opts.Log = logger.GetLogger()
	}
	return &Graph{
		log:  opts.Log,
		opts: opts,
		mon:  mon,
	}
}

// Add instantiates a registered filter at the end of the chain.
func (g *Graph) Add(name string) (*filter.Instance, error) {
	if g.configured {
		return nil, fmt.Errorf("cannot add %q: graph already configured", name)
	}
	inst, err := filter.New(name, g.opts)
	if err != nil {
		return nil, err
	}
	g.nodes = append(g.nodes, inst)
	return inst, nil
}

// SetSink sets the terminal stage. The graph closes it on Close.
func (g *Graph) SetSink(w media.FrameWriter) {
	g.sink = w
}

// Configure negotiates a single sample format for all links, starting from the formats
// offered by the source, and links filter pads. No frame may flow before it succeeds.
func (g *Graph) Configure(offered media.FormatList) (media.SampleFormat, error) {
	if g.sink == nil {
		return media.SampleFormatNone, fmt.Errorf("%w: no sink", errors.ErrGraphNotConfigured)
	}
	formats := offered
	for _, n := range g.nodes {
		if _, err := n.Negotiate(formats); err != nil {
			return media.SampleFormatNone, err
		}
		formats = formats.Intersect(n.Formats())
	}
	if len(formats) == 0 {
		return media.SampleFormatNone, fmt.Errorf("%w: nothing offered", errors.ErrFormatNotSupported)
	}
	format := formats[0]
	for i, n := range g.nodes {
		if err := n.SetFormat(format); err != nil {
			return media.SampleFormatNone, err
		}
		if i+1 < len(g.nodes) {
			n.Link(g.nodes[i+1])
		} else {
			n.Link(g.sink)
		}
	}
	g.format = format
	g.configured = true
	g.log.Infow("graph configured", "format", format.String(), "chain", g.String())
	return format, nil
}

func (g *Graph) Format() media.SampleFormat {
	return g.format
}

func (g *Graph) head() media.FrameWriter {
	if len(g.nodes) == 0 {
		return g.sink
	}
	return g.nodes[0]
}

// WriteFrame pushes one frame through the graph.
func (g *Graph) WriteFrame(f *media.AudioFrame) error {
	if g.closed.IsBroken() {
		return errors.ErrFilterClosed
	}
	if !g.configured {
		return errors.ErrGraphNotConfigured
	}
	if err := g.head().WriteSample(f); err != nil {
		g.mon.FrameError()
		return err
	}
	g.mon.FrameProcessed(f)
	return nil
}

// Run pushes frames from r until it reports io.EOF, ctx is cancelled or a stage fails.
func (g *Graph) Run(ctx context.Context, r FrameReader) error {
	var frames int
	for {
		select {
		case <-ctx.Done():
			g.log.Infow("graph stopped", "frames", frames)
			return ctx.Err()
		case <-g.closed.Watch():
			return errors.ErrFilterClosed
		default:
		}
		f, err := r.ReadFrame()
		if err == io.EOF {
			g.log.Debugw("end of stream", "frames", frames)
			return nil
		} else if err != nil {
			return err
		}
		if err = g.WriteFrame(f); err != nil {
			return err
		}
		frames++
	}
}

// Close destroys filters from the sink side and closes the sink.
func (g *Graph) Close() error {
	if g.closed.IsBroken() {
		return nil
	}
	g.closed.Break()
	var last error
	for i := len(g.nodes) - 1; i >= 0; i-- {
		if err := g.nodes[i].Close(); err != nil {
			g.log.Warnw("failed to close filter", err, "filter", g.nodes[i].Name())
			last = err
		}
	}
	if g.sink != nil {
		if err := g.sink.Close(); err != nil {
			last = err
		}
	}
	return last
}

func (g *Graph) String() string {
	parts := make([]string, 0, len(g.nodes)+1)
	for _, n := range g.nodes {
		parts = append(parts, n.Name())
	}
	if g.sink != nil {
		parts = append(parts, g.sink.String())
	}
	return strings.Join(parts, " -> ")
}
