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

// Package showvolume implements a diagnostic filter that logs every 16-bit sample
// passing through it and forwards frames unchanged.
package showvolume

import (
	"fmt"

	"github.com/livekit/showvolume/pkg/filter"
	"github.com/livekit/showvolume/pkg/media"
)

const (
	Name        = "showvolume"
	Description = "Show audio volume information."
)

var _ media.FrameProcessor = (*Filter)(nil)

var Descriptor = &filter.Descriptor{
	Name:        Name,
	Description: Description,
	Inputs:      []filter.Pad{{Name: "default", Type: filter.MediaAudio}},
	Outputs:     []filter.Pad{{Name: "default", Type: filter.MediaAudio}},

	QueryFormats: QueryFormats,
	Init:         initFilter,
	Uninit:       uninit,
}

func init() {
	filter.Register(Descriptor)
}

// QueryFormats returns the only formats the filter accepts: interleaved and planar signed 16-bit.
func QueryFormats() (media.FormatList, error) {
	return media.NewFormatList(media.SampleFormatS16, media.SampleFormatS16P), nil
}

func initFilter(opts filter.Options) (media.FrameProcessor, error) {
	if opts.Output != nil {
		return New(NewTextSink(opts.Output)), nil
	}
	return New(LogSink(opts.Log)), nil
}

func uninit(p media.FrameProcessor) {
	// Statistics are not printed on teardown.
}

// Filter logs every sample of every frame it receives.
type Filter struct {
	n    uint64
	sink Sink
	out  media.FrameWriter
}

// New creates a filter with a zero sample counter.
func New(sink Sink) *Filter {
	return &Filter{sink: sink}
}

// Count returns the index of the next sample to be logged.
func (f *Filter) Count() uint64 {
	return f.n
}

func (f *Filter) SetWriter(w media.FrameWriter) {
	f.out = w
}

func (f *Filter) String() string {
	return fmt.Sprintf("ShowVolume(%d) -> %v", f.n, f.out)
}

func (f *Filter) SampleRate() int {
	if f.out == nil {
		return 0
	}
	return f.out.SampleRate()
}

// WriteSample logs the frame and forwards it to the next stage.
// Errors of the next stage are returned as is.
// Without a writer the filter acts as a terminal stage.
func (f *Filter) WriteSample(frame *media.AudioFrame) error {
	for ch, v := range frameView(frame).All() {
		f.sink.Record(Record{N: f.n, Channel: ch, Volume: v})
		f.n++
	}
	if f.out == nil {
		return nil
	}
	return f.out.WriteSample(frame)
}

// Close flushes buffered records. The next stage is not closed.
func (f *Filter) Close() error {
	if fl, ok := f.sink.(interface{ Flush() error }); ok {
		return fl.Flush()
	}
	return nil
}
