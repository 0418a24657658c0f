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

// Package source reads signed 16-bit audio and splits it into frames.
package source

import (
	"fmt"
	"io"
	"time"

	"github.com/livekit/showvolume/pkg/errors"
	"github.com/livekit/showvolume/pkg/internal/ringbuf"
	"github.com/livekit/showvolume/pkg/media"
)

// Source produces frames for a filter graph.
type Source interface {
	// Formats lists the sample formats the source can produce, preferred first.
	Formats() media.FormatList
	SetFormat(f media.SampleFormat) error
	Layout() media.ChannelLayout
	SampleRate() int
	// ReadFrame returns the next frame, or io.EOF at the end of the stream.
	ReadFrame() (*media.AudioFrame, error)
	Close() error
}

// pcmReader fills buf with interleaved samples.
type pcmReader interface {
	ReadPCM(buf media.PCM16Sample) (int, error)
}

var _ Source = (*Reader)(nil)

// Reader frames an interleaved sample stream.
type Reader struct {
	r      pcmReader
	closer io.Closer

	layout     media.ChannelLayout
	sampleRate int
	format     media.SampleFormat
	planar     bool
	frameLen   int // samples per channel

	ring *ringbuf.Buffer[int16]
	tmp  media.PCM16Sample
	pts  int64
	eof  error
}

func newReader(r pcmReader, closer io.Closer, layout media.ChannelLayout, sampleRate int, frameDur time.Duration, planar bool) (*Reader, error) {
	channels := layout.NumChannels()
	if channels == 0 {
		return nil, fmt.Errorf("%w: no channels", errors.ErrUnsupportedInput)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", errors.ErrUnsupportedInput, sampleRate)
	}
	if frameDur <= 0 {
		frameDur = media.DefFrameDur
	}
	frameLen := media.SamplesPerFrame(sampleRate, frameDur)
	rd := &Reader{
		r:          r,
		closer:     closer,
		layout:     layout,
		sampleRate: sampleRate,
		planar:     planar,
		frameLen:   frameLen,
		ring:       ringbuf.New[int16](2 * frameLen * channels),
		tmp:        make(media.PCM16Sample, frameLen*channels),
	}
	rd.format = rd.Formats()[0]
	return rd, nil
}

func (r *Reader) Formats() media.FormatList {
	if r.planar {
		return media.NewFormatList(media.SampleFormatS16P, media.SampleFormatS16)
	}
	return media.NewFormatList(media.SampleFormatS16, media.SampleFormatS16P)
}

func (r *Reader) SetFormat(f media.SampleFormat) error {
	if !r.Formats().Contains(f) {
		return fmt.Errorf("%w: source cannot produce %v", errors.ErrFormatNotSupported, f)
	}
	r.format = f
	return nil
}

func (r *Reader) Format() media.SampleFormat {
	return r.format
}

func (r *Reader) Layout() media.ChannelLayout {
	return r.layout
}

func (r *Reader) SampleRate() int {
	return r.sampleRate
}

// FrameSamples returns the number of samples per channel in a full frame.
func (r *Reader) FrameSamples() int {
	return r.frameLen
}

func (r *Reader) fill() {
	for r.eof == nil && r.ring.Len() < len(r.tmp) {
		n, err := r.r.ReadPCM(r.tmp[:min(len(r.tmp), r.ring.Free())])
		if n > 0 {
			_, _ = r.ring.Write(r.tmp[:n])
		}
		if err != nil {
			r.eof = err
		} else if n == 0 {
			r.eof = io.ErrNoProgress
		}
	}
}

// ReadFrame returns full frames until the stream ends. The last frame may be shorter.
// Trailing samples that do not form a whole sample frame are dropped.
func (r *Reader) ReadFrame() (*media.AudioFrame, error) {
	r.fill()
	channels := r.layout.NumChannels()
	avail := r.ring.Len() / channels * channels
	if avail == 0 {
		if r.eof == io.EOF {
			return nil, io.EOF
		}
		return nil, r.eof
	}
	data := make(media.PCM16Sample, min(avail, len(r.tmp)))
	if _, err := r.ring.Read(data); err != nil {
		return nil, err
	}
	f, err := media.FrameFromInterleaved(r.format, r.layout, r.sampleRate, data)
	if err != nil {
		return nil, err
	}
	f.PTS = r.pts
	r.pts += int64(f.NbSamples)
	return f, nil
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
