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

package media

import (
	"fmt"
	"io"

	"github.com/livekit/showvolume/pkg/errors"
)

var _ Frame = (*AudioFrame)(nil)

// AudioFrame is one time slice of signed 16-bit audio.
//
// For interleaved formats Planes holds a single plane of NbSamples*channels values.
// For planar formats Planes holds one plane of NbSamples values per channel.
type AudioFrame struct {
	Format     SampleFormat
	Layout     ChannelLayout
	SampleRate int
	// NbSamples is the number of samples per channel.
	NbSamples int
	// PTS is the offset of the first sample in the stream, in samples per channel.
	PTS    int64
	Planes []PCM16Sample
}

// NewAudioFrame allocates a silent frame.
func NewAudioFrame(format SampleFormat, layout ChannelLayout, sampleRate, nbSamples int) (*AudioFrame, error) {
	f := &AudioFrame{
		Format:     format,
		Layout:     layout,
		SampleRate: sampleRate,
		NbSamples:  nbSamples,
	}
	channels := layout.NumChannels()
	if format.IsPlanar() {
		f.Planes = make([]PCM16Sample, channels)
		for i := range f.Planes {
			f.Planes[i] = make(PCM16Sample, nbSamples)
		}
	} else {
		f.Planes = []PCM16Sample{make(PCM16Sample, nbSamples*channels)}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// FrameFromInterleaved builds a frame of the given format from interleaved samples.
// For S16 the data is used as is, for S16P it is split into per-channel planes.
func FrameFromInterleaved(format SampleFormat, layout ChannelLayout, sampleRate int, data PCM16Sample) (*AudioFrame, error) {
	channels := layout.NumChannels()
	if channels == 0 || len(data)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples do not fit %d channels", errors.ErrInvalidFrame, len(data), channels)
	}
	f := &AudioFrame{
		Format:     format,
		Layout:     layout,
		SampleRate: sampleRate,
		NbSamples:  len(data) / channels,
	}
	if format.IsPlanar() {
		f.Planes = Deinterleave(data, channels)
	} else {
		f.Planes = []PCM16Sample{data}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *AudioFrame) Channels() int {
	return f.Layout.NumChannels()
}

// Validate checks that the planes match the format and layout of the frame.
func (f *AudioFrame) Validate() error {
	if f.Format.Packed() != SampleFormatS16 {
		return fmt.Errorf("%w: %v", errors.ErrFormatNotSupported, f.Format)
	}
	channels := f.Channels()
	if channels == 0 {
		return fmt.Errorf("%w: no channels in layout", errors.ErrInvalidFrame)
	}
	if f.NbSamples < 0 {
		return fmt.Errorf("%w: negative sample count", errors.ErrInvalidFrame)
	}
	planes, size := 1, f.NbSamples*channels
	if f.Format.IsPlanar() {
		planes, size = channels, f.NbSamples
	}
	if len(f.Planes) != planes {
		return fmt.Errorf("%w: expected %d planes, got %d", errors.ErrInvalidFrame, planes, len(f.Planes))
	}
	for i, p := range f.Planes {
		if len(p) < size {
			return fmt.Errorf("%w: plane %d has %d samples, expected %d", errors.ErrInvalidFrame, i, len(p), size)
		}
	}
	return nil
}

// Interleaved returns the frame samples in interleaved order.
// For interleaved frames the underlying plane is returned without copying.
func (f *AudioFrame) Interleaved() PCM16Sample {
	if !f.Format.IsPlanar() {
		return f.Planes[0][:f.NbSamples*f.Channels()]
	}
	return Interleave(f.Planes, f.NbSamples)
}

// Size implements Frame. The size is the one of interleaved s16le data.
func (f *AudioFrame) Size() int {
	return f.NbSamples * f.Channels() * 2
}

// CopyTo implements Frame by writing interleaved s16le data.
func (f *AudioFrame) CopyTo(dst []byte) (int, error) {
	if len(dst) < f.Size() {
		return 0, io.ErrShortBuffer
	}
	return f.Interleaved().CopyTo(dst)
}

func (f *AudioFrame) String() string {
	return fmt.Sprintf("AudioFrame(%v, %v, %dHz, %d samples, pts=%d)", f.Format, f.Layout, f.SampleRate, f.NbSamples, f.PTS)
}

// Deinterleave splits interleaved data into one plane per channel.
func Deinterleave(data PCM16Sample, channels int) []PCM16Sample {
	n := len(data) / channels
	planes := make([]PCM16Sample, channels)
	for ch := range planes {
		planes[ch] = make(PCM16Sample, n)
	}
	for i, v := range data[:n*channels] {
		planes[i%channels][i/channels] = v
	}
	return planes
}

// Interleave merges the first n samples of each plane into one buffer.
func Interleave(planes []PCM16Sample, n int) PCM16Sample {
	channels := len(planes)
	out := make(PCM16Sample, n*channels)
	for ch, p := range planes {
		for i := 0; i < n; i++ {
			out[i*channels+ch] = p[i]
		}
	}
	return out
}
