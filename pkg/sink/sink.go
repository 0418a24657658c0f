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

// Package sink contains terminal stages of a filter graph.
package sink

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/livekit/showvolume/pkg/media"
)

const wavFormatPCM = 1

// Discard accepts and drops all frames.
type Discard struct {
	sampleRate int
	frames     uint64
	samples    uint64
}

func NewDiscard(sampleRate int) *Discard {
	return &Discard{sampleRate: sampleRate}
}

func (d *Discard) String() string {
	return fmt.Sprintf("Discard(%d)", d.sampleRate)
}

func (d *Discard) SampleRate() int {
	return d.sampleRate
}

func (d *Discard) WriteSample(f *media.AudioFrame) error {
	d.frames++
	d.samples += uint64(f.NbSamples * f.Channels())
	return nil
}

// Frames returns the number of frames received.
func (d *Discard) Frames() uint64 {
	return d.frames
}

// Samples returns the number of samples received, over all channels.
func (d *Discard) Samples() uint64 {
	return d.samples
}

func (d *Discard) Close() error {
	return nil
}

// NewRaw writes frames as interleaved s16le data.
func NewRaw(w io.WriteCloser, sampleRate int) media.FrameWriter {
	return media.NewFileWriter[*media.AudioFrame](w, sampleRate)
}

type WriteSeekCloser interface {
	io.WriteSeeker
	io.Closer
}

// WAV writes frames into a 16-bit PCM WAV file.
type WAV struct {
	w          WriteSeekCloser
	enc        *wav.Encoder
	sampleRate int
	channels   int
	buf        *audio.IntBuffer
}

func NewWAV(w WriteSeekCloser, sampleRate int, layout media.ChannelLayout) *WAV {
	channels := layout.NumChannels()
	return &WAV{
		w:          w,
		enc:        wav.NewEncoder(w, sampleRate, 16, channels, wavFormatPCM),
		sampleRate: sampleRate,
		channels:   channels,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

func (s *WAV) String() string {
	return fmt.Sprintf("WAV(%d, %d)", s.sampleRate, s.channels)
}

func (s *WAV) SampleRate() int {
	return s.sampleRate
}

func (s *WAV) WriteSample(f *media.AudioFrame) error {
	if f.Channels() != s.channels {
		return fmt.Errorf("wav sink: expected %d channels, got %d", s.channels, f.Channels())
	}
	data := f.Interleaved()
	if cap(s.buf.Data) < len(data) {
		s.buf.Data = make([]int, len(data))
	}
	s.buf.Data = s.buf.Data[:len(data)]
	for i, v := range data {
		s.buf.Data[i] = int(v)
	}
	return s.enc.Write(s.buf)
}

// Close finalizes the WAV header and closes the underlying writer.
func (s *WAV) Close() error {
	if err := s.enc.Close(); err != nil {
		_ = s.w.Close()
		return err
	}
	return s.w.Close()
}
